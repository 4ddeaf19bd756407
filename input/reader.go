// Package input turns a blocking line source into a non-blocking one, so a
// poll loop can keep servicing the device link while the operator types.
package input

import (
	"io"
	"sync"
	"sync/atomic"
)

// LineReader performs one blocking read of operator input.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Line is one delivered read. Err carries io.EOF, interrupts and the like.
type Line struct {
	Text string
	Err  error
}

// Reader hands lines from a background read to a single consumer through a
// one-slot channel. At most one read is in flight at a time.
type Reader struct {
	src      LineReader
	lines    chan Line
	inFlight atomic.Bool
	wg       sync.WaitGroup
}

// NewReader wraps src.
func NewReader(src LineReader) *Reader {
	return &Reader{src: src, lines: make(chan Line, 1)}
}

// RequestLine starts a background read with the given prompt. It does
// nothing and returns false while a read is in flight or a line is buffered.
func (r *Reader) RequestLine(prompt string) bool {
	if len(r.lines) > 0 || !r.inFlight.CompareAndSwap(false, true) {
		return false
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		text, err := r.src.ReadLine(prompt)
		r.lines <- Line{Text: text, Err: err}
		// Cleared only after the push so the poller never sees an empty
		// slot with nothing in flight while a line is on its way.
		r.inFlight.Store(false)
	}()
	return true
}

// Pending reports whether a read is outstanding.
func (r *Reader) Pending() bool { return r.inFlight.Load() }

// HasLine reports whether a line is buffered.
func (r *Reader) HasLine() bool { return len(r.lines) > 0 }

// TakeLine returns the buffered line without blocking.
func (r *Reader) TakeLine() (Line, bool) {
	select {
	case l := <-r.lines:
		return l, true
	default:
		return Line{}, false
	}
}

// Wait blocks until the outstanding read, if any, has delivered.
func (r *Reader) Wait() { r.wg.Wait() }

// Close closes the source when it supports it, which unblocks a pending
// read on sources like a readline terminal, then waits for the read.
func (r *Reader) Close() error {
	var err error
	if c, ok := r.src.(io.Closer); ok {
		err = c.Close()
	}
	r.wg.Wait()
	return err
}
