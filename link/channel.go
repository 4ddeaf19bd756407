// Package link carries frames between the operator console and a robot.
package link

import "sync"

// Frame is one opaque unit of data exchanged with the device.
type Frame []byte

// Channel is the console's view of the device link.
type Channel interface {
	HasData() bool
	GetData() Frame
	Stop() error
}

// Sender is implemented by channels that can also transmit frames.
type Sender interface {
	Send(Frame) error
}

// queue is a mutex-guarded FIFO shared by the channel implementations.
type queue struct {
	mu     sync.Mutex
	frames []Frame
}

func (q *queue) push(f Frame) {
	q.mu.Lock()
	q.frames = append(q.frames, f)
	q.mu.Unlock()
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

func (q *queue) pop() Frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.frames) == 0 {
		return nil
	}
	f := q.frames[0]
	q.frames[0] = nil
	q.frames = q.frames[1:]
	return f
}

// Loopback is an in-memory channel: frames pushed locally are read back,
// frames sent are kept for inspection. Used when no device is configured.
type Loopback struct {
	in      queue
	mu      sync.Mutex
	sent    []Frame
	stopped bool
}

// NewLoopback returns an empty loopback channel.
func NewLoopback() *Loopback { return &Loopback{} }

// Push queues a frame as if it came from the device.
func (l *Loopback) Push(f Frame) { l.in.push(f) }

func (l *Loopback) HasData() bool { return l.in.len() > 0 }

func (l *Loopback) GetData() Frame { return l.in.pop() }

func (l *Loopback) Send(f Frame) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return ErrStopped
	}
	l.sent = append(l.sent, f)
	return nil
}

// Sent returns the frames sent so far.
func (l *Loopback) Sent() []Frame {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Frame(nil), l.sent...)
}

func (l *Loopback) Stop() error {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	return nil
}

// Stopped reports whether Stop was called.
func (l *Loopback) Stopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}
