// Package controller runs an operator session: it keeps a cursor into the
// command tree, turns typed lines into navigation or command execution, and
// keeps draining the device link between keystrokes.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aallbrig/swarmui/input"
	"github.com/aallbrig/swarmui/link"
	"github.com/aallbrig/swarmui/models"
)

// DefaultTick is the poll interval used by Run when none is given.
const DefaultTick = 20 * time.Millisecond

// Recorder receives every executed command. It is the execution hook.
type Recorder interface {
	Record(path []string, args []string) error
}

// Recorders fans one execution out to several recorders.
type Recorders []Recorder

func (rs Recorders) Record(path, args []string) error {
	var errs []error
	for _, r := range rs {
		if err := r.Record(path, args); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options configures a Controller. Zero values are usable.
type Options struct {
	Out      io.Writer // defaults to os.Stdout
	Recorder Recorder
	Metrics  *Metrics
}

// Controller is one operator session.
type Controller struct {
	root    *models.Node
	cursor  *models.Node
	link    link.Channel
	input   *input.Reader
	out     io.Writer
	rec     Recorder
	metrics *Metrics
	stopped bool
}

// New starts a session with the cursor at root.
func New(root *models.Node, ch link.Channel, in *input.Reader, opts Options) *Controller {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Controller{
		root:    root,
		cursor:  root,
		link:    ch,
		input:   in,
		out:     out,
		rec:     opts.Recorder,
		metrics: opts.Metrics,
	}
}

// Cursor returns the current position in the tree.
func (c *Controller) Cursor() *models.Node { return c.cursor }

// Stopped reports whether the session has ended.
func (c *Controller) Stopped() bool { return c.stopped }

// Prompt renders the cursor's path, e.g. "ROOT / ROBOT: ".
func (c *Controller) Prompt() string {
	return MakePathString(c.cursor.BranchPath()) + " "
}

// MakePathString joins path segments with " / " and appends a colon.
func MakePathString(path []string) string {
	return strings.Join(path, " / ") + ":"
}

// Process is one scheduler tick: drain the link, then run one CLI step.
func (c *Controller) Process() {
	for c.link.HasData() {
		f := c.link.GetData()
		c.metrics.frameDrained()
		log.Trace().Int("bytes", len(f)).Msg("frame drained")
	}
	c.Step()
}

// Step requests input when none is outstanding, or handles a delivered line.
func (c *Controller) Step() {
	if c.stopped {
		return
	}
	if !c.input.HasLine() {
		if !c.input.Pending() {
			c.input.RequestLine(c.Prompt())
		}
		return
	}
	line, ok := c.input.TakeLine()
	if !ok {
		return
	}
	switch {
	case line.Err == nil:
		c.HandleLine(line.Text)
	case errors.Is(line.Err, io.EOF):
		fmt.Fprintln(c.out)
		c.Stop()
	case input.IsInterrupt(line.Err):
		// Ctrl-C discards the line being typed.
	default:
		log.Warn().Err(line.Err).Msg("read input failed")
	}
}

// HandleLine tokenizes one line and dispatches it word by word.
func (c *Controller) HandleLine(text string) {
	c.metrics.line()
	text = strings.ReplaceAll(strings.TrimSpace(text), "\t", " ")
	if text == "" {
		return
	}
	words := strings.Split(text, " ")
	for i, word := range words {
		if action, ok := models.LookupKeyword(word); ok {
			c.do(action)
			continue
		}
		if !c.handleLocal(word, words[i:]) {
			return
		}
	}
}

// handleLocal resolves a non-keyword word against the cursor. It returns
// true when scanning may continue with the next word.
func (c *Controller) handleLocal(word string, rest []string) bool {
	if child, ok := c.cursor.Child(word); ok && word != "" {
		c.cursor = child
		c.metrics.navigated()
		return true
	}
	if c.cursor.HasParams() {
		c.execute(rest)
		return false
	}
	if word != "" {
		fmt.Fprintf(c.out, "\tCommand %s not found, type \"help\" for possible commands.\n", word)
		c.metrics.unknown()
	}
	return false
}

// execute reports the arguments received by the cursor's command and hands
// them to the recorder.
func (c *Controller) execute(args []string) {
	fmt.Fprintf(c.out, "\tCommand called with %d parameters: (%s)\n", len(args), strings.Join(args, ","))
	if want := len(c.cursor.Params); len(args) != want {
		fmt.Fprintf(c.out, "\tExpected %d parameters: (%s)\n", want, strings.Join(c.cursor.ParamNames(), ", "))
	}
	path := c.cursor.BranchPath()
	c.metrics.executed(path)
	if c.rec != nil {
		if err := c.rec.Record(path, args); err != nil {
			log.Warn().Err(err).Strs("path", path).Msg("record command failed")
		}
	}
}

func (c *Controller) do(a models.Action) {
	switch a {
	case models.ActionStop:
		c.Stop()
	case models.ActionHelp:
		c.PrintHelp()
	case models.ActionBack:
		if p := c.cursor.Parent(); p != nil {
			c.cursor = p
			c.metrics.navigated()
		}
	case models.ActionRoot:
		c.cursor = c.root
		c.metrics.navigated()
	}
}

// PrintHelp describes the cursor: its info, then its parameters, its
// children, or that it has neither.
func (c *Controller) PrintHelp() {
	n := c.cursor
	fmt.Fprintln(c.out, n.Name+":")
	fmt.Fprintln(c.out, "\tInfo: "+n.Info)
	switch {
	case n.HasParams():
		fmt.Fprintf(c.out, "\tParameters: (%s)\n", strings.Join(n.ParamNames(), ", "))
	case n.Len() > 0:
		names := n.ChildNames()
		for i := range names {
			names[i] = strings.ToLower(names[i])
		}
		fmt.Fprintf(c.out, "\tPossible commands: %s\n", strings.Join(names, ", "))
	default:
		fmt.Fprintln(c.out, "\tThis function requires no parameters and has no children")
	}
}

// Stop ends the session: it waits for the outstanding read, stops the link
// and marks the session stopped. Calling it again is a no-op.
func (c *Controller) Stop() {
	if c.stopped {
		return
	}
	c.input.Wait()
	if err := c.link.Stop(); err != nil {
		log.Warn().Err(err).Msg("stop link failed")
	}
	c.stopped = true
}

// Run ticks Process every interval until the session stops or ctx is done.
// On cancellation the input source is closed so a blocked read returns.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTick
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for !c.stopped {
		select {
		case <-ctx.Done():
			if err := c.input.Close(); err != nil {
				log.Debug().Err(err).Msg("close input")
			}
			c.Stop()
			return ctx.Err()
		case <-ticker.C:
			c.Process()
		}
	}
	return nil
}
