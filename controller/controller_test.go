package controller_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aallbrig/swarmui/controller"
	"github.com/aallbrig/swarmui/input"
	"github.com/aallbrig/swarmui/link"
	"github.com/aallbrig/swarmui/models"
)

// scriptedSource returns queued lines, then io.EOF once closed.
type scriptedSource struct {
	lines chan string
}

func newScriptedSource(lines ...string) *scriptedSource {
	s := &scriptedSource{lines: make(chan string, len(lines)+8)}
	for _, l := range lines {
		s.lines <- l
	}
	return s
}

func (s *scriptedSource) ReadLine(string) (string, error) {
	l, ok := <-s.lines
	if !ok {
		return "", io.EOF
	}
	return l, nil
}

type recorded struct {
	path []string
	args []string
}

type fakeRecorder struct {
	calls []recorded
}

func (f *fakeRecorder) Record(path, args []string) error {
	f.calls = append(f.calls, recorded{path: path, args: args})
	return nil
}

func mustNode(t *testing.T, name string, kind models.Kind, parent *models.Node, params []models.Param, info string) *models.Node {
	t.Helper()
	n, err := models.New(name, kind, parent, params, info)
	require.NoError(t, err)
	return n
}

// sampleTree: ROOT -> ROBOT -> MOVE(x, y); ROOT -> ARM -> GRAB, RELEASE, TILT.
func sampleTree(t *testing.T) *models.Node {
	root := models.NewRoot()
	robot := mustNode(t, "robot", models.KindBranch, root, nil, "Built-in robot commands")
	mustNode(t, "move", models.KindLeaf, robot,
		[]models.Param{{Name: "x", Kind: "int"}, {Name: "y", Kind: "int"}}, "Drive the robot")
	arm := mustNode(t, "arm", models.KindBranch, root, nil, "Gripper arm")
	mustNode(t, "grab", models.KindLeaf, arm, nil, "Close the gripper")
	mustNode(t, "release", models.KindLeaf, arm, nil, "Open the gripper")
	mustNode(t, "tilt", models.KindLeaf, arm, nil, "Tilt the wrist")
	return root
}

type session struct {
	ctl  *controller.Controller
	out  *bytes.Buffer
	link *link.Loopback
	rec  *fakeRecorder
	src  *scriptedSource
	root *models.Node
}

func newSession(t *testing.T, lines ...string) *session {
	t.Helper()
	s := &session{
		out:  &bytes.Buffer{},
		link: link.NewLoopback(),
		rec:  &fakeRecorder{},
		src:  newScriptedSource(lines...),
		root: sampleTree(t),
	}
	s.ctl = controller.New(s.root, s.link, input.NewReader(s.src), controller.Options{
		Out:      s.out,
		Recorder: s.rec,
	})
	return s
}

func TestHandleLine_multiHopWithArguments(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("robot move 10 20")

	assert.Equal(t, []string{"ROOT", "ROBOT", "MOVE"}, s.ctl.Cursor().BranchPath())
	assert.Contains(t, s.out.String(), "Command called with 2 parameters: (10,20)")
	assert.NotContains(t, s.out.String(), "Expected")
	require.Len(t, s.rec.calls, 1)
	assert.Equal(t, []string{"10", "20"}, s.rec.calls[0].args)
	assert.Equal(t, []string{"ROOT", "ROBOT", "MOVE"}, s.rec.calls[0].path)
}

func TestHandleLine_caseInsensitive(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("RoBoT MOVE 1 2")
	assert.Equal(t, "MOVE", s.ctl.Cursor().Name)
	require.Len(t, s.rec.calls, 1)
}

func TestHandleLine_argumentCountMismatch(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("robot move 10")
	assert.Contains(t, s.out.String(), "Command called with 1 parameters: (10)")
	assert.Contains(t, s.out.String(), "Expected 2 parameters: (x, y)")
}

func TestHandleLine_notFound(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("bogus")
	assert.Contains(t, s.out.String(), "Command bogus not found")
	assert.Same(t, s.root, s.ctl.Cursor())
	assert.Empty(t, s.rec.calls)
}

func TestHandleLine_notFoundStopsScanning(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("bogus robot")
	assert.Same(t, s.root, s.ctl.Cursor())

	s.ctl.HandleLine("robot bogus arm")
	assert.Equal(t, "ROBOT", s.ctl.Cursor().Name, "hops before the error are kept")
}

func TestHandleLine_helpListsChildren(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("arm")
	s.out.Reset()
	s.ctl.HandleLine("help")

	out := s.out.String()
	assert.Contains(t, out, "ARM:")
	assert.Contains(t, out, "\tInfo: Gripper arm")
	assert.Contains(t, out, "\tPossible commands: grab, release, tilt\n")
}

func TestHandleLine_helpParameters(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("robot move help")
	assert.Contains(t, s.out.String(), "\tParameters: (x, y)")
	assert.Empty(t, s.rec.calls, "help does not execute")
}

func TestHandleLine_helpNothing(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("arm grab help")
	assert.Contains(t, s.out.String(), "This function requires no parameters and has no children")
}

func TestHandleLine_keywordDoesNotBlockLine(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("robot help move 3 4")
	assert.Contains(t, s.out.String(), "ROBOT:")
	assert.Equal(t, "MOVE", s.ctl.Cursor().Name)
	require.Len(t, s.rec.calls, 1)
}

func TestHandleLine_backAtRootIsNoop(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("back")
	assert.Same(t, s.root, s.ctl.Cursor())
	assert.Empty(t, s.out.String())
}

func TestHandleLine_backAndRoot(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("robot move")
	s.ctl.HandleLine("return")
	assert.Equal(t, "ROBOT", s.ctl.Cursor().Name)

	s.ctl.HandleLine("move")
	s.ctl.HandleLine("root")
	assert.Same(t, s.root, s.ctl.Cursor())
}

func TestHandleLine_emptyWordEndsScanning(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("arm  grab")
	assert.Equal(t, "ARM", s.ctl.Cursor().Name)
	assert.Empty(t, s.out.String())
}

func TestHandleLine_stop(t *testing.T) {
	s := newSession(t)
	s.ctl.HandleLine("quit")
	assert.True(t, s.ctl.Stopped())
	assert.True(t, s.link.Stopped())

	s.ctl.HandleLine("exit")
	assert.True(t, s.ctl.Stopped(), "stopping twice is harmless")
}

func TestPrompt(t *testing.T) {
	s := newSession(t)
	assert.Equal(t, "ROOT: ", s.ctl.Prompt())
	s.ctl.HandleLine("robot")
	assert.Equal(t, "ROOT / ROBOT: ", s.ctl.Prompt())
	assert.Equal(t, "A / B:", controller.MakePathString([]string{"A", "B"}))
}

func TestStep_requestsThenDispatches(t *testing.T) {
	s := newSession(t, "robot")
	in := input.NewReader(s.src)
	ctl := controller.New(s.root, s.link, in, controller.Options{Out: s.out})

	ctl.Step()
	require.Eventually(t, in.HasLine, time.Second, time.Millisecond)
	ctl.Step()
	assert.Equal(t, "ROBOT", ctl.Cursor().Name)
}

func TestStep_eofStops(t *testing.T) {
	s := newSession(t)
	close(s.src.lines)
	in := input.NewReader(s.src)
	ctl := controller.New(s.root, s.link, in, controller.Options{Out: s.out})

	ctl.Step()
	require.Eventually(t, in.HasLine, time.Second, time.Millisecond)
	ctl.Step()
	assert.True(t, ctl.Stopped())
	assert.True(t, s.link.Stopped())
}

func TestProcess_drainsLink(t *testing.T) {
	s := newSession(t)
	reg := prometheus.NewRegistry()
	metrics := controller.NewMetrics(reg)
	ctl := controller.New(s.root, s.link, input.NewReader(s.src), controller.Options{Out: s.out, Metrics: metrics})

	for i := 0; i < 3; i++ {
		s.link.Push(link.Frame{byte(i)})
	}
	ctl.Process()
	assert.False(t, s.link.HasData())

	assert.Equal(t, 3.0, counters(t, reg)["swarmui_link_frames_drained_total"])
}

func TestMetrics_countsDispatch(t *testing.T) {
	s := newSession(t)
	reg := prometheus.NewRegistry()
	metrics := controller.NewMetrics(reg)
	ctl := controller.New(s.root, s.link, input.NewReader(s.src), controller.Options{Out: s.out, Metrics: metrics})

	ctl.HandleLine("robot move 1 2")
	ctl.HandleLine("nope")

	values := counters(t, reg)
	assert.Equal(t, 2.0, values["swarmui_input_lines_total"])
	assert.Equal(t, 1.0, values["swarmui_commands_executed_total"])
	assert.Equal(t, 1.0, values["swarmui_unknown_commands_total"])
	assert.Equal(t, 2.0, values["swarmui_navigations_total"])
}

// counters sums every counter series in reg by family name.
func counters(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			values[mf.GetName()] += m.GetCounter().GetValue()
		}
	}
	return values
}

func TestRun_untilQuit(t *testing.T) {
	s := newSession(t, "robot move 5 6", "quit")
	ctl := controller.New(s.root, s.link, input.NewReader(s.src), controller.Options{Out: s.out, Recorder: s.rec})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ctl.Run(ctx, time.Millisecond))
	assert.True(t, ctl.Stopped())
	require.Len(t, s.rec.calls, 1)
	assert.Equal(t, []string{"5", "6"}, s.rec.calls[0].args)
}

func TestRun_cancelled(t *testing.T) {
	s := newSession(t)
	ctl := controller.New(s.root, s.link, input.NewReader(closingSource{s.src}), controller.Options{Out: s.out})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := ctl.Run(ctx, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, ctl.Stopped())
}

// closingSource makes a scriptedSource closable so Run can unblock it.
type closingSource struct{ *scriptedSource }

func (c closingSource) Close() error {
	close(c.lines)
	return nil
}

type failingRecorder struct{}

func (failingRecorder) Record([]string, []string) error { return io.ErrClosedPipe }

func TestRecorders_fanOut(t *testing.T) {
	a, b := &fakeRecorder{}, &fakeRecorder{}
	rs := controller.Recorders{a, failingRecorder{}, b}

	err := rs.Record([]string{"ROOT", "ARM", "GRAB"}, nil)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Len(t, a.calls, 1)
	assert.Len(t, b.calls, 1, "later recorders still run after a failure")
}

func TestHandleLine_forwardsToLink(t *testing.T) {
	s := newSession(t)
	ctl := controller.New(s.root, s.link, input.NewReader(s.src), controller.Options{
		Out:      s.out,
		Recorder: controller.Recorders{s.rec, link.Forwarder{S: s.link}},
	})
	ctl.HandleLine("robot move 7 8")
	assert.Equal(t, []link.Frame{link.Frame("robot move 7 8")}, s.link.Sent())
	require.Len(t, s.rec.calls, 1)
}
