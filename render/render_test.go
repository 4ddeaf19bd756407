package render_test

import (
	"encoding/json"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/aallbrig/swarmui/models"
	"github.com/aallbrig/swarmui/render"
)

func sampleTree(t *testing.T) *models.Node {
	t.Helper()
	root := models.NewRoot()
	add := func(name string, kind models.Kind, parent *models.Node, params []models.Param, info string) *models.Node {
		n, err := models.New(name, kind, parent, params, info)
		if err != nil {
			t.Fatalf("New(%q) error: %v", name, err)
		}
		return n
	}
	robot := add("robot", models.KindBranch, root, nil, "Built-in robot commands")
	add("move", models.KindLeaf, robot, []models.Param{{Name: "x", Kind: "int"}, {Name: "y", Kind: "int"}}, "Drive the robot")
	add("halt", models.KindLeaf, robot, nil, "Stop all motors")
	arm := add("arm", models.KindBranch, root, nil, "Gripper arm")
	wrist := add("wrist", models.KindBranch, arm, nil, "")
	add("tilt", models.KindLeaf, wrist, []models.Param{{Name: "angle", Kind: "float"}}, "Tilt the wrist")
	return root
}

func textOptions() render.Options {
	opts := render.DefaultOptions()
	opts.NoColor = true
	return opts
}

func TestRenderToString_text(t *testing.T) {
	got, err := render.RenderToString(sampleTree(t), textOptions())
	if err != nil {
		t.Fatalf("RenderToString error: %v", err)
	}
	for _, want := range []string{"ROOT", "├── ▼ robot", "│   ├── • move <x:int> <y:int>", "└── ▼ arm", "Drive the robot"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestRenderToString_json(t *testing.T) {
	opts := render.DefaultOptions()
	opts.Output = "json"
	got, err := render.RenderToString(sampleTree(t), opts)
	if err != nil {
		t.Fatalf("RenderToString error: %v", err)
	}
	var v render.View
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if v.Name != "ROOT" || len(v.Children) != 2 {
		t.Fatalf("root = %q with %d children", v.Name, len(v.Children))
	}
	move := v.Children[0].Children[0]
	if move.Command != "robot move" {
		t.Errorf("Command = %q, want %q", move.Command, "robot move")
	}
	if len(move.Params) != 2 || move.Params[1].Name != "y" {
		t.Errorf("Params = %v", move.Params)
	}
}

func TestRenderToString_yaml(t *testing.T) {
	opts := render.DefaultOptions()
	opts.Output = "yaml"
	got, err := render.RenderToString(sampleTree(t), opts)
	if err != nil {
		t.Fatalf("RenderToString error: %v", err)
	}
	var v render.View
	if err := yaml.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if v.Children[1].Name != "ARM" {
		t.Errorf("second child = %q, want ARM", v.Children[1].Name)
	}
}

func TestRenderToString_maxDepth(t *testing.T) {
	opts := textOptions()
	opts.MaxDepth = 1
	got, err := render.RenderToString(sampleTree(t), opts)
	if err != nil {
		t.Fatalf("RenderToString error: %v", err)
	}
	if strings.Contains(got, "move") || strings.Contains(got, "wrist") {
		t.Errorf("depth-2 nodes should not appear at MaxDepth=1:\n%s", got)
	}
}

func TestRenderToString_filter(t *testing.T) {
	opts := textOptions()
	opts.Filter = "tilt"
	got, err := render.RenderToString(sampleTree(t), opts)
	if err != nil {
		t.Fatalf("RenderToString error: %v", err)
	}
	if !strings.Contains(got, "tilt") || !strings.Contains(got, "arm") {
		t.Errorf("expected tilt and its ancestors:\n%s", got)
	}
	if strings.Contains(got, "robot") {
		t.Errorf("unrelated branch should be filtered:\n%s", got)
	}
}

func TestRenderToString_exclude(t *testing.T) {
	opts := textOptions()
	opts.Exclude = "robot"
	got, err := render.RenderToString(sampleTree(t), opts)
	if err != nil {
		t.Fatalf("RenderToString error: %v", err)
	}
	if strings.Contains(got, "robot") || strings.Contains(got, "move") {
		t.Errorf("excluded subtree rendered:\n%s", got)
	}
}

func TestRenderToString_unknownFormat(t *testing.T) {
	opts := render.DefaultOptions()
	opts.Output = "xml"
	if _, err := render.RenderToString(sampleTree(t), opts); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestNodePreview(t *testing.T) {
	root := sampleTree(t)
	robot, _ := root.Child("robot")
	move, _ := robot.Child("move")
	r := render.New(textOptions())
	if got := r.NodePreview(move); got != "robot move <x:int> <y:int>" {
		t.Errorf("NodePreview = %q", got)
	}
	if got := r.NodePreview(root); got != "ROOT" {
		t.Errorf("NodePreview(root) = %q", got)
	}
}

func TestCollect(t *testing.T) {
	stats := render.Collect(sampleTree(t))
	if stats.Nodes != 7 {
		t.Errorf("Nodes = %d, want 7", stats.Nodes)
	}
	if stats.Leaves != 3 {
		t.Errorf("Leaves = %d, want 3", stats.Leaves)
	}
	if stats.Params != 3 {
		t.Errorf("Params = %d, want 3", stats.Params)
	}
	if stats.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", stats.MaxDepth)
	}
}
