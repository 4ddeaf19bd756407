// Package render provides ASCII/Unicode tree rendering for command trees.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.yaml.in/yaml/v3"

	"github.com/aallbrig/swarmui/config"
	"github.com/aallbrig/swarmui/models"
)

// Options controls tree rendering behavior.
type Options struct {
	MaxDepth int
	Filter   string
	Exclude  string
	NoColor  bool
	Output   string // text, json, yaml
	Colors   config.ColorScheme
}

// DefaultOptions returns rendering options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxDepth: -1,
		Output:   "text",
		Colors:   config.DefaultColors(),
	}
}

// Renderer renders a command tree.
type Renderer struct {
	opts   Options
	styles styles
}

type styles struct {
	base      lipgloss.Style
	branch    lipgloss.Style
	leaf      lipgloss.Style
	param     lipgloss.Style
	paramKind lipgloss.Style
	dim       lipgloss.Style
}

// New creates a Renderer with the given options.
func New(opts Options) *Renderer {
	r := &Renderer{opts: opts}
	if opts.NoColor {
		plain := lipgloss.NewStyle()
		r.styles = styles{base: plain, branch: plain, leaf: plain, param: plain, paramKind: plain, dim: plain}
	} else {
		r.styles = styles{
			base:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(opts.Colors.Base)),
			branch:    lipgloss.NewStyle().Foreground(lipgloss.Color(opts.Colors.Branch)),
			leaf:      lipgloss.NewStyle().Foreground(lipgloss.Color(opts.Colors.Leaf)),
			param:     lipgloss.NewStyle().Foreground(lipgloss.Color(opts.Colors.Param)),
			paramKind: lipgloss.NewStyle().Foreground(lipgloss.Color(opts.Colors.ParamKind)),
			dim:       lipgloss.NewStyle().Faint(true),
		}
	}
	return r
}

// View is the serialized form of a node used by the json and yaml outputs.
type View struct {
	Name     string         `json:"name" yaml:"name"`
	Kind     string         `json:"kind" yaml:"kind"`
	Command  string         `json:"command,omitempty" yaml:"command,omitempty"`
	Info     string         `json:"info,omitempty" yaml:"info,omitempty"`
	Params   []models.Param `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Children []View         `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewView converts the subtree at n, honoring depth and name filters.
func (r *Renderer) NewView(n *models.Node) View {
	v, _ := r.view(n, 0)
	return v
}

func (r *Renderer) view(n *models.Node, depth int) (View, bool) {
	if !r.visible(n, depth) {
		return View{}, false
	}
	v := View{
		Name:    n.Name,
		Kind:    n.Kind.String(),
		Command: n.FullCommand(),
		Info:    n.Info,
		Params:  n.Params,
	}
	for _, c := range n.Children() {
		if cv, ok := r.view(c, depth+1); ok {
			v.Children = append(v.Children, cv)
		}
	}
	return v, true
}

// Render writes the tree to w.
func (r *Renderer) Render(w io.Writer, root *models.Node) error {
	switch r.opts.Output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.NewView(root))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.NewView(root)); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		r.renderNode(w, root, "", true, 0)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", r.opts.Output)
	}
}

const (
	iconBranch  = "▼ "
	iconLeaf    = "• "
	connLast    = "└── "
	connMid     = "├── "
	connLastPad = "    "
	connMidPad  = "│   "
)

func (r *Renderer) visible(n *models.Node, depth int) bool {
	if r.opts.MaxDepth >= 0 && depth > r.opts.MaxDepth {
		return false
	}
	if depth == 0 {
		return true
	}
	if r.opts.Exclude != "" && strings.Contains(n.Name, models.Normalize(r.opts.Exclude)) {
		return false
	}
	if r.opts.Filter != "" {
		f := models.Normalize(r.opts.Filter)
		return strings.Contains(n.Name, f) || hasMatchingDescendant(n, f)
	}
	return true
}

func (r *Renderer) renderNode(w io.Writer, node *models.Node, prefix string, isLast bool, depth int) {
	if !r.visible(node, depth) {
		return
	}

	conn := connMid
	if isLast {
		conn = connLast
	}
	icon := iconLeaf
	if node.Len() > 0 {
		icon = iconBranch
	}

	var name string
	switch {
	case depth == 0:
		name = r.styles.base.Render(node.Name)
	case node.Kind == models.KindLeaf:
		name = r.styles.leaf.Render(strings.ToLower(node.Name))
	default:
		name = r.styles.branch.Render(strings.ToLower(node.Name))
	}

	line := prefix
	if depth > 0 {
		line += conn
	}
	line += icon + name
	if params := r.params(node); params != "" {
		line += " " + params
	}
	if node.Info != "" {
		line += "  " + r.styles.dim.Render(node.Info)
	}
	fmt.Fprintln(w, line)

	childPrefix := prefix
	if depth > 0 {
		if isLast {
			childPrefix += connLastPad
		} else {
			childPrefix += connMidPad
		}
	}

	var shown []*models.Node
	for _, c := range node.Children() {
		if r.visible(c, depth+1) {
			shown = append(shown, c)
		}
	}
	for i, child := range shown {
		r.renderNode(w, child, childPrefix, i == len(shown)-1, depth+1)
	}
}

// params formats the parameter schema as <name:kind> tokens.
func (r *Renderer) params(n *models.Node) string {
	parts := make([]string, 0, len(n.Params))
	for _, p := range n.Params {
		s := r.styles.param.Render(p.Name)
		if p.Kind != "" {
			s += r.styles.paramKind.Render(":" + p.Kind)
		}
		parts = append(parts, "<"+s+">")
	}
	return strings.Join(parts, " ")
}

// NodePreview renders the command line that reaches n, with its parameters,
// e.g. "robot move <x:int> <y:int>".
func (r *Renderer) NodePreview(n *models.Node) string {
	cmd := n.FullCommand()
	if cmd == "" {
		cmd = r.styles.base.Render(n.Name)
	} else if n.Kind == models.KindLeaf {
		cmd = r.styles.leaf.Render(cmd)
	} else {
		cmd = r.styles.branch.Render(cmd)
	}
	if params := r.params(n); params != "" {
		cmd += " " + params
	}
	return cmd
}

func hasMatchingDescendant(node *models.Node, filter string) bool {
	for _, child := range node.Children() {
		if strings.Contains(child.Name, filter) || hasMatchingDescendant(child, filter) {
			return true
		}
	}
	return false
}

// RenderToString renders the tree to a string.
func RenderToString(root *models.Node, opts Options) (string, error) {
	var sb strings.Builder
	if err := New(opts).Render(&sb, root); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Stats summarizes a tree.
type Stats struct {
	Nodes    int
	Leaves   int
	Params   int
	MaxDepth int
}

// Collect gathers stats from a tree.
func Collect(root *models.Node) Stats {
	var s Stats
	base := root.Depth()
	root.Walk(func(n *models.Node) {
		s.Nodes++
		if n.Kind == models.KindLeaf {
			s.Leaves++
		}
		s.Params += len(n.Params)
		if d := n.Depth() - base; d > s.MaxDepth {
			s.MaxDepth = d
		}
	})
	return s
}
