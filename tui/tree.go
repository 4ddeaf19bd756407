package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aallbrig/swarmui/config"
	"github.com/aallbrig/swarmui/models"
)

// treeItem is a flattened node for rendering.
type treeItem struct {
	node  *models.Node
	depth int
}

// TreeModel manages the scrollable, filterable tree pane.
type TreeModel struct {
	root     *models.Node
	items    []treeItem
	cursor   int
	offset   int
	filter   string
	expanded map[*models.Node]bool
	focused  bool
	cfg      *config.Config
	width    int
	height   int
}

func NewTreeModel(root *models.Node, cfg *config.Config) *TreeModel {
	t := &TreeModel{
		root:     root,
		expanded: map[*models.Node]bool{root: true},
		cfg:      cfg,
	}
	t.rebuild()
	return t
}

func (t *TreeModel) SetSize(w, h int)  { t.width = w; t.height = h }
func (t *TreeModel) SetFocused(f bool) { t.focused = f }

// SetFilter shows only nodes whose name contains f, plus their ancestors.
func (t *TreeModel) SetFilter(f string) {
	t.filter = models.Normalize(f)
	t.cursor = 0
	t.offset = 0
	t.rebuild()
}

// Len returns the number of visible rows.
func (t *TreeModel) Len() int { return len(t.items) }

func (t *TreeModel) Selected() *models.Node {
	if t.cursor < len(t.items) {
		return t.items[t.cursor].node
	}
	return nil
}

func (t *TreeModel) Up() {
	if t.cursor > 0 {
		t.cursor--
		t.scrollIntoView()
	}
}

func (t *TreeModel) Down() {
	if t.cursor < len(t.items)-1 {
		t.cursor++
		t.scrollIntoView()
	}
}

func (t *TreeModel) Expand() {
	if n := t.Selected(); n != nil && n.Len() > 0 && !t.expanded[n] {
		t.expanded[n] = true
		t.rebuild()
	}
}

// Collapse folds the selected node, or moves to its parent when it is
// already folded or has no children.
func (t *TreeModel) Collapse() {
	n := t.Selected()
	if n == nil {
		return
	}
	if t.expanded[n] && n.Len() > 0 {
		delete(t.expanded, n)
		t.rebuild()
		return
	}
	if p := n.Parent(); p != nil {
		t.selectNode(p)
	}
}

// ToggleExpand expands the selected node if collapsed, or collapses it if expanded.
func (t *TreeModel) ToggleExpand() {
	n := t.Selected()
	if n == nil || n.Len() == 0 {
		return
	}
	if t.expanded[n] {
		delete(t.expanded, n)
	} else {
		t.expanded[n] = true
	}
	t.rebuild()
}

// ExpandAll unfolds every branch.
func (t *TreeModel) ExpandAll() {
	t.root.Walk(func(n *models.Node) {
		if n.Len() > 0 {
			t.expanded[n] = true
		}
	})
	t.rebuild()
}

func (t *TreeModel) selectNode(n *models.Node) {
	for i, it := range t.items {
		if it.node == n {
			t.cursor = i
			t.scrollIntoView()
			return
		}
	}
}

func (t *TreeModel) View() string { return t.ViewSized(t.width, t.height) }

func (t *TreeModel) ViewSized(w, h int) string {
	t.width = w
	t.height = h
	if t.cursor >= len(t.items) && len(t.items) > 0 {
		t.cursor = len(t.items) - 1
	}

	borderColor := lipgloss.Color("#555555")
	if t.focused {
		borderColor = lipgloss.Color(t.cfg.Colors.Branch)
	}
	innerW := max(w-4, 1)
	innerH := max(h-2, 1)

	var lines []string
	end := min(t.offset+innerH, len(t.items))
	for i := t.offset; i < end; i++ {
		lines = append(lines, t.renderItem(t.items[i], i == t.cursor, innerW))
	}
	for len(lines) < innerH {
		lines = append(lines, "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(max(w-2, 1)).
		Height(innerH).
		Render(strings.Join(lines, "\n"))
}

func (t *TreeModel) renderItem(item treeItem, selected bool, maxW int) string {
	n := item.node
	icon := "  "
	if n.Len() > 0 {
		if t.expanded[n] || t.filter != "" {
			icon = "▼ "
		} else {
			icon = "▶ "
		}
	}

	var style lipgloss.Style
	name := strings.ToLower(n.Name)
	switch n.Kind {
	case models.KindRoot:
		style = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.cfg.Colors.Base))
		name = n.Name
	case models.KindLeaf:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(t.cfg.Colors.Leaf))
	default:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(t.cfg.Colors.Branch))
	}
	if t.filter != "" && strings.Contains(n.Name, t.filter) {
		style = style.Underline(true)
	}

	line := strings.Repeat("  ", item.depth) + icon + style.Render(name)
	if len(n.Params) > 0 {
		paramStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.cfg.Colors.Param)).Faint(true)
		line += " " + paramStyle.Render("<"+strings.Join(n.ParamNames(), "> <")+">")
	}

	if selected {
		if w := lipgloss.Width(line); w < maxW {
			line += strings.Repeat(" ", maxW-w)
		}
		return lipgloss.NewStyle().Background(lipgloss.Color(t.cfg.Colors.Selected)).Bold(true).Render(line)
	}
	return line
}

func (t *TreeModel) rebuild() {
	t.items = t.items[:0]
	t.flatten(t.root, 0)
	if t.cursor >= len(t.items) {
		t.cursor = max(len(t.items)-1, 0)
	}
}

func (t *TreeModel) flatten(n *models.Node, depth int) {
	if t.filter != "" && !matchesFilter(n, t.filter) {
		return
	}
	t.items = append(t.items, treeItem{node: n, depth: depth})
	if t.expanded[n] || t.filter != "" {
		for _, child := range n.Children() {
			t.flatten(child, depth+1)
		}
	}
}

func (t *TreeModel) scrollIntoView() {
	innerH := max(t.height-2, 1)
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+innerH {
		t.offset = t.cursor - innerH + 1
	}
}

// matchesFilter reports whether n or any descendant contains filter.
func matchesFilter(n *models.Node, filter string) bool {
	if n.Kind == models.KindRoot || strings.Contains(n.Name, filter) {
		return true
	}
	for _, c := range n.Children() {
		if matchesFilter(c, filter) {
			return true
		}
	}
	return false
}
