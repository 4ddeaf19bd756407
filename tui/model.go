// Package tui implements the interactive Bubble Tea browser for the command tree.
package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aallbrig/swarmui/config"
	"github.com/aallbrig/swarmui/models"
	"github.com/aallbrig/swarmui/render"
)

// NavScheme is the keyboard navigation scheme.
type NavScheme int

const (
	SchemeArrows NavScheme = iota
	SchemeVim
)

// Model is the root Bubble Tea model.
type Model struct {
	root      *models.Node
	cfg       *config.Config
	scheme    NavScheme
	tree      *TreeModel
	renderer  *render.Renderer
	filter    textinput.Model
	filtering bool
	showInfo  bool
	width     int
	height    int
	statusMsg string
	quitting  bool
	chosen    string
	copy      func(string) error
}

// NewModel creates a new root TUI model.
func NewModel(root *models.Node, cfg *config.Config) *Model {
	filter := textinput.New()
	filter.Placeholder = "filter…"
	filter.CharLimit = 64

	opts := render.DefaultOptions()
	opts.NoColor = cfg.NoColor
	opts.Colors = cfg.Colors

	m := &Model{
		root:     root,
		cfg:      cfg,
		tree:     NewTreeModel(root, cfg),
		renderer: render.New(opts),
		filter:   filter,
		showInfo: true,
		copy:     clipboard.WriteAll,
	}
	m.tree.SetFocused(true)
	return m
}

// SetScheme switches the navigation keys.
func (m *Model) SetScheme(s NavScheme) { m.scheme = s }

// SetClipboard replaces the clipboard writer.
func (m *Model) SetClipboard(fn func(string) error) { m.copy = fn }

// Chosen returns the command line picked with Enter on a leaf, if any.
func (m *Model) Chosen() string { return m.chosen }

// Tree exposes the tree pane.
func (m *Model) Tree() *TreeModel { return m.tree }

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tree.SetSize(m.treeWidth(), m.contentHeight())
		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink
	case "i":
		m.showInfo = !m.showInfo
		m.tree.SetSize(m.treeWidth(), m.contentHeight())
		return m, nil
	case "E":
		m.tree.ExpandAll()
		return m, nil
	case "c":
		m.copySelected()
		return m, nil
	case "enter":
		n := m.tree.Selected()
		if n != nil && n.Kind == models.KindLeaf {
			m.chosen = n.FullCommand()
			m.quitting = true
			return m, tea.Quit
		}
		m.tree.ToggleExpand()
		return m, nil
	case " ":
		m.tree.ToggleExpand()
		return m, nil
	}
	if m.scheme == SchemeVim {
		return m.handleVim(msg)
	}
	return m.handleArrows(msg)
}

func (m *Model) handleArrows(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		m.tree.Up()
	case "down":
		m.tree.Down()
	case "left":
		m.tree.Collapse()
	case "right":
		m.tree.Expand()
	}
	return m, nil
}

func (m *Model) handleVim(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "k", "up":
		m.tree.Up()
	case "j", "down":
		m.tree.Down()
	case "h", "left":
		m.tree.Collapse()
	case "l", "right":
		m.tree.Expand()
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.filtering = false
		m.filter.Blur()
		m.tree.SetFilter(m.filter.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.tree.SetFilter(m.filter.Value())
	return m, cmd
}

func (m *Model) copySelected() {
	n := m.tree.Selected()
	if n == nil {
		return
	}
	line := n.FullCommand()
	if line == "" {
		m.statusMsg = "nothing to copy at the root"
		return
	}
	if err := m.copy(line); err != nil {
		m.statusMsg = "copy failed: " + err.Error()
		return
	}
	m.statusMsg = "copied: " + line
}

// ---------- layout ----------

func (m *Model) contentHeight() int { return max(m.height-1, 1) }

func (m *Model) treeWidth() int {
	if m.showInfo && m.width >= 80 {
		return max(m.width*55/100, 30)
	}
	return m.width
}

func (m *Model) infoWidth() int { return m.width - m.treeWidth() }

// ---------- view ----------

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	h := m.contentHeight()
	body := m.tree.ViewSized(m.treeWidth(), h)
	if m.showInfo && m.infoWidth() > 20 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderInfo(m.infoWidth(), h))
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

// renderInfo describes the selected node the way the session's help does.
func (m *Model) renderInfo(w, h int) string {
	var sb strings.Builder
	if n := m.tree.Selected(); n != nil {
		sb.WriteString(m.renderer.NodePreview(n) + "\n\n")
		sb.WriteString(Describe(n))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#555555")).
		Padding(0, 1).
		Width(max(w-2, 1)).
		Height(max(h-2, 1)).
		Render(sb.String())
}

// Describe returns the info, parameters and children of n as plain lines.
func Describe(n *models.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Kind: %s\n", n.Kind)
	if n.Info != "" {
		fmt.Fprintf(&sb, "Info: %s\n", n.Info)
	}
	switch {
	case n.HasParams():
		sb.WriteString("Parameters:\n")
		for _, p := range n.Params {
			if p.Kind != "" {
				fmt.Fprintf(&sb, "  %s (%s)\n", p.Name, p.Kind)
			} else {
				fmt.Fprintf(&sb, "  %s\n", p.Name)
			}
		}
	case n.Len() > 0:
		names := n.ChildNames()
		for i := range names {
			names[i] = strings.ToLower(names[i])
		}
		fmt.Fprintf(&sb, "Commands: %s\n", strings.Join(names, ", "))
	default:
		sb.WriteString("No parameters and no children\n")
	}
	return sb.String()
}

func (m *Model) renderStatusBar() string {
	selected := ""
	if n := m.tree.Selected(); n != nil {
		selected = n.FullCommand()
	}
	left := lipgloss.NewStyle().Bold(true).Render(selected)

	var hint string
	switch {
	case m.statusMsg != "":
		hint = m.statusMsg
		m.statusMsg = ""
	case m.filtering:
		hint = "filter: " + m.filter.View() + "  (Enter/Esc)"
	default:
		hint = "Enter:pick  Space:fold  /:filter  c:copy  E:expand all  i:info  q:quit"
	}
	right := lipgloss.NewStyle().Faint(true).Render(hint)

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return left + strings.Repeat(" ", gap) + right
}

// Run starts the browser and returns the command line picked with Enter,
// or "" when the user quit without picking.
func Run(root *models.Node, cfg *config.Config, scheme NavScheme) (string, error) {
	m := NewModel(root, cfg)
	m.SetScheme(scheme)
	finalModel, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	if fm, ok := finalModel.(*Model); ok {
		return fm.Chosen(), nil
	}
	return "", nil
}
