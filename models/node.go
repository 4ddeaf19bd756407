// Package models defines the command tree operators navigate in a session.
package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kind classifies a node's role in the tree.
type Kind int

const (
	KindRoot Kind = iota
	KindBranch
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindBranch:
		return "branch"
	case KindLeaf:
		return "leaf"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// RootName is the name of the synthetic root node.
const RootName = "ROOT"

// Param is one entry of a command's parameter schema.
type Param struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"` // int, float, string, ...
}

// ErrReservedName is matched by every ReservedNameError.
var ErrReservedName = errors.New("reserved keyword")

// ReservedNameError reports a node name that collides with a global keyword.
type ReservedNameError struct {
	Name string
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("used keyword %s as command name, keywords are reserved", e.Name)
}

func (e *ReservedNameError) Unwrap() error { return ErrReservedName }

// Node is a branch (menu) or leaf (command) in the command tree.
//
// Ownership flows parent to children through the children map; the parent
// pointer is only a back-reference. SetParent touches the back-reference
// alone, Relink keeps both edges consistent.
type Node struct {
	Name   string
	Kind   Kind
	Params []Param
	Info   string

	parent   *Node
	children map[string]*Node
	order    []string
}

// Normalize returns the canonical (upper-cased) form of a command word.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// New creates a node and, when parent is non-nil, registers it among the
// parent's children. Non-root names equal to a keyword are rejected.
func New(name string, kind Kind, parent *Node, params []Param, info string) (*Node, error) {
	name = Normalize(name)
	if kind != KindRoot && IsReserved(name) {
		return nil, &ReservedNameError{Name: name}
	}
	n := &Node{
		Name:     name,
		Kind:     kind,
		Params:   slices.Clone(params),
		Info:     info,
		children: make(map[string]*Node),
	}
	if parent != nil {
		parent.Put(n)
		n.parent = parent
	}
	return n, nil
}

// NewRoot returns an empty root node.
func NewRoot() *Node {
	n, _ := New(RootName, KindRoot, nil, nil, "Root of all commands")
	return n
}

// Parent returns the back-reference, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// SetParent rebinds the back-reference only. Neither the old nor the new
// parent's children are updated; callers restructuring the tree must keep
// the forward edges consistent themselves (or use Relink).
func (n *Node) SetParent(p *Node) { n.parent = p }

// Relink moves n under p, updating both the old parent's children, the new
// parent's children and the back-reference.
func (n *Node) Relink(p *Node) {
	if old := n.parent; old != nil {
		old.remove(n.Name)
	}
	if p != nil {
		p.Put(n)
	}
	n.parent = p
}

// Put registers child under its name. Replacing an existing child keeps its
// position in the listing order. The child's back-reference is not changed.
func (n *Node) Put(child *Node) {
	if n.children == nil {
		n.children = make(map[string]*Node)
	}
	if _, ok := n.children[child.Name]; !ok {
		n.order = append(n.order, child.Name)
	}
	n.children[child.Name] = child
}

func (n *Node) remove(name string) {
	if _, ok := n.children[name]; !ok {
		return
	}
	delete(n.children, name)
	n.order = slices.DeleteFunc(n.order, func(s string) bool { return s == name })
}

// Child looks up a direct child by (case-insensitive) name.
func (n *Node) Child(name string) (*Node, bool) {
	c, ok := n.children[Normalize(name)]
	return c, ok
}

// Has reports whether a direct child with the given name exists.
func (n *Node) Has(name string) bool {
	_, ok := n.Child(name)
	return ok
}

// Len returns the number of direct children.
func (n *Node) Len() int { return len(n.order) }

// Children returns the direct children in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.children[name])
	}
	return out
}

// ChildNames returns the direct children's names in insertion order.
func (n *Node) ChildNames() []string {
	return slices.Clone(n.order)
}

// HasParams reports whether trailing words are absorbed as arguments.
func (n *Node) HasParams() bool { return len(n.Params) > 0 }

// ParamNames returns the schema's parameter names in order.
func (n *Node) ParamNames() []string {
	names := make([]string, len(n.Params))
	for i, p := range n.Params {
		names[i] = p.Name
	}
	return names
}

// BranchPath returns the names from the root down to n, inclusive.
func (n *Node) BranchPath() []string {
	var path []string
	for cur := n; cur != nil; cur = cur.parent {
		path = append(path, cur.Name)
	}
	slices.Reverse(path)
	return path
}

// FullCommand returns the words an operator types from the root to reach n
// (e.g. "robot move").
func (n *Node) FullCommand() string {
	path := n.BranchPath()
	if len(path) > 0 && n.root().Kind == KindRoot {
		path = path[1:]
	}
	return strings.ToLower(strings.Join(path, " "))
}

func (n *Node) root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Depth returns the number of parent hops up to the root.
func (n *Node) Depth() int {
	d := 0
	for cur := n.parent; cur != nil; cur = cur.parent {
		d++
	}
	return d
}

// Walk calls fn for each node in the tree (depth-first pre-order).
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children() {
		child.Walk(fn)
	}
}
