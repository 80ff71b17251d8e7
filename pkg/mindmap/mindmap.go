// Package mindmap provides the node tree behind a hub-and-spoke mindmap
// and the lookups the viewer needs to navigate it.
package mindmap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Node is a labelled node of the mindmap tree.
type Node struct {
	ID          string  `json:"id" yaml:"id" toml:"id" validate:"required"`
	Title       string  `json:"title" yaml:"title" toml:"title" validate:"required"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Children    []*Node `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty" validate:"dive,required"`
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// ParentStatus tells the three outcomes of a parent lookup apart.
type ParentStatus int

const (
	ParentFound    ParentStatus = iota // id is a non-root node
	NoParent                           // id is the root
	ParentNotFound                     // id is not in the tree
)

func (s ParentStatus) String() string {
	switch s {
	case ParentFound:
		return "found"
	case NoParent:
		return "root"
	case ParentNotFound:
		return "not found"
	default:
		return fmt.Sprintf("ParentStatus(%d)", int(s))
	}
}

// ErrInvalidDocument is returned when a tree fails validation.
var ErrInvalidDocument = errors.New("invalid mindmap document")

// Tree is an immutable mindmap with an id index built at load time.
type Tree struct {
	root    *Node
	byID    map[string]*Node
	parents map[string]*Node
}

// New indexes the tree rooted at root. A nil root yields an empty tree
// on which every lookup reports absence.
func New(root *Node) (*Tree, error) {
	t := &Tree{
		root:    root,
		byID:    make(map[string]*Node),
		parents: make(map[string]*Node),
	}
	if root == nil {
		return t, nil
	}
	if err := Validate(root); err != nil {
		return nil, err
	}

	// Explicit stack walk; parents are recorded as we descend.
	type frame struct {
		node   *Node
		parent *Node
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.byID[f.node.ID] = f.node
		t.parents[f.node.ID] = f.parent
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Children[i], parent: f.node})
		}
	}
	return t, nil
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node {
	if t == nil {
		return nil
	}
	return t.root
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byID)
}

// FindByID returns the node with the given id, or nil if absent.
func (t *Tree) FindByID(id string) *Node {
	if t == nil {
		return nil
	}
	return t.byID[id]
}

// FindParent returns the parent of id. The status distinguishes a root
// (NoParent) from an unknown id (ParentNotFound); the node is only
// non-nil for ParentFound.
func (t *Tree) FindParent(id string) (*Node, ParentStatus) {
	if t == nil {
		return nil, ParentNotFound
	}
	parent, ok := t.parents[id]
	if !ok {
		return nil, ParentNotFound
	}
	if parent == nil {
		return nil, NoParent
	}
	return parent, ParentFound
}

// Children returns the ordered children of id, or nil if id is absent.
func (t *Tree) Children(id string) []*Node {
	n := t.FindByID(id)
	if n == nil {
		return nil
	}
	return n.Children
}

// Walk visits every node depth-first in document order. Returning false
// from fn stops the walk.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	if t == nil || t.root == nil {
		return
	}
	var walk func(n *Node, depth int) bool
	walk = func(n *Node, depth int) bool {
		if !fn(n, depth) {
			return false
		}
		for _, c := range n.Children {
			if !walk(c, depth+1) {
				return false
			}
		}
		return true
	}
	walk(t.root, 0)
}

// Depth returns the number of levels in the tree (0 when empty).
func (t *Tree) Depth() int {
	max := 0
	t.Walk(func(_ *Node, depth int) bool {
		if depth+1 > max {
			max = depth + 1
		}
		return true
	})
	return max
}

// Leaves returns the number of nodes without children.
func (t *Tree) Leaves() int {
	count := 0
	t.Walk(func(n *Node, _ int) bool {
		if !n.HasChildren() {
			count++
		}
		return true
	})
	return count
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that every node has an id and a title and that ids are
// unique across the document.
func Validate(root *Node) error {
	if root == nil {
		return fmt.Errorf("%w: missing root node", ErrInvalidDocument)
	}
	if err := validate.Struct(root); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	seen := make(map[string]bool)
	var dups []string
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n.ID] {
			dups = append(dups, n.ID)
		}
		seen[n.ID] = true
		stack = append(stack, n.Children...)
	}
	if len(dups) > 0 {
		return fmt.Errorf("%w: duplicate id(s) %s", ErrInvalidDocument, strings.Join(dups, ", "))
	}
	return nil
}
