package fields

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

var (
	ErrDuplicateNode = errors.New("fields: duplicate node id")
	ErrParentCycle   = errors.New("fields: parent chain revisits a node")
	ErrNilNode       = errors.New("fields: nil node")
)

// Tree indexes the nodes of a schema by id and computes children by grouping
// on ParentID. Nodes are never linked to each other directly.
type Tree struct {
	nodes    map[uuid.UUID]*Node
	children map[uuid.UUID][]*Node
	roots    []*Node
	orphans  []*Node
	size     int
}

// NewTree validates nodes and builds the arena. Nodes whose parent is not part
// of the set are promoted to roots and reported through Orphans.
func NewTree(nodes []*Node) (*Tree, error) {
	tree := &Tree{
		nodes:    make(map[uuid.UUID]*Node, len(nodes)),
		children: make(map[uuid.UUID][]*Node),
	}
	ordered := make([]*Node, 0, len(nodes))
	for _, node := range nodes {
		if node == nil {
			return nil, ErrNilNode
		}
		if _, exists := tree.nodes[node.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
		}
		tree.nodes[node.ID] = node
		ordered = append(ordered, node)
	}

	for _, node := range ordered {
		if err := tree.checkChain(node); err != nil {
			return nil, err
		}
	}

	for _, node := range ordered {
		if node.ParentID == nil {
			tree.roots = append(tree.roots, node)
			continue
		}
		if _, ok := tree.nodes[*node.ParentID]; !ok {
			tree.roots = append(tree.roots, node)
			tree.orphans = append(tree.orphans, node)
			continue
		}
		tree.children[*node.ParentID] = append(tree.children[*node.ParentID], node)
	}

	sortByPosition(tree.roots)
	for id := range tree.children {
		sortByPosition(tree.children[id])
	}
	tree.size = len(ordered)
	return tree, nil
}

func (t *Tree) checkChain(start *Node) error {
	seen := map[uuid.UUID]struct{}{start.ID: {}}
	current := start
	for current.ParentID != nil {
		parent, ok := t.nodes[*current.ParentID]
		if !ok {
			return nil
		}
		if _, visited := seen[parent.ID]; visited {
			return fmt.Errorf("%w: %s (%s)", ErrParentCycle, start.Keyname, start.ID)
		}
		seen[parent.ID] = struct{}{}
		current = parent
	}
	return nil
}

// Roots returns the top-level nodes ordered by position.
func (t *Tree) Roots() []*Node {
	if t == nil {
		return nil
	}
	return append([]*Node(nil), t.roots...)
}

// Children returns the effective children of id ordered by position.
func (t *Tree) Children(id uuid.UUID) []*Node {
	if t == nil {
		return nil
	}
	return append([]*Node(nil), t.children[id]...)
}

// Node looks up a node by id.
func (t *Tree) Node(id uuid.UUID) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	node, ok := t.nodes[id]
	return node, ok
}

// Orphans returns nodes whose parent was missing and that were promoted to roots.
func (t *Tree) Orphans() []*Node {
	if t == nil {
		return nil
	}
	return append([]*Node(nil), t.orphans...)
}

// Len reports the number of nodes in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Walk visits nodes depth-first in position order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(node *Node, depth int) bool) {
	if t == nil || fn == nil {
		return
	}
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, node := range nodes {
			if fn(node, depth) {
				visit(t.children[node.ID], depth+1)
			}
		}
	}
	visit(t.roots, 0)
}

// Nodes returns every node in walk order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, t.Len())
	t.Walk(func(node *Node, _ int) bool {
		out = append(out, node)
		return true
	})
	return out
}

func sortByPosition(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Position < nodes[j].Position
	})
}
