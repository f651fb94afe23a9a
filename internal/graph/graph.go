package graph

import "slices"

// Node is a single vertex in a task graph. T is the type of the value the
// node wraps, usually a task.
type Node[T any] struct {
	owner     T
	parent    *Node[T]
	relatives []*Node[T]
	siblings  []*Node[T]
}

// NewNode creates a node wrapping owner with no relationships.
func NewNode[T any](owner T) *Node[T] {
	return &Node[T]{owner: owner}
}

// Owner returns the value wrapped by the node.
func (n *Node[T]) Owner() T {
	return n.owner
}

// Parent returns the node whose sibling group this node belongs to, or nil.
func (n *Node[T]) Parent() *Node[T] {
	return n.parent
}

// Relatives returns a copy of the node's dependencies in insertion order.
func (n *Node[T]) Relatives() []*Node[T] {
	return slices.Clone(n.relatives)
}

// Siblings returns a copy of the node's siblings in insertion order.
func (n *Node[T]) Siblings() []*Node[T] {
	return slices.Clone(n.siblings)
}

// Depends records that n must wait for every given node to fully finish.
// Duplicates are kept; waiting twice on a finished node is a no-op.
func (n *Node[T]) Depends(nodes ...*Node[T]) {
	n.relatives = append(n.relatives, nonNil(nodes)...)
}

// Then records the same relationship as Depends.
func (n *Node[T]) Then(nodes ...*Node[T]) {
	n.relatives = append(n.relatives, nonNil(nodes)...)
}

// Add records the given nodes as siblings of n and makes n their parent.
// A node added under a second parent moves to that parent.
func (n *Node[T]) Add(nodes ...*Node[T]) {
	for _, s := range nonNil(nodes) {
		s.parent = n
		n.siblings = append(n.siblings, s)
	}
}

// References reports whether n appears as a relative or sibling of any of
// the given nodes.
func (n *Node[T]) References(nodes []*Node[T]) bool {
	for _, other := range nodes {
		if slices.Contains(other.relatives, n) || slices.Contains(other.siblings, n) {
			return true
		}
	}
	return false
}

func nonNil[T any](nodes []*Node[T]) []*Node[T] {
	out := make([]*Node[T], 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
