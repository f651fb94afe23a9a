package graph

import (
	"fmt"
	"slices"
)

// Reachable returns every node reachable from roots through relatives,
// siblings and parents, roots first, in discovery order. Nil roots are skipped.
func Reachable[T any](roots ...*Node[T]) []*Node[T] {
	seen := make(map[*Node[T]]struct{})
	var out []*Node[T]
	queue := nonNil(roots)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)

		queue = append(queue, n.relatives...)
		queue = append(queue, n.siblings...)
		if n.parent != nil {
			queue = append(queue, n.parent)
		}
	}
	return out
}

type eventKind uint8

const (
	payloadEvent eventKind = iota
	doneEvent
)

type event[T any] struct {
	node *Node[T]
	kind eventKind
}

// prerequisites returns the events that must happen before e.
func (e event[T]) prerequisites() []event[T] {
	var out []event[T]
	switch e.kind {
	case payloadEvent:
		for _, r := range e.node.relatives {
			out = append(out, event[T]{node: r, kind: doneEvent})
		}
		if e.node.parent != nil {
			out = append(out, event[T]{node: e.node.parent, kind: payloadEvent})
		}
	case doneEvent:
		out = append(out, event[T]{node: e.node, kind: payloadEvent})
		for _, s := range e.node.siblings {
			out = append(out, event[T]{node: s, kind: doneEvent})
		}
	}
	return out
}

// Validate runs every structural check on the given nodes and everything
// reachable from them: a node may have only one parent, and the
// relationships must be free of cycles.
func Validate[T any](nodes ...*Node[T]) error {
	all := Reachable(nodes...)
	claimed := make(map[*Node[T]]*Node[T])
	for _, n := range all {
		for _, s := range n.siblings {
			if prev, ok := claimed[s]; ok && prev != n {
				return invalidf("%s is a sibling of both %s and %s", label(s), label(prev), label(n))
			}
			claimed[s] = n
		}
	}
	return DetectCycles(all...)
}

// DetectCycles checks the given nodes, and everything reachable from them,
// for relationships that can never be satisfied. It returns a *Error
// wrapping ErrCycle whose path names the nodes involved, or nil.
func DetectCycles[T any](nodes ...*Node[T]) error {
	all := Reachable(nodes...)

	// Classic depth-first search with three colours:
	// unvisited (absent), in progress (1), and finished (2).
	colors := make(map[event[T]]uint8)
	var stack []event[T]

	var visit func(e event[T]) error
	visit = func(e event[T]) error {
		switch colors[e] {
		case 2:
			return nil
		case 1:
			return cycleError(cyclePath(stack, e))
		}
		colors[e] = 1
		stack = append(stack, e)
		for _, pre := range e.prerequisites() {
			if err := visit(pre); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		colors[e] = 2
		return nil
	}

	for _, n := range all {
		if err := visit(event[T]{node: n, kind: doneEvent}); err != nil {
			return err
		}
	}
	return nil
}

// cyclePath renders the part of stack that closes the cycle at e, naming each
// node once per consecutive run.
func cyclePath[T any](stack []event[T], e event[T]) []string {
	start := 0
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == e {
			start = i
			break
		}
	}
	cycle := append(slices.Clone(stack[start:]), e)
	var path []string
	for _, ev := range cycle {
		name := label(ev.node)
		if len(path) > 0 && path[len(path)-1] == name {
			continue
		}
		path = append(path, name)
	}
	if len(path) == 1 {
		path = append(path, path[0])
	}
	return path
}

func label[T any](n *Node[T]) string {
	return fmt.Sprint(n.owner)
}
