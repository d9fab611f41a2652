// Package traverse walks any value exposing the caps.ChildBearer capability,
// covering both tree.Node hierarchies and arbitrary host graphs. Values
// without the capability are leaves.
//
// Results are lazily pulled, one-shot, forward-only sequences: ranging over
// a returned iter.Seq pulls elements on demand, breaking abandons the walk,
// and re-invoking the traversal call starts an independent walk from scratch.
package traverse

import (
	"iter"

	"github.com/on-the-ground/lazytree/caps"
	"github.com/on-the-ground/lazytree/shared/helper"
)

// ErrTypeMismatch reports a typed traversal that met a descendant whose
// runtime value is not the expected type: the hierarchy is not uniform and
// the typed walk is unsafe.
var ErrTypeMismatch = helper.ErrTypeMismatch

// Mode selects the visiting order of a traversal.
type Mode int

const (
	// BreadthFirst yields direct children, then all grandchildren flattened
	// across the children, then each grandchild's further descendants
	// recursively in subtree order. The ordering is breadth-correct only
	// through depth two; beyond that it degrades to per-subtree order. The
	// approximation avoids an explicit queue and is part of the contract:
	// consumers relying on it would break under strict level order.
	BreadthFirst Mode = iota

	// DepthFirst yields, for each child, all of that child's descendants
	// before the child itself (post-order).
	DepthFirst
)

// Option configures a traversal.
type Option func(*config)

type config struct {
	mode Mode
}

// WithMode selects the traversal mode. The default is BreadthFirst.
func WithMode(m Mode) Option {
	return func(c *config) {
		c.mode = m
	}
}

func newConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Descendants returns the descendants of start, excluding start itself, in
// the order selected by WithMode.
func Descendants(start any, opts ...Option) iter.Seq[any] {
	cfg := newConfig(opts)
	return func(yield func(any) bool) {
		switch cfg.mode {
		case DepthFirst:
			depthFirst(start, yield)
		default:
			breadthFirst(start, yield)
		}
	}
}

// Nodes returns the descendants of start plus start itself: first for
// breadth-first, last for depth-first.
func Nodes(start any, opts ...Option) iter.Seq[any] {
	cfg := newConfig(opts)
	return func(yield func(any) bool) {
		switch cfg.mode {
		case DepthFirst:
			if depthFirst(start, yield) {
				yield(start)
			}
		default:
			if yield(start) {
				breadthFirst(start, yield)
			}
		}
	}
}

// DescendantsOfType is Descendants with each element re-cast to T. A
// descendant that is not a T yields a zero T with an ErrTypeMismatch error
// and ends the walk.
func DescendantsOfType[T any](start any, opts ...Option) iter.Seq2[T, error] {
	return typedSeq[T](Descendants(start, opts...))
}

// NodesOfType is Nodes with each element re-cast to T, failing like
// DescendantsOfType on the first non-conforming element.
func NodesOfType[T any](start any, opts ...Option) iter.Seq2[T, error] {
	return typedSeq[T](Nodes(start, opts...))
}

func typedSeq[T any](seq iter.Seq[any]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v := range seq {
			typed, err := helper.As[T](v)
			if !yield(typed, err) || err != nil {
				return
			}
		}
	}
}

func childValues(v any) []any {
	if bearer, ok := v.(caps.ChildBearer); ok {
		return bearer.ChildValues()
	}
	return nil
}

// breadthFirst yields children, then grandchildren flattened across all
// children, then per-grandchild subtrees. Reports false once the consumer
// stops pulling.
func breadthFirst(v any, yield func(any) bool) bool {
	kids := childValues(v)
	for _, c := range kids {
		if !yield(c) {
			return false
		}
	}
	grandkids := make([][]any, len(kids))
	for i, c := range kids {
		grandkids[i] = childValues(c)
		for _, g := range grandkids[i] {
			if !yield(g) {
				return false
			}
		}
	}
	for _, gs := range grandkids {
		for _, g := range gs {
			if !breadthFirst(g, yield) {
				return false
			}
		}
	}
	return true
}

// depthFirst yields each child's descendants, then the child itself.
func depthFirst(v any, yield func(any) bool) bool {
	for _, c := range childValues(v) {
		if !depthFirst(c, yield) {
			return false
		}
		if !yield(c) {
			return false
		}
	}
	return true
}
