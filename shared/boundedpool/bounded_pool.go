// Package boundedpool provides a generic bounded concurrent free list.
//
// Instances handed to Give are retained up to the pool's capacity and handed
// back out, FIFO, by Take. Unlike sync.Pool, retained instances are never
// dropped by the runtime, so a caller that recycles an instance can observe
// that exact instance being reissued.
package boundedpool

import "sync/atomic"

// Pool is a bounded concurrent free list of instances of T.
// The zero value is not usable; construct with New.
type Pool[T any] struct {
	free   chan T
	closed atomic.Bool
}

// New returns a pool retaining at most capacity instances.
func New[T any](capacity int) *Pool[T] {
	if capacity <= 0 {
		panic("boundedpool: capacity should be greater than 0")
	}
	return &Pool[T]{
		free: make(chan T, capacity),
	}
}

// Take removes and returns a pooled instance, or reports false when the pool
// is empty or closed.
func (p *Pool[T]) Take() (T, bool) {
	if p.closed.Load() {
		var zero T
		return zero, false
	}
	select {
	case v, ok := <-p.free:
		return v, ok
	default:
		var zero T
		return zero, false
	}
}

// Give retains v for reuse. It reports false when the pool is full or
// closed, leaving the caller to release v itself.
func (p *Pool[T]) Give(v T) bool {
	if p.closed.Load() {
		return false
	}
	select {
	case p.free <- v:
		return true
	default:
		return false
	}
}

// Len returns the number of instances currently retained.
func (p *Pool[T]) Len() int {
	return len(p.free)
}

// Close drains the pool and rejects further Take/Give. Drained instances are
// passed to release, if non-nil. Repeated calls are ignored.
func (p *Pool[T]) Close(release func(T)) {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	for {
		select {
		case v := <-p.free:
			if release != nil {
				release(v)
			}
		default:
			return
		}
	}
}
