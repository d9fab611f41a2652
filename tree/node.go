package tree

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/on-the-ground/lazytree/caps"
)

// Node is a tree vertex holding one value and exclusively owning its child
// nodes. A node instance occupies at most one position in at most one tree at
// any instant; Add, Insert, and Replace reject anything that would violate
// that.
//
// A node whose value was wrapped by Factory.Map starts unmapped: its child
// list is not authoritative until the first children read, which materializes
// one level from the value's caps.ChildBearer capability. Materialization
// runs exactly once per node regardless of concurrent readers.
type Node struct {
	factory *Factory

	// mu guards the child list and the materialization critical section.
	// unmapped doubles as the lock-free fast path of the double check.
	mu       sync.Mutex
	unmapped atomic.Bool
	recycled atomic.Bool

	value    any
	parent   *Node
	children []*Node
}

// Factory returns the factory this node is permanently bound to.
func (n *Node) Factory() *Factory {
	return n.factory
}

// Value returns the node's value, or nil if the node has been recycled.
func (n *Node) Value() any {
	if n.recycled.Load() {
		return nil
	}
	return n.value
}

// SetValue assigns the node's value. An explicit assignment overrides any
// pending lazy mapping, so the unmapped flag is cleared.
// Returns ErrRecycled if the node has been recycled.
func (n *Node) SetValue(v any) error {
	if n.recycled.Load() {
		return fmt.Errorf("%w: SetValue", ErrRecycled)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.value = v
	n.unmapped.Store(false)
	return nil
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Root walks the parent chain to the parentless ancestor. Cost is
// proportional to the node's depth.
func (n *Node) Root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Unmapped reports whether the node's children have not been materialized yet.
func (n *Node) Unmapped() bool {
	return n.unmapped.Load()
}

// Recycled reports whether the node is quarantined after a recycle or
// teardown. A recycled node rejects all mutation until reissued by its
// factory.
func (n *Node) Recycled() bool {
	return n.recycled.Load()
}

// Children returns a copy of the node's child list, materializing it first
// if needed.
func (n *Node) Children() []*Node {
	n.materialize()
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildValues implements caps.ChildBearer, so a Node tree walks with the same
// traversal algorithms as any host hierarchy. The yielded elements are the
// child nodes themselves.
func (n *Node) ChildValues() []any {
	kids := n.Children()
	out := make([]any, len(kids))
	for i, c := range kids {
		out[i] = c
	}
	return out
}

// materialize populates the child list from the value's caps.ChildBearer
// capability, exactly once. Fast path: the unmapped flag is checked without
// the lock, re-checked under it. Each host child is mapped one level deep,
// itself unmapped; deeper levels are never walked until read.
func (n *Node) materialize() {
	if !n.unmapped.Load() {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.unmapped.Load() {
		return
	}
	if bearer, ok := n.value.(caps.ChildBearer); ok {
		for _, cv := range bearer.ChildValues() {
			child := n.factory.mapValue(cv)
			child.parent = n
			n.children = append(n.children, child)
		}
	}
	n.unmapped.Store(false)
}

// Add appends child to the node's child list and sets its parent
// back-reference. The receiver is materialized first, so manually added
// children never mix into a pending lazy mapping.
//
// Fails with ErrAlreadyChild if child is already a child of this node,
// ErrDifferentParent if it belongs to another parent, ErrForeignNode if it
// was issued by a different factory, and ErrRecycled if either node is
// recycled.
func (n *Node) Add(child *Node) error {
	return n.insert(-1, child)
}

// Insert is Add at a position; i is clamped to the child list bounds.
func (n *Node) Insert(i int, child *Node) error {
	if i < 0 {
		i = 0
	}
	return n.insert(i, child)
}

func (n *Node) insert(i int, child *Node) error {
	if child == nil {
		return fmt.Errorf("%w: child", ErrNilArgument)
	}
	if n.recycled.Load() {
		return fmt.Errorf("%w: cannot add to it", ErrRecycled)
	}
	if child.recycled.Load() {
		return fmt.Errorf("%w: cannot add it", ErrRecycled)
	}
	if child.factory != n.factory {
		return fmt.Errorf("%w: cannot add it", ErrForeignNode)
	}
	n.materialize()
	n.mu.Lock()
	defer n.mu.Unlock()
	if p := child.parent; p != nil {
		if p == n {
			return fmt.Errorf("%w: %v", ErrAlreadyChild, child.value)
		}
		return fmt.Errorf("%w: %v", ErrDifferentParent, child.value)
	}
	if i < 0 || i > len(n.children) {
		i = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.parent = n
	return nil
}

// Remove unlinks child from the node and clears the child's parent
// back-reference. Removing a non-member is a no-op.
func (n *Node) Remove(child *Node) error {
	if child == nil {
		return fmt.Errorf("%w: child", ErrNilArgument)
	}
	if n.recycled.Load() {
		return fmt.Errorf("%w: cannot remove from it", ErrRecycled)
	}
	n.materialize()
	n.mu.Lock()
	defer n.mu.Unlock()
	if i := indexOf(n.children, child); i >= 0 {
		n.children = append(n.children[:i], n.children[i+1:]...)
		child.parent = nil
	}
	return nil
}

// Contains reports whether child is a direct child of the node.
func (n *Node) Contains(child *Node) bool {
	if child == nil || n.recycled.Load() {
		return false
	}
	n.materialize()
	n.mu.Lock()
	defer n.mu.Unlock()
	return indexOf(n.children, child) >= 0
}

// Replace swaps old for new in place: new takes old's list position, old is
// detached. new must be parentless and from the same factory, old must be a
// direct child; otherwise the structure is left unchanged.
func (n *Node) Replace(old, new *Node) error {
	if old == nil {
		return fmt.Errorf("%w: old", ErrNilArgument)
	}
	if new == nil {
		return fmt.Errorf("%w: new", ErrNilArgument)
	}
	if n.recycled.Load() || new.recycled.Load() {
		return fmt.Errorf("%w: cannot replace", ErrRecycled)
	}
	if new.factory != n.factory {
		return fmt.Errorf("%w: cannot attach it", ErrForeignNode)
	}
	n.materialize()
	n.mu.Lock()
	defer n.mu.Unlock()
	if new.parent != nil {
		return fmt.Errorf("%w: %v", ErrNotDetached, new.value)
	}
	i := indexOf(n.children, old)
	if i < 0 {
		return fmt.Errorf("%w: %v", ErrNotAChild, old.value)
	}
	n.children[i] = new
	old.parent = nil
	new.parent = n
	return nil
}

// Detach removes the node from its parent's child list, if any. Idempotent.
func (n *Node) Detach() error {
	if n.recycled.Load() {
		return fmt.Errorf("%w: cannot detach", ErrRecycled)
	}
	n.detach()
	return nil
}

func (n *Node) detach() {
	p := n.parent
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := indexOf(p.children, n); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	n.parent = nil
}

// Teardown permanently dismantles the node and its descendants with no pool
// reuse: the value is cleared, the node detaches itself, each child's parent
// pointer is cleared directly (no per-child detach search), and the child
// list is emptied. Torn-down nodes are quarantined like recycled ones but are
// never reissued.
func (n *Node) Teardown() {
	if n.recycled.Load() {
		return
	}
	n.detach()
	n.teardownTree()
}

func (n *Node) teardownTree() {
	n.mu.Lock()
	kids := n.children
	n.value = nil
	n.children = nil
	n.unmapped.Store(false)
	n.mu.Unlock()
	n.recycled.Store(true)
	for _, c := range kids {
		c.parent = nil
		c.teardownTree()
	}
}

// Recycle returns the node and its descendants to the owning factory's pool
// and hands the node's former value back to the caller.
// Equivalent to n.Factory().Recycle(n).
func (n *Node) Recycle() (any, error) {
	return n.factory.Recycle(n)
}

func indexOf(nodes []*Node, target *Node) int {
	for i, c := range nodes {
		if c == target {
			return i
		}
	}
	return -1
}
