package tree

import "fmt"

// CloneCallback receives (original, clone) pairs as each cloned subtree
// finishes, bottom-up, letting callers build an original-to-clone
// correspondence without a second pass over either tree.
type CloneCallback func(original, clone *Node)

// Clone duplicates the subtree rooted at n, depth-first pre-order: one fresh
// pooled node per visited node, the value copied by plain assignment (no deep
// copy of the value itself), and the unmapped flag preserved exactly, so
// cloning a not-yet-materialized subtree never forces materialization.
//
// With newParent nil the clone is its own detached root; otherwise it is
// attached under newParent, which must belong to the same factory and must
// itself be parentless. onCloned may be nil.
func (n *Node) Clone(newParent *Node, onCloned CloneCallback) (*Node, error) {
	if n.recycled.Load() {
		return nil, fmt.Errorf("%w: cannot clone", ErrRecycled)
	}
	if newParent != nil {
		if newParent.recycled.Load() {
			return nil, fmt.Errorf("%w: cannot clone into it", ErrRecycled)
		}
		if newParent.factory != n.factory {
			return nil, fmt.Errorf("%w: cannot clone into it", ErrForeignNode)
		}
		if newParent.parent != nil {
			return nil, fmt.Errorf("%w: clone parent must be a root", ErrNotDetached)
		}
	}
	clone := n.cloneSubtree(onCloned)
	if newParent != nil {
		if err := newParent.Add(clone); err != nil {
			return nil, err
		}
	}
	return clone, nil
}

func (n *Node) cloneSubtree(onCloned CloneCallback) *Node {
	clone := n.factory.issueNode()
	n.mu.Lock()
	clone.value = n.value
	clone.unmapped.Store(n.unmapped.Load())
	kids := make([]*Node, len(n.children))
	copy(kids, n.children)
	n.mu.Unlock()
	for _, k := range kids {
		kidClone := k.cloneSubtree(onCloned)
		kidClone.parent = clone
		clone.children = append(clone.children, kidClone)
	}
	if onCloned != nil {
		onCloned(n, clone)
	}
	return clone
}

// CloneTree clones the whole tree containing n, starting from its absolute
// root, and returns the clone counterpart of n, positioned within the cloned
// tree exactly as n is within the original.
func (n *Node) CloneTree() (*Node, error) {
	if n.recycled.Load() {
		return nil, fmt.Errorf("%w: cannot clone", ErrRecycled)
	}
	var counterpart *Node
	_, err := n.Root().Clone(nil, func(original, clone *Node) {
		if original == n {
			counterpart = clone
		}
	})
	if err != nil {
		return nil, err
	}
	return counterpart, nil
}
