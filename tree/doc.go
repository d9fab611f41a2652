// Package tree provides an in-memory hierarchy with pooled node reuse and
// deferred construction from externally supplied object graphs.
//
// # Node-instance uniqueness
//
// A value may appear in a tree any number of times, but a given Node instance
// occupies at most one position: it has at most one parent, and Add, Insert,
// and Replace reject any link that would give it a second one. Each mutating
// operation either completes fully or leaves the structure unchanged.
//
// # Lazy materialization
//
// Factory.Map wraps a host value in a node flagged unmapped. The first read
// of that node's children materializes exactly one level: each value exposed
// by the host's caps.ChildBearer capability is wrapped in its own unmapped
// node and attached. Deeper levels are never walked until they are read, so
// arbitrarily large externally held hierarchies cost only what is actually
// visited. Racing first reads are resolved by a per-node double-checked
// lock; materialization runs exactly once per node.
//
// # Pooling and quarantine
//
// Recycling a subtree clears every node, returns the instances to the
// factory's bounded pool, and hands the former root value back to the
// caller. A recycled node is quarantined: it rejects all mutation with
// ErrRecycled until the factory reissues it, so a stale reference cannot
// corrupt an instance already reused elsewhere. Teardown dismantles a
// subtree the same way but permanently, with no pool return.
//
// Example:
//
//	f := tree.NewFactory()
//	defer f.Close()
//
//	root, _ := f.Map(hostGraph)          // nothing walked yet
//	kids := root.Children()              // one level materialized
//	clone, _ := root.Clone(nil, nil)     // pending subtrees stay pending
//	val, _ := f.Recycle(root)            // instances retained for reuse
package tree
