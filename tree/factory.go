package tree

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/on-the-ground/lazytree/caps"
	"github.com/on-the-ground/lazytree/shared/boundedpool"
)

const defaultPoolCapacity = 128

// Factory owns a bounded pool of reusable Node instances and mediates node
// creation, tree mapping from a host root, and recycling. Every node it
// issues is permanently bound to it; operations mixing nodes across
// factories fail with ErrForeignNode.
//
// The pool supports concurrent take/give, so independent trees may be built,
// cloned, and recycled against one Factory in parallel.
type Factory struct {
	id      string
	poolCap int
	pool    *boundedpool.Pool[*Node]
	closed  atomic.Bool
	logger  *zap.Logger
}

// FactoryOption configures a Factory under construction.
type FactoryOption func(*Factory)

// WithPoolCapacity bounds the number of recycled nodes the factory retains
// for reuse. Nodes recycled beyond the bound are dropped.
func WithPoolCapacity(n int) FactoryOption {
	return func(f *Factory) {
		f.poolCap = n
	}
}

// WithLogger attaches a logger for debug-level pool and mapping events.
// The default is a nop logger.
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory returns a Factory with an empty pool.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		id:      uuid.New().String(),
		poolCap: defaultPoolCapacity,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.pool = boundedpool.New[*Node](f.poolCap)
	f.logger.Debug("created node factory",
		zap.String("factory_id", f.id),
		zap.Int("pool_capacity", f.poolCap),
	)
	return f
}

// ID returns the factory's unique identifier.
func (f *Factory) ID() string {
	return f.id
}

// GetBlankNode issues a node with no value, taking one from the pool or
// allocating fresh when the pool is empty. The recycled flag of a reissued
// node is cleared, lifting its quarantine.
// Fails with ErrFactoryClosed once the factory has been closed.
func (f *Factory) GetBlankNode() (*Node, error) {
	if f.closed.Load() {
		return nil, fmt.Errorf("%w: %s", ErrFactoryClosed, f.id)
	}
	return f.issueNode(), nil
}

// GetNodeWithValue issues a node carrying value. With asUnmapped set the node
// stays marked unmapped even though the value was assigned manually, so its
// children still materialize lazily from the value.
func (f *Factory) GetNodeWithValue(value any, asUnmapped bool) (*Node, error) {
	n, err := f.GetBlankNode()
	if err != nil {
		return nil, err
	}
	n.value = value
	n.unmapped.Store(asUnmapped)
	return n, nil
}

// Map wraps root in a new node, always flagged unmapped: whether root exposes
// children is deferred to the first children read, so externally held
// hierarchies are never walked further than what is actually read.
func (f *Factory) Map(root any) (*Node, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: root", ErrNilArgument)
	}
	n, err := f.GetNodeWithValue(root, true)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("mapped host root",
		zap.String("factory_id", f.id),
		zap.String("root_type", fmt.Sprintf("%T", root)),
	)
	return n, nil
}

// MapRoot maps the root value exposed by a caps.RootHolder container.
func (f *Factory) MapRoot(container caps.RootHolder) (*Node, error) {
	if container == nil {
		return nil, fmt.Errorf("%w: container", ErrNilArgument)
	}
	return f.Map(container.RootValue())
}

// Recycle detaches n, clears and quarantines its whole subtree, returns the
// nodes to the pool, and hands n's former value back to the caller. Nodes
// beyond the pool bound, or recycled after Close, are dropped instead of
// retained.
//
// Fails with ErrForeignNode for a node issued by another factory and
// ErrRecycled for a node already recycled.
func (f *Factory) Recycle(n *Node) (any, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: node", ErrNilArgument)
	}
	if n.factory != f {
		return nil, fmt.Errorf("%w: recycling via factory %s", ErrForeignNode, f.id)
	}
	if n.recycled.Load() {
		return nil, fmt.Errorf("%w: cannot recycle again", ErrRecycled)
	}
	val := n.value
	n.detach()
	f.recycleTree(n)
	f.logger.Debug("recycled subtree",
		zap.String("factory_id", f.id),
		zap.Int("pool_len", f.pool.Len()),
	)
	return val, nil
}

// recycleTree clears and quarantines the subtree bottom-up, giving children
// to the pool before their parent.
func (f *Factory) recycleTree(n *Node) {
	n.mu.Lock()
	kids := n.children
	n.value = nil
	n.children = nil
	n.unmapped.Store(false)
	n.mu.Unlock()
	n.recycled.Store(true)
	for _, c := range kids {
		c.parent = nil
		f.recycleTree(c)
	}
	f.pool.Give(n)
}

// issueNode takes a pooled node, lifting its quarantine, or allocates fresh.
// Unlike GetBlankNode it keeps working after Close (fresh allocation only),
// so materialization and cloning of already-issued nodes never fail.
func (f *Factory) issueNode() *Node {
	if n, ok := f.pool.Take(); ok {
		n.recycled.Store(false)
		return n
	}
	return &Node{factory: f}
}

// mapValue is the internal Map used by materialization: no nil check, no
// closed check, node flagged unmapped.
func (f *Factory) mapValue(v any) *Node {
	n := f.issueNode()
	n.value = v
	n.unmapped.Store(true)
	return n
}

// Close releases the pool. Idempotent. Nodes already issued remain
// individually usable, but recycling falls back to plain teardown: cleared
// subtrees are dropped for the collector instead of being retained.
func (f *Factory) Close() {
	if !f.closed.CompareAndSwap(false, true) {
		return
	}
	f.pool.Close(nil)
	f.logger.Debug("closed node factory", zap.String("factory_id", f.id))
}
