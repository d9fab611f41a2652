package tree_test

import (
	"sync"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/lazytree/tree"
)

func blankNode(t *testing.T, f *tree.Factory) *tree.Node {
	t.Helper()
	n, err := f.GetBlankNode()
	require.NoError(t, err)
	return n
}

func TestNode_AddSetsParent(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	parent := blankNode(t, f)
	child := blankNode(t, f)

	require.NoError(t, parent.Add(child))
	assert.Same(t, parent, child.Parent())
	assert.True(t, parent.Contains(child))
	require.Len(t, parent.Children(), 1)
	assert.Same(t, child, parent.Children()[0])
}

func TestNode_AddRejectsSecondParent(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	parent := blankNode(t, f)
	other := blankNode(t, f)
	child := blankNode(t, f)
	require.NoError(t, parent.Add(child))

	err := parent.Add(child)
	require.ErrorIs(t, err, tree.ErrAlreadyChild)
	assert.True(t, errdefs.IsFailedPrecondition(err))

	err = other.Add(child)
	require.ErrorIs(t, err, tree.ErrDifferentParent)

	// the failed adds left the structure unchanged
	assert.Len(t, parent.Children(), 1)
	assert.Empty(t, other.Children())
	assert.Same(t, parent, child.Parent())
}

func TestNode_AddNil(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	err := blankNode(t, f).Add(nil)
	require.ErrorIs(t, err, tree.ErrNilArgument)
	assert.True(t, errdefs.IsInvalidArgument(err))
}

func TestNode_AddForeignNode(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()
	other := tree.NewFactory()
	defer other.Close()

	err := blankNode(t, f).Add(blankNode(t, other))
	require.ErrorIs(t, err, tree.ErrForeignNode)
}

func TestNode_InsertPosition(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	parent := blankNode(t, f)
	a := blankNode(t, f)
	b := blankNode(t, f)
	mid := blankNode(t, f)
	require.NoError(t, parent.Add(a))
	require.NoError(t, parent.Add(b))

	require.NoError(t, parent.Insert(1, mid))
	kids := parent.Children()
	require.Len(t, kids, 3)
	assert.Same(t, a, kids[0])
	assert.Same(t, mid, kids[1])
	assert.Same(t, b, kids[2])

	// out-of-range positions clamp
	tail := blankNode(t, f)
	require.NoError(t, parent.Insert(99, tail))
	assert.Same(t, tail, parent.Children()[3])
}

func TestNode_RemoveClearsParent(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	parent := blankNode(t, f)
	child := blankNode(t, f)
	require.NoError(t, parent.Add(child))

	require.NoError(t, parent.Remove(child))
	assert.Nil(t, child.Parent())
	assert.Empty(t, parent.Children())
	assert.False(t, parent.Contains(child))

	// removing a non-member is a no-op
	require.NoError(t, parent.Remove(child))
}

func TestNode_Replace(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	parent := blankNode(t, f)
	a := blankNode(t, f)
	b := blankNode(t, f)
	c := blankNode(t, f)
	repl := blankNode(t, f)
	require.NoError(t, parent.Add(a))
	require.NoError(t, parent.Add(b))
	require.NoError(t, parent.Add(c))

	require.NoError(t, parent.Replace(b, repl))
	kids := parent.Children()
	require.Len(t, kids, 3)
	assert.Same(t, repl, kids[1])
	assert.Same(t, parent, repl.Parent())
	assert.Nil(t, b.Parent())
}

func TestNode_ReplaceInvalid(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	parent := blankNode(t, f)
	child := blankNode(t, f)
	require.NoError(t, parent.Add(child))

	t.Run("replacement not orphan", func(t *testing.T) {
		owner := blankNode(t, f)
		owned := blankNode(t, f)
		require.NoError(t, owner.Add(owned))

		err := parent.Replace(child, owned)
		require.ErrorIs(t, err, tree.ErrNotDetached)
		assert.Same(t, parent, child.Parent())
		assert.Same(t, owner, owned.Parent())
	})

	t.Run("target not a member", func(t *testing.T) {
		err := parent.Replace(blankNode(t, f), blankNode(t, f))
		require.ErrorIs(t, err, tree.ErrNotAChild)
		require.Len(t, parent.Children(), 1)
	})
}

func TestNode_DetachIdempotent(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	parent := blankNode(t, f)
	child := blankNode(t, f)
	require.NoError(t, parent.Add(child))

	require.NoError(t, child.Detach())
	assert.Nil(t, child.Parent())
	assert.Empty(t, parent.Children())

	require.NoError(t, child.Detach())
}

func TestNode_RootChain(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	root := blankNode(t, f)
	mid := blankNode(t, f)
	leaf := blankNode(t, f)
	require.NoError(t, root.Add(mid))
	require.NoError(t, mid.Add(leaf))

	assert.Nil(t, root.Parent())
	assert.Same(t, root, root.Root())
	assert.Same(t, root, leaf.Root())
	assert.Same(t, leaf.Root(), leaf.Parent().Root())
}

func TestNode_SetValueClearsUnmapped(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	host := newOrg("acme", newOrg("dev"))
	n, err := f.Map(host)
	require.NoError(t, err)
	require.True(t, n.Unmapped())

	require.NoError(t, n.SetValue("replaced"))
	assert.False(t, n.Unmapped())
	assert.Equal(t, "replaced", n.Value())

	// the pending mapping was overridden, not triggered
	assert.Empty(t, n.Children())
	assert.EqualValues(t, 0, host.reads.Load())
}

func TestNode_LazyMaterialization(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	support := newOrg("support")
	dev := newOrg("dev", newOrg("backend"), newOrg("frontend"))
	acme := newOrg("acme", dev, support)

	n, err := f.Map(acme)
	require.NoError(t, err)
	assert.EqualValues(t, 0, acme.reads.Load(), "mapping must not walk the host")

	kids := n.Children()
	require.Len(t, kids, 2)
	assert.EqualValues(t, 1, acme.reads.Load())
	assert.EqualValues(t, 0, dev.reads.Load(), "materialization is one level at a time")

	assert.Same(t, dev, kids[0].Value())
	assert.Same(t, support, kids[1].Value())
	assert.True(t, kids[0].Unmapped())
	assert.Same(t, n, kids[0].Parent())

	// second read does not re-materialize
	n.Children()
	assert.EqualValues(t, 1, acme.reads.Load())
}

func TestNode_AddMaterializesFirst(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	host := newOrg("acme", newOrg("dev"))
	n, err := f.Map(host)
	require.NoError(t, err)

	manual := blankNode(t, f)
	require.NoError(t, n.Add(manual))

	kids := n.Children()
	require.Len(t, kids, 2)
	assert.Same(t, manual, kids[1], "manual child lands after the mapped ones")
	assert.EqualValues(t, 1, host.reads.Load())
}

func TestNode_ConcurrentMaterializationRunsOnce(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	host := newOrg("acme", newOrg("a"), newOrg("b"), newOrg("c"))
	n, err := f.Map(host)
	require.NoError(t, err)

	const readers = 32
	results := make([][]*tree.Node, readers)
	var wg sync.WaitGroup
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start.Wait()
			results[i] = n.Children()
		}(i)
	}
	start.Done()
	wg.Wait()

	assert.EqualValues(t, 1, host.reads.Load(), "materialization must run exactly once")
	for _, kids := range results {
		require.Len(t, kids, 3)
		for j, k := range kids {
			assert.Same(t, results[0][j], k, "all readers observe identical children")
		}
	}
}

func TestNode_RecycledQuarantine(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	n := blankNode(t, f)
	orphan := blankNode(t, f) // created up front so the pool stays untouched
	require.NoError(t, n.SetValue("v"))
	val, err := f.Recycle(n)
	require.NoError(t, err)
	assert.Equal(t, "v", val)
	require.True(t, n.Recycled())

	assert.ErrorIs(t, n.SetValue("again"), tree.ErrRecycled)
	assert.ErrorIs(t, n.Add(orphan), tree.ErrRecycled)
	assert.ErrorIs(t, n.Detach(), tree.ErrRecycled)
	assert.Nil(t, n.Value())

	// reissuing lifts the quarantine
	reissued := blankNode(t, f)
	require.Same(t, n, reissued)
	require.False(t, reissued.Recycled())
	require.NoError(t, reissued.SetValue("fresh"))
	require.NoError(t, reissued.Add(orphan))
}

func TestNode_Teardown(t *testing.T) {
	f := tree.NewFactory()
	defer f.Close()

	parent := blankNode(t, f)
	n := blankNode(t, f)
	x := blankNode(t, f)
	y := blankNode(t, f)
	require.NoError(t, parent.Add(n))
	require.NoError(t, n.Add(x))
	require.NoError(t, n.Add(y))
	require.NoError(t, n.SetValue("doomed"))

	n.Teardown()

	assert.Empty(t, parent.Children(), "teardown detaches from the old parent")
	assert.Empty(t, n.Children())
	assert.Nil(t, n.Value())
	assert.Nil(t, x.Parent())
	assert.Nil(t, y.Parent())
	assert.True(t, n.Recycled())
	assert.True(t, x.Recycled())

	// torn-down instances are not retained for reuse
	fresh := blankNode(t, f)
	assert.NotSame(t, n, fresh)
	assert.NotSame(t, x, fresh)
}
