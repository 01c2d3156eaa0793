package history_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/history"
	"github.com/dshist/dshist/internal/testutil"
)

func TestRenameStopsAtNamedPredecessor(t *testing.T) {
	p1 := dataset.NewPath("space", "p1")
	p2 := dataset.NewPath("space", "p2")

	store := testutil.NewMemoryStore()
	a := record(p1, "vA")
	b := record(dataset.UntitledPath, "vB")
	c := record(dataset.UntitledPath, "vC")
	testutil.Chain(a, b, c)
	store.Seed(a, b, c)

	tip := store.Lookup(c.Ref())
	require.NoError(t, history.NewRenamer(store).Rename(context.Background(), tip, p2))

	// Tip now lives at P2 and points at the rewritten B.
	newC := store.Lookup(dataset.NewRef(p2, "vC"))
	require.NotNil(t, newC)
	require.NotNil(t, newC.Previous)
	assert.True(t, newC.Previous.Equal(dataset.NewRef(p2, "vB")))
	assert.Equal(t, "p2", newC.Name)

	// B moved but still points at A under its original name.
	newB := store.Lookup(dataset.NewRef(p2, "vB"))
	require.NotNil(t, newB)
	require.NotNil(t, newB.Previous)
	assert.True(t, newB.Previous.Equal(dataset.NewRef(p1, "vA")))

	// A was never rewritten.
	assert.Nil(t, store.Lookup(dataset.NewRef(p2, "vA")))
	assert.Equal(t, []dataset.VersionRef{
		dataset.NewRef(p2, "vC"),
		dataset.NewRef(p2, "vB"),
	}, store.Puts())

	chain, err := history.NewWalker(store).Walk(context.Background(), dataset.NewRef(p2, "vC"))
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.True(t, chain[0].Path.Equal(p1))
}

func TestRenameLeavesUntitledOriginals(t *testing.T) {
	store := testutil.NewMemoryStore()
	a := record(dataset.UntitledPath, "v1")
	b := record(dataset.UntitledPath, "v2")
	testutil.Chain(a, b)
	store.Seed(a, b)

	target := dataset.NewPath("space", "kept")
	require.NoError(t, history.NewRenamer(store).Rename(context.Background(), store.Lookup(b.Ref()), target))

	assert.NotNil(t, store.Lookup(a.Ref()))
	assert.NotNil(t, store.Lookup(b.Ref()))

	root := store.Lookup(dataset.NewRef(target, "v1"))
	require.NotNil(t, root)
	assert.Nil(t, root.Previous)
}

func TestRenameSingleRecord(t *testing.T) {
	store := testutil.NewMemoryStore()
	only := record(dataset.UntitledPath, "v1")
	store.Seed(only)

	target := dataset.NewPath("space", "solo")
	tip := store.Lookup(only.Ref())
	require.NoError(t, history.NewRenamer(store).Rename(context.Background(), tip, target))

	assert.True(t, tip.Path.Equal(target))
	assert.Equal(t, []dataset.VersionRef{dataset.NewRef(target, "v1")}, store.Puts())
}

func TestRenameMissingUntitledPredecessor(t *testing.T) {
	store := testutil.NewMemoryStore()
	tip := record(dataset.UntitledPath, "v2")
	tip.Previous = &dataset.VersionRef{Path: dataset.UntitledPath, Version: "v1"}
	store.Seed(tip)

	err := history.NewRenamer(store).Rename(context.Background(), store.Lookup(tip.Ref()), ordersPath)
	require.ErrorIs(t, err, history.ErrVersionNotFound)
}

func TestRenameDetectsCycle(t *testing.T) {
	store := testutil.NewMemoryStore()
	a := record(dataset.UntitledPath, "v1")
	b := record(dataset.UntitledPath, "v2")
	testutil.Chain(a, b)
	back := b.Ref()
	a.Previous = &back
	store.Seed(a, b)

	err := history.NewRenamer(store).Rename(context.Background(), store.Lookup(b.Ref()), ordersPath)
	require.ErrorIs(t, err, history.ErrChainCycle)
}

func TestRenameRejectsNilTip(t *testing.T) {
	err := history.NewRenamer(testutil.NewMemoryStore()).Rename(context.Background(), nil, ordersPath)
	require.Error(t, err)
}
