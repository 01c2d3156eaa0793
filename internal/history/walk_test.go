package history_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/history"
	"github.com/dshist/dshist/internal/testutil"
)

var (
	ordersPath = dataset.NewPath("space", "orders")
	baseTime   = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
)

func record(path dataset.Path, version dataset.Version) *dataset.Record {
	return &dataset.Record{
		Path:          path,
		Name:          path.Leaf(),
		Version:       version,
		Derivation:    dataset.DerivationDerivedPhysical,
		CreatedAt:     baseTime,
		LastTransform: dataset.Transform{Type: dataset.TransformSort, Column: "id"},
	}
}

// linearChain builds n records at path with versions v1..vn and seeds them.
func linearChain(store *testutil.MemoryStore, path dataset.Path, n int) []*dataset.Record {
	records := make([]*dataset.Record, n)
	for i := range records {
		records[i] = record(path, dataset.Version(fmt.Sprintf("v%d", i+1)))
	}
	testutil.Chain(records...)
	store.Seed(records...)
	return records
}

func TestWalkReturnsChainOldestFirst(t *testing.T) {
	for _, n := range []int{1, 2, 5, 300} {
		t.Run(fmt.Sprintf("%d links", n), func(t *testing.T) {
			store := testutil.NewMemoryStore()
			records := linearChain(store, ordersPath, n)

			chain, err := history.NewWalker(store).Walk(context.Background(), records[n-1].Ref())
			require.NoError(t, err)
			require.Len(t, chain, n)
			for i, rec := range chain {
				assert.Equal(t, records[i].Version, rec.Version)
			}
			assert.Nil(t, chain[0].Previous)
		})
	}
}

func TestWalkFollowsLinksAcrossPaths(t *testing.T) {
	store := testutil.NewMemoryStore()
	named := record(dataset.NewPath("space", "old_name"), "v1")
	draft := record(dataset.UntitledPath, "v2")
	tip := record(ordersPath, "v3")
	testutil.Chain(named, draft, tip)
	store.Seed(named, draft, tip)

	chain, err := history.NewWalker(store).Walk(context.Background(), tip.Ref())
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.True(t, chain[0].Path.Equal(named.Path))
	assert.True(t, chain[1].Path.IsUntitled())
	assert.True(t, chain[2].Path.Equal(ordersPath))
}

func TestWalkMissingStartVersion(t *testing.T) {
	store := testutil.NewMemoryStore()

	_, err := history.NewWalker(store).Walk(context.Background(), dataset.NewRef(ordersPath, "nope"))
	require.ErrorIs(t, err, history.ErrVersionNotFound)

	var nf *history.VersionNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, dataset.Version("nope"), nf.Ref.Version)
	assert.False(t, nf.Cycle)
}

func TestWalkMissingPredecessorFailsWholeWalk(t *testing.T) {
	store := testutil.NewMemoryStore()
	tip := record(ordersPath, "v2")
	tip.Previous = &dataset.VersionRef{Path: dataset.UntitledPath, Version: "gone"}
	store.Seed(tip)

	chain, err := history.NewWalker(store).Walk(context.Background(), tip.Ref())
	require.ErrorIs(t, err, history.ErrVersionNotFound)
	assert.Nil(t, chain)

	var nf *history.VersionNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, dataset.Version("gone"), nf.Ref.Version)
}

func TestWalkDetectsSelfLink(t *testing.T) {
	store := testutil.NewMemoryStore()
	rec := record(ordersPath, "v1")
	self := rec.Ref()
	rec.Previous = &self
	store.Seed(rec)

	_, err := history.NewWalker(store).Walk(context.Background(), rec.Ref())
	require.ErrorIs(t, err, history.ErrChainCycle)
	assert.ErrorIs(t, err, history.ErrVersionNotFound)
}

func TestWalkDetectsLongerCycle(t *testing.T) {
	store := testutil.NewMemoryStore()
	records := linearChain(store, ordersPath, 3)
	loop := records[2].Ref()
	records[0].Previous = &loop
	store.Seed(records[0])

	_, err := history.NewWalker(store).Walk(context.Background(), records[2].Ref())
	require.ErrorIs(t, err, history.ErrChainCycle)
}

func TestWalkWrapsStoreFailures(t *testing.T) {
	store := testutil.NewMemoryStore()
	records := linearChain(store, ordersPath, 2)
	store.GetErr = errors.New("disk on fire")

	_, err := history.NewWalker(store).Walk(context.Background(), records[1].Ref())
	require.Error(t, err)
	assert.NotErrorIs(t, err, history.ErrVersionNotFound)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestWalkHonoursCancellation(t *testing.T) {
	store := testutil.NewMemoryStore()
	records := linearChain(store, ordersPath, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := history.NewWalker(store).Walk(ctx, records[2].Ref())
	require.ErrorIs(t, err, context.Canceled)
}
