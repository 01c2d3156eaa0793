package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshist/dshist/internal/database"
	"github.com/dshist/dshist/internal/executor"
	"github.com/dshist/dshist/internal/history"
	"github.com/dshist/dshist/internal/services"
	"github.com/dshist/dshist/internal/usecase"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	dbCtx, err := database.CreateDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, database.CloseDatabase(dbCtx))
	})

	exec := executor.NewLocal(services.NewJobService(dbCtx), nil)
	t.Cleanup(exec.Wait)

	explore := usecase.NewExplore(dbCtx, exec, usecase.Options{User: "ada", MetadataTimeout: 5 * time.Second})
	return NewServer(explore, "test", nil)
}

func TestNewTransformSaveFlow(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()

	_, created, err := s.handleNew(ctx, nil, NewInput{
		Table:   "pg.customers",
		Columns: []string{"id", "name"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tmp.UNTITLED", created.Version.Path)
	assert.Equal(t, "DERIVED_PHYSICAL", created.Version.Derivation)
	assert.NotEmpty(t, created.JobID)
	require.Len(t, created.History.Items, 1)
	assert.Equal(t, "Created from pg.customers", created.History.Items[0].Description)

	_, sorted, err := s.handleTransform(ctx, nil, TransformInput{
		Path:    created.Version.Path,
		Version: created.Version.Version,
		Type:    "sort",
		Column:  "id",
	})
	require.NoError(t, err)
	assert.Equal(t, created.Version.Path+"@"+created.Version.Version, sorted.Version.Previous)
	require.Len(t, sorted.History.Items, 2)
	assert.True(t, sorted.History.Items[1].Selected)

	_, saved, err := s.handleSave(ctx, nil, SaveInput{
		Path:    sorted.Version.Path,
		Version: sorted.Version.Version,
		NewPath: "space.customers_sorted",
	})
	require.NoError(t, err)
	assert.Equal(t, "space.customers_sorted", saved.Version.Path)
	assert.True(t, saved.Version.Named)

	_, shown, err := s.handleShow(ctx, nil, ShowInput{Path: "space.customers_sorted"})
	require.NoError(t, err)
	assert.Equal(t, sorted.Version.Version, shown.Version.Version)

	_, hist, err := s.handleHistory(ctx, nil, HistoryInput{
		Path:     "space.customers_sorted",
		Selected: sorted.Version.Version,
	})
	require.NoError(t, err)
	require.Len(t, hist.History.Items, 2)
	assert.False(t, hist.History.Edited)
	for _, item := range hist.History.Items {
		assert.Equal(t, "space.customers_sorted", item.Path)
		assert.Equal(t, string(history.StatusCompleted), item.State)
	}

	_, list, err := s.handleList(ctx, nil, ListInput{})
	require.NoError(t, err)
	require.Len(t, list.Datasets, 1)
	assert.Equal(t, "space.customers_sorted", list.Datasets[0].Path)
}

func TestNewRequiresExactlyOneSource(t *testing.T) {
	s := setupServer(t)

	_, _, err := s.handleNew(context.Background(), nil, NewInput{})
	require.Error(t, err)

	_, _, err = s.handleNew(context.Background(), nil, NewInput{SQL: "select 1", Table: "pg.customers"})
	require.Error(t, err)
}

func TestShowUnknownVersion(t *testing.T) {
	s := setupServer(t)

	_, _, err := s.handleShow(context.Background(), nil, ShowInput{Path: "space.none", Version: "v1"})
	require.ErrorIs(t, err, history.ErrVersionNotFound)
}

func TestShowUnsavedPath(t *testing.T) {
	s := setupServer(t)

	_, _, err := s.handleShow(context.Background(), nil, ShowInput{Path: "space.none"})
	require.ErrorIs(t, err, history.ErrDatasetNotFound)
}

func TestTransformRejectsUnknownType(t *testing.T) {
	s := setupServer(t)

	_, _, err := s.handleTransform(context.Background(), nil, TransformInput{
		Path:    "space.orders",
		Version: "v1",
		Type:    "explode",
	})
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
}

func TestSaveRejectsUntitledTarget(t *testing.T) {
	s := setupServer(t)

	_, _, err := s.handleSave(context.Background(), nil, SaveInput{
		Path:    "tmp.UNTITLED",
		Version: "v1",
		NewPath: "tmp.UNTITLED",
	})
	require.ErrorIs(t, err, usecase.ErrUntitledTarget)
}
