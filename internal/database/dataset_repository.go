package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqldb "github.com/dshist/dshist/internal/database/sqlc"
)

// DatasetRepository manages the saved pointers of named datasets.
type DatasetRepository struct {
	ctx *Context
}

func NewDatasetRepository(dbCtx *Context) *DatasetRepository {
	return &DatasetRepository{ctx: dbCtx}
}

func (r *DatasetRepository) FindByPath(ctx context.Context, path string) (*DatasetRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("dataset repository: %w", errNoContext)
	}

	row, err := queries.GetDataset(ctx, path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := DatasetRecordFromRow(row)
	return &record, nil
}

// FindSavedVersion returns the version row the saved pointer of path refers
// to, or nil, nil when path was never saved.
func (r *DatasetRepository) FindSavedVersion(ctx context.Context, path string) (*VersionRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("dataset repository: %w", errNoContext)
	}

	row, err := queries.GetSavedDatasetVersion(ctx, path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := VersionRecordFromRow(row)
	return &record, nil
}

// Upsert points path at record.Version. The id and creation time of an
// existing row are kept.
func (r *DatasetRepository) Upsert(ctx context.Context, record DatasetRecord) error {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return fmt.Errorf("dataset repository: %w", errNoContext)
	}

	return queries.UpsertDataset(ctx, sqldb.UpsertDatasetParams{
		Path:      record.Path,
		ID:        record.ID,
		Version:   record.Version,
		CreatedAt: record.CreatedAt.UTC(),
		UpdatedAt: record.UpdatedAt.UTC(),
	})
}

func (r *DatasetRepository) Delete(ctx context.Context, path string) (bool, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return false, fmt.Errorf("dataset repository: %w", errNoContext)
	}

	affected, err := queries.DeleteDataset(ctx, path)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *DatasetRepository) List(ctx context.Context) ([]DatasetRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("dataset repository: %w", errNoContext)
	}

	rows, err := queries.ListDatasets(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]DatasetRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, DatasetRecordFromRow(row))
	}
	return result, nil
}
