package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqldb "github.com/dshist/dshist/internal/database/sqlc"
)

type VersionRepository struct {
	ctx *Context
}

func NewVersionRepository(dbCtx *Context) *VersionRepository {
	return &VersionRepository{ctx: dbCtx}
}

// FindByPathAndVersion returns nil, nil when no such version is stored.
func (r *VersionRepository) FindByPathAndVersion(ctx context.Context, path, version string) (*VersionRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("version repository: %w", errNoContext)
	}

	row, err := queries.GetDatasetVersion(ctx, sqldb.GetDatasetVersionParams{Path: path, Version: version})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := VersionRecordFromRow(row)
	return &record, nil
}

// Upsert inserts the version or overwrites the row stored under the same
// (path, version).
func (r *VersionRepository) Upsert(ctx context.Context, record VersionRecord) error {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return fmt.Errorf("version repository: %w", errNoContext)
	}

	return queries.UpsertDatasetVersion(ctx, VersionUpsertParams(record))
}

func (r *VersionRepository) ListByPath(ctx context.Context, path string) ([]VersionRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("version repository: %w", errNoContext)
	}

	rows, err := queries.ListDatasetVersionsByPath(ctx, path)
	if err != nil {
		return nil, err
	}

	result := make([]VersionRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, VersionRecordFromRow(row))
	}
	return result, nil
}

func (r *VersionRepository) CountByPath(ctx context.Context, path string) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("version repository: %w", errNoContext)
	}

	return queries.CountDatasetVersionsByPath(ctx, path)
}

// DeleteByPath removes every version stored at path and reports how many
// rows went away.
func (r *VersionRepository) DeleteByPath(ctx context.Context, path string) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("version repository: %w", errNoContext)
	}

	return queries.DeleteDatasetVersionsByPath(ctx, path)
}
