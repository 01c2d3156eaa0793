package sqldb

import (
	"context"
	"database/sql"
	"time"
)

const getDatasetVersion = `-- name: GetDatasetVersion :one
SELECT path, version, id, name, is_named, derivation, sql, context,
       previous_path, previous_version, parents, grand_parents, field_origins,
       last_transform, owner, created_at
FROM dataset_versions
WHERE path = ? AND version = ?
`

type GetDatasetVersionParams struct {
	Path    string
	Version string
}

func (q *Queries) GetDatasetVersion(ctx context.Context, arg GetDatasetVersionParams) (DatasetVersion, error) {
	row := q.db.QueryRowContext(ctx, getDatasetVersion, arg.Path, arg.Version)
	return scanDatasetVersion(row)
}

const upsertDatasetVersion = `-- name: UpsertDatasetVersion :exec
INSERT INTO dataset_versions (
    path, version, id, name, is_named, derivation, sql, context,
    previous_path, previous_version, parents, grand_parents, field_origins,
    last_transform, owner, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path, version) DO UPDATE SET
    id = excluded.id,
    name = excluded.name,
    is_named = excluded.is_named,
    derivation = excluded.derivation,
    sql = excluded.sql,
    context = excluded.context,
    previous_path = excluded.previous_path,
    previous_version = excluded.previous_version,
    parents = excluded.parents,
    grand_parents = excluded.grand_parents,
    field_origins = excluded.field_origins,
    last_transform = excluded.last_transform,
    owner = excluded.owner,
    created_at = excluded.created_at
`

type UpsertDatasetVersionParams struct {
	Path            string
	Version         string
	ID              string
	Name            string
	IsNamed         int64
	Derivation      string
	Sql             string
	Context         string
	PreviousPath    sql.NullString
	PreviousVersion sql.NullString
	Parents         string
	GrandParents    string
	FieldOrigins    string
	LastTransform   string
	Owner           string
	CreatedAt       time.Time
}

func (q *Queries) UpsertDatasetVersion(ctx context.Context, arg UpsertDatasetVersionParams) error {
	_, err := q.db.ExecContext(ctx, upsertDatasetVersion,
		arg.Path,
		arg.Version,
		arg.ID,
		arg.Name,
		arg.IsNamed,
		arg.Derivation,
		arg.Sql,
		arg.Context,
		arg.PreviousPath,
		arg.PreviousVersion,
		arg.Parents,
		arg.GrandParents,
		arg.FieldOrigins,
		arg.LastTransform,
		arg.Owner,
		arg.CreatedAt,
	)
	return err
}

const listDatasetVersionsByPath = `-- name: ListDatasetVersionsByPath :many
SELECT path, version, id, name, is_named, derivation, sql, context,
       previous_path, previous_version, parents, grand_parents, field_origins,
       last_transform, owner, created_at
FROM dataset_versions
WHERE path = ?
ORDER BY created_at, version
`

func (q *Queries) ListDatasetVersionsByPath(ctx context.Context, path string) ([]DatasetVersion, error) {
	rows, err := q.db.QueryContext(ctx, listDatasetVersionsByPath, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DatasetVersion
	for rows.Next() {
		i, err := scanDatasetVersion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countDatasetVersionsByPath = `-- name: CountDatasetVersionsByPath :one
SELECT COUNT(*) FROM dataset_versions WHERE path = ?
`

func (q *Queries) CountDatasetVersionsByPath(ctx context.Context, path string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countDatasetVersionsByPath, path)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteDatasetVersionsByPath = `-- name: DeleteDatasetVersionsByPath :execrows
DELETE FROM dataset_versions WHERE path = ?
`

func (q *Queries) DeleteDatasetVersionsByPath(ctx context.Context, path string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteDatasetVersionsByPath, path)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDatasetVersion(row rowScanner) (DatasetVersion, error) {
	var i DatasetVersion
	err := row.Scan(
		&i.Path,
		&i.Version,
		&i.ID,
		&i.Name,
		&i.IsNamed,
		&i.Derivation,
		&i.Sql,
		&i.Context,
		&i.PreviousPath,
		&i.PreviousVersion,
		&i.Parents,
		&i.GrandParents,
		&i.FieldOrigins,
		&i.LastTransform,
		&i.Owner,
		&i.CreatedAt,
	)
	return i, err
}
