package sqldb

import (
	"context"
	"time"
)

const getDataset = `-- name: GetDataset :one
SELECT path, id, version, created_at, updated_at
FROM datasets
WHERE path = ?
`

func (q *Queries) GetDataset(ctx context.Context, path string) (Dataset, error) {
	row := q.db.QueryRowContext(ctx, getDataset, path)
	var i Dataset
	err := row.Scan(
		&i.Path,
		&i.ID,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getSavedDatasetVersion = `-- name: GetSavedDatasetVersion :one
SELECT v.path, v.version, v.id, v.name, v.is_named, v.derivation, v.sql, v.context,
       v.previous_path, v.previous_version, v.parents, v.grand_parents, v.field_origins,
       v.last_transform, v.owner, v.created_at
FROM datasets d
JOIN dataset_versions v ON v.path = d.path AND v.version = d.version
WHERE d.path = ?
`

func (q *Queries) GetSavedDatasetVersion(ctx context.Context, path string) (DatasetVersion, error) {
	row := q.db.QueryRowContext(ctx, getSavedDatasetVersion, path)
	return scanDatasetVersion(row)
}

const upsertDataset = `-- name: UpsertDataset :exec
INSERT INTO datasets (path, id, version, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
    version = excluded.version,
    updated_at = excluded.updated_at
`

type UpsertDatasetParams struct {
	Path      string
	ID        string
	Version   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) UpsertDataset(ctx context.Context, arg UpsertDatasetParams) error {
	_, err := q.db.ExecContext(ctx, upsertDataset,
		arg.Path,
		arg.ID,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const deleteDataset = `-- name: DeleteDataset :execrows
DELETE FROM datasets WHERE path = ?
`

func (q *Queries) DeleteDataset(ctx context.Context, path string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteDataset, path)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listDatasets = `-- name: ListDatasets :many
SELECT path, id, version, created_at, updated_at
FROM datasets
ORDER BY path
`

func (q *Queries) ListDatasets(ctx context.Context) ([]Dataset, error) {
	rows, err := q.db.QueryContext(ctx, listDatasets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Dataset
	for rows.Next() {
		var i Dataset
		if err := rows.Scan(
			&i.Path,
			&i.ID,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
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
