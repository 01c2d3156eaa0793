package sqldb

import "context"

const deleteAllJobs = `-- name: DeleteAllJobs :exec
DELETE FROM jobs
`

func (q *Queries) DeleteAllJobs(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllJobs)
	return err
}

const deleteAllDatasets = `-- name: DeleteAllDatasets :exec
DELETE FROM datasets
`

func (q *Queries) DeleteAllDatasets(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllDatasets)
	return err
}

const deleteAllDatasetVersions = `-- name: DeleteAllDatasetVersions :exec
DELETE FROM dataset_versions
`

func (q *Queries) DeleteAllDatasetVersions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllDatasetVersions)
	return err
}
