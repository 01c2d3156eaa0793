package sqldb

import (
	"context"
	"database/sql"
	"time"
)

const insertJob = `-- name: InsertJob :exec
INSERT INTO jobs (id, dataset_path, dataset_version, query_type, sql, state, submitted_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type InsertJobParams struct {
	ID             string
	DatasetPath    string
	DatasetVersion string
	QueryType      string
	Sql            string
	State          string
	SubmittedAt    time.Time
}

func (q *Queries) InsertJob(ctx context.Context, arg InsertJobParams) error {
	_, err := q.db.ExecContext(ctx, insertJob,
		arg.ID,
		arg.DatasetPath,
		arg.DatasetVersion,
		arg.QueryType,
		arg.Sql,
		arg.State,
		arg.SubmittedAt,
	)
	return err
}

const updateJobState = `-- name: UpdateJobState :execrows
UPDATE jobs
SET state = ?, finished_at = ?, error_message = ?
WHERE id = ?
`

type UpdateJobStateParams struct {
	State        string
	FinishedAt   sql.NullTime
	ErrorMessage sql.NullString
	ID           string
}

func (q *Queries) UpdateJobState(ctx context.Context, arg UpdateJobStateParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateJobState,
		arg.State,
		arg.FinishedAt,
		arg.ErrorMessage,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getJob = `-- name: GetJob :one
SELECT id, dataset_path, dataset_version, query_type, sql, state,
       submitted_at, finished_at, error_message
FROM jobs
WHERE id = ?
`

func (q *Queries) GetJob(ctx context.Context, id string) (Job, error) {
	row := q.db.QueryRowContext(ctx, getJob, id)
	return scanJob(row)
}

const getLatestJobForVersion = `-- name: GetLatestJobForVersion :one
SELECT id, dataset_path, dataset_version, query_type, sql, state,
       submitted_at, finished_at, error_message
FROM jobs
WHERE dataset_path = ? AND dataset_version = ?
ORDER BY id DESC
LIMIT 1
`

type GetLatestJobForVersionParams struct {
	DatasetPath    string
	DatasetVersion string
}

func (q *Queries) GetLatestJobForVersion(ctx context.Context, arg GetLatestJobForVersionParams) (Job, error) {
	row := q.db.QueryRowContext(ctx, getLatestJobForVersion, arg.DatasetPath, arg.DatasetVersion)
	return scanJob(row)
}

const listJobsForVersion = `-- name: ListJobsForVersion :many
SELECT id, dataset_path, dataset_version, query_type, sql, state,
       submitted_at, finished_at, error_message
FROM jobs
WHERE dataset_path = ? AND dataset_version = ?
ORDER BY id
`

type ListJobsForVersionParams struct {
	DatasetPath    string
	DatasetVersion string
}

func (q *Queries) ListJobsForVersion(ctx context.Context, arg ListJobsForVersionParams) ([]Job, error) {
	rows, err := q.db.QueryContext(ctx, listJobsForVersion, arg.DatasetPath, arg.DatasetVersion)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Job
	for rows.Next() {
		i, err := scanJob(rows)
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

func scanJob(row rowScanner) (Job, error) {
	var i Job
	err := row.Scan(
		&i.ID,
		&i.DatasetPath,
		&i.DatasetVersion,
		&i.QueryType,
		&i.Sql,
		&i.State,
		&i.SubmittedAt,
		&i.FinishedAt,
		&i.ErrorMessage,
	)
	return i, err
}
