package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqldb "github.com/dshist/dshist/internal/database/sqlc"
)

type JobRepository struct {
	ctx *Context
}

func NewJobRepository(dbCtx *Context) *JobRepository {
	return &JobRepository{ctx: dbCtx}
}

func (r *JobRepository) Create(ctx context.Context, job JobRecord) error {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return fmt.Errorf("job repository: %w", errNoContext)
	}

	return queries.InsertJob(ctx, sqldb.InsertJobParams{
		ID:             job.ID,
		DatasetPath:    job.DatasetPath,
		DatasetVersion: job.DatasetVersion,
		QueryType:      job.QueryType,
		Sql:            job.SQL,
		State:          job.State,
		SubmittedAt:    job.SubmittedAt.UTC(),
	})
}

// UpdateState records the outcome of a job. It returns ErrNotFound when id
// does not exist.
func (r *JobRepository) UpdateState(ctx context.Context, id, state string, finishedAt *time.Time, errorMessage string) error {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return fmt.Errorf("job repository: %w", errNoContext)
	}

	if finishedAt != nil {
		utc := finishedAt.UTC()
		finishedAt = &utc
	}
	affected, err := queries.UpdateJobState(ctx, sqldb.UpdateJobStateParams{
		State:        state,
		FinishedAt:   nullTime(finishedAt),
		ErrorMessage: nullString(errorMessage),
		ID:           id,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (*JobRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("job repository: %w", errNoContext)
	}

	row, err := queries.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := JobRecordFromRow(row)
	return &record, nil
}

// LatestForVersion returns the most recently submitted job for the version,
// or nil, nil when it never ran.
func (r *JobRepository) LatestForVersion(ctx context.Context, path, version string) (*JobRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("job repository: %w", errNoContext)
	}

	row, err := queries.GetLatestJobForVersion(ctx, sqldb.GetLatestJobForVersionParams{
		DatasetPath:    path,
		DatasetVersion: version,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := JobRecordFromRow(row)
	return &record, nil
}

func (r *JobRepository) ListForVersion(ctx context.Context, path, version string) ([]JobRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("job repository: %w", errNoContext)
	}

	rows, err := queries.ListJobsForVersion(ctx, sqldb.ListJobsForVersionParams{
		DatasetPath:    path,
		DatasetVersion: version,
	})
	if err != nil {
		return nil, err
	}

	result := make([]JobRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, JobRecordFromRow(row))
	}
	return result, nil
}
