package services

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dshist/dshist/internal/database"
	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/history"
)

// JobService records query runs and answers status lookups for histories.
type JobService struct {
	jobs *database.JobRepository
	now  func() time.Time
}

var _ history.StatusLookup = (*JobService)(nil)

func NewJobService(ctx *database.Context) *JobService {
	return &JobService{
		jobs: database.NewJobRepository(ctx),
		now:  time.Now,
	}
}

// Submit records a running job for ref and returns its id.
func (s *JobService) Submit(ctx context.Context, ref dataset.VersionRef, queryType, sql string) (string, error) {
	id := ulid.Make().String()
	err := s.jobs.Create(ctx, database.JobRecord{
		ID:             id,
		DatasetPath:    ref.Path.String(),
		DatasetVersion: ref.Version.String(),
		QueryType:      queryType,
		SQL:            sql,
		State:          string(history.StatusRunning),
		SubmittedAt:    s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("submit job for %s: %w", ref, err)
	}
	return id, nil
}

// Finish records the final state of a job. errorMessage may be empty.
func (s *JobService) Finish(ctx context.Context, id string, state history.Status, errorMessage string) error {
	finished := s.now()
	if err := s.jobs.UpdateState(ctx, id, string(state), &finished, errorMessage); err != nil {
		return fmt.Errorf("finish job %s: %w", id, err)
	}
	return nil
}

// Job returns the job with the given id, or nil when it does not exist.
func (s *JobService) Job(ctx context.Context, id string) (*database.JobRecord, error) {
	return s.jobs.FindByID(ctx, id)
}

// Jobs lists every job run for ref, oldest first.
func (s *JobService) Jobs(ctx context.Context, ref dataset.VersionRef) ([]database.JobRecord, error) {
	return s.jobs.ListForVersion(ctx, ref.Path.String(), ref.Version.String())
}

func (s *JobService) LatestStatus(ctx context.Context, ref dataset.VersionRef) (history.Status, bool, error) {
	job, err := s.jobs.LatestForVersion(ctx, ref.Path.String(), ref.Version.String())
	if err != nil {
		return "", false, fmt.Errorf("latest job for %s: %w", ref, err)
	}
	if job == nil {
		return "", false, nil
	}
	return history.ParseStatus(job.State), true, nil
}
