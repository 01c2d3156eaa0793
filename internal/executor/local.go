// Package executor runs dataset queries for the explore flow.
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/history"
	"github.com/dshist/dshist/internal/lineage"
	"github.com/dshist/dshist/internal/logger"
	"github.com/dshist/dshist/internal/usecase"
)

const finishTimeout = 5 * time.Second

// JobRecorder is the job bookkeeping Local needs.
type JobRecorder interface {
	Submit(ctx context.Context, ref dataset.VersionRef, queryType, sql string) (string, error)
	Finish(ctx context.Context, id string, state history.Status, errorMessage string) error
}

// Local is an in-process executor. It does not execute SQL: it records the
// job and plans metadata from the parents and columns declared on the query.
type Local struct {
	jobs JobRecorder
	log  *logger.Logger
	wg   sync.WaitGroup
}

var _ usecase.QueryExecutor = (*Local)(nil)

func NewLocal(jobs JobRecorder, log *logger.Logger) *Local {
	return &Local{jobs: jobs, log: logger.OrNop(log)}
}

// Run records a running job and plans it in the background. The job is
// marked completed before its metadata is published.
func (l *Local) Run(ctx context.Context, q usecase.Query, ref dataset.VersionRef, listener *usecase.MetadataListener) (usecase.JobID, error) {
	id, err := l.jobs.Submit(ctx, ref, q.Type, q.SQL)
	if err != nil {
		return "", err
	}
	l.log.Debug("job submitted", "job", id, "version", ref.String())

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		md := Plan(q)

		finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
		defer cancel()
		if err := l.jobs.Finish(finishCtx, id, history.StatusCompleted, ""); err != nil {
			l.log.Error("failed to finish job", "job", id, "error", err)
		}

		listener.Publish(md)
	}()

	return usecase.JobID(id), nil
}

// Wait blocks until every background planning goroutine has returned.
func (l *Local) Wait() {
	l.wg.Wait()
}

// Plan derives query metadata from what the query declares. Parents are
// direct. With one parent every column originates from it; with several,
// every column may come from any of them.
func Plan(q usecase.Query) lineage.QueryMetadata {
	parents := make([]dataset.Parent, len(q.Parents))
	for i, p := range q.Parents {
		parents[i] = dataset.Parent{Path: dataset.NewPath(p.Path...), Type: p.Type, Level: 1}
	}

	origins := make([]dataset.FieldOrigin, len(q.Columns))
	for i, col := range q.Columns {
		fo := dataset.FieldOrigin{Name: col}
		for _, p := range parents {
			fo.Origins = append(fo.Origins, dataset.Origin{Table: dataset.NewPath(p.Path...), Column: col})
		}
		origins[i] = fo
	}

	return lineage.QueryMetadata{Parents: parents, FieldOrigins: origins}
}
