package usecase

import (
	"context"

	"github.com/dshist/dshist/internal/dataset"
)

// JobID identifies one submitted query run.
type JobID string

// QueryTypePreview is the query type recorded for runs made while exploring.
const QueryTypePreview = "UI_PREVIEW"

// Query is what the executor runs for a new version.
type Query struct {
	Type    string
	SQL     string
	Context []string
	// Parents and Columns are the planner inputs known up front.
	Parents []dataset.Parent
	Columns []string
}

// QueryExecutor submits a query for a version. Run returns once the job is
// submitted; metadata arrives later on listener.
type QueryExecutor interface {
	Run(ctx context.Context, q Query, ref dataset.VersionRef, listener *MetadataListener) (JobID, error)
}
