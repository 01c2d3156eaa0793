// Package history reconstructs and rewrites dataset version chains.
//
// A chain is a backward-linked list of dataset.Record values addressed by
// (path, version) keys. Nodes are never co-resident: each hop is a Store
// lookup, so every traversal here is an explicit loop guarded by a visited set.
package history

import (
	"context"

	"github.com/dshist/dshist/internal/dataset"
)

// Store is the durable (path, version) -> record mapping.
//
// Get returns an error matching ErrVersionNotFound for a missing key.
// GetLatestSaved returns an error matching ErrDatasetNotFound when the path
// was never saved. Implementations must give read-your-writes consistency
// for Put followed by Get on the same key.
type Store interface {
	Get(ctx context.Context, ref dataset.VersionRef) (*dataset.Record, error)
	Put(ctx context.Context, record *dataset.Record) error
	GetLatestSaved(ctx context.Context, path dataset.Path) (*dataset.Record, error)
}

// Status is the state of the most recent execution of a version's query.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCanceled  Status = "CANCELED"
	StatusRunning   Status = "RUNNING"
	StatusUnknown   Status = "UNKNOWN"
)

// ParseStatus maps a stored state string to a Status; unrecognised values
// become StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusCompleted, StatusFailed, StatusCanceled, StatusRunning:
		return Status(s)
	}
	return StatusUnknown
}

// StatusLookup reports the latest execution status for a version. found is
// false when no execution record exists, which happens routinely once old
// jobs are purged.
type StatusLookup interface {
	LatestStatus(ctx context.Context, ref dataset.VersionRef) (status Status, found bool, err error)
}
