package testutil

import (
	"context"
	"sync"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/history"
)

// StatusTable is a scripted history.StatusLookup keyed by version.
type StatusTable struct {
	mu       sync.Mutex
	statuses map[dataset.Version]history.Status
	errs     map[dataset.Version]error
	calls    int
}

func NewStatusTable() *StatusTable {
	return &StatusTable{
		statuses: make(map[dataset.Version]history.Status),
		errs:     make(map[dataset.Version]error),
	}
}

func (t *StatusTable) Set(version dataset.Version, status history.Status) *StatusTable {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[version] = status
	return t
}

func (t *StatusTable) Fail(version dataset.Version, err error) *StatusTable {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errs[version] = err
	return t
}

func (t *StatusTable) LatestStatus(_ context.Context, ref dataset.VersionRef) (history.Status, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if err, ok := t.errs[ref.Version]; ok {
		return "", false, err
	}
	status, ok := t.statuses[ref.Version]
	return status, ok, nil
}

// Calls reports how many lookups were made.
func (t *StatusTable) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
