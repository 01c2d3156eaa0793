package history

import (
	"errors"
	"fmt"

	"github.com/dshist/dshist/internal/dataset"
)

var (
	// ErrVersionNotFound means a (path, version) referenced by a chain could
	// not be loaded. It is permanent: the data is gone or the caller holds a
	// stale reference.
	ErrVersionNotFound = errors.New("history: dataset version not found")

	// ErrDatasetNotFound means no saved version exists for a path.
	ErrDatasetNotFound = errors.New("history: dataset not found")

	// ErrChainCycle means a chain revisited a key it had already seen.
	ErrChainCycle = errors.New("history: version chain contains a cycle")
)

// VersionNotFoundError carries the reference that could not be resolved.
// It matches ErrVersionNotFound, and ErrChainCycle when Cycle is set.
type VersionNotFoundError struct {
	Ref   dataset.VersionRef
	Cycle bool
}

func (e *VersionNotFoundError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("dataset version %s: chain revisits this version", e.Ref)
	}
	return fmt.Sprintf("dataset version %s not found", e.Ref)
}

func (e *VersionNotFoundError) Is(target error) bool {
	switch target {
	case ErrVersionNotFound:
		return true
	case ErrChainCycle:
		return e.Cycle
	}
	return false
}

// NotFound builds the error a Store returns for a missing reference.
func NotFound(ref dataset.VersionRef) error {
	return &VersionNotFoundError{Ref: ref}
}
