package history

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dshist/dshist/internal/dataset"
)

// Walker follows Previous links from a starting version back to the root.
type Walker struct {
	store Store
}

func NewWalker(store Store) *Walker {
	return &Walker{store: store}
}

// Walk returns the chain ending at start, ordered oldest to newest.
//
// A missing link fails the whole walk with a *VersionNotFoundError; no partial
// chain is returned. A link back to an already visited key is reported the
// same way with Cycle set.
func (w *Walker) Walk(ctx context.Context, start dataset.VersionRef) ([]*dataset.Record, error) {
	var (
		chain   []*dataset.Record
		visited = make(map[string]struct{})
		ref     = start
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := ref.Key()
		if _, seen := visited[key]; seen {
			return nil, &VersionNotFoundError{Ref: ref, Cycle: true}
		}
		visited[key] = struct{}{}

		record, err := w.store.Get(ctx, ref)
		if err != nil {
			if errors.Is(err, ErrVersionNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("load version %s: %w", ref, err)
		}
		if record == nil {
			return nil, NotFound(ref)
		}
		chain = append(chain, record)

		if record.Previous == nil {
			break
		}
		ref = *record.Previous
	}

	slices.Reverse(chain)
	return chain, nil
}
