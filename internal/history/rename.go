package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshist/dshist/internal/dataset"
)

// Renamer moves a chain to a new path.
type Renamer struct {
	store Store
}

func NewRenamer(store Store) *Renamer {
	return &Renamer{store: store}
}

// Rename writes tip under newPath, then keeps going root-ward through every
// contiguous predecessor stored at dataset.UntitledPath, relinking each one to
// its rewritten copy. It stops at the first predecessor stored anywhere else:
// that version was named before and stays addressable under its own path.
//
// tip is modified in place. Untitled originals are left in the store.
func (r *Renamer) Rename(ctx context.Context, tip *dataset.Record, newPath dataset.Path) error {
	if tip == nil {
		return errors.New("rename: nil tip record")
	}

	visited := make(map[string]struct{})
	current := tip
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		key := current.Ref().Key()
		if _, seen := visited[key]; seen {
			return &VersionNotFoundError{Ref: current.Ref(), Cycle: true}
		}
		visited[key] = struct{}{}

		prev := current.Previous
		current.Path = dataset.NewPath(newPath...)

		if prev == nil || !prev.Path.IsUntitled() {
			if err := r.store.Put(ctx, current); err != nil {
				return fmt.Errorf("rename: store %s: %w", current.Ref(), err)
			}
			return nil
		}

		current.Previous = &dataset.VersionRef{Path: dataset.NewPath(newPath...), Version: prev.Version}
		current.Name = newPath.Leaf()
		if err := r.store.Put(ctx, current); err != nil {
			return fmt.Errorf("rename: store %s: %w", current.Ref(), err)
		}

		next, err := r.store.Get(ctx, *prev)
		if err != nil {
			if errors.Is(err, ErrVersionNotFound) {
				return err
			}
			return fmt.Errorf("rename: load %s: %w", prev, err)
		}
		if next == nil {
			return NotFound(*prev)
		}
		current = next
	}
}
