package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/logger"
)

const defaultStatusConcurrency = 8

// Query selects the history to build.
type Query struct {
	// Path is where the tip version is stored.
	Path dataset.Path
	// Selected is the version the client currently shows.
	Selected dataset.Version
	// Tip is the newest version the client knows about. It may be ahead of
	// Selected when the user stepped back in history. Empty means Selected.
	Tip dataset.Version
	// User is the acting user, echoed on every item.
	User string
}

// Item is one row of a history list.
type Item struct {
	Ref         dataset.VersionRef
	State       Status
	Description string
	User        string
	CreatedAt   time.Time
	Selected    bool
}

// History is the user-facing timeline of a dataset, oldest first.
type History struct {
	Items []Item
	// Selected echoes the version marked as current.
	Selected dataset.Version
	// CurrentVersion is the version reached last by the walk, i.e. the root.
	CurrentVersion dataset.Version
	// Edited is set when the shown tip differs from the last saved version.
	Edited bool
}

// Options tunes a Builder.
type Options struct {
	// StatusConcurrency bounds parallel status lookups. Zero uses a default.
	StatusConcurrency int
	Logger            *logger.Logger
}

// Builder turns a walked chain plus execution statuses into a History.
type Builder struct {
	store       Store
	walker      *Walker
	statuses    StatusLookup
	concurrency int
	log         *logger.Logger
}

func NewBuilder(store Store, statuses StatusLookup, opts Options) *Builder {
	concurrency := opts.StatusConcurrency
	if concurrency <= 0 {
		concurrency = defaultStatusConcurrency
	}
	return &Builder{
		store:       store,
		walker:      NewWalker(store),
		statuses:    statuses,
		concurrency: concurrency,
		log:         logger.OrNop(opts.Logger),
	}
}

// Build walks the chain from q.Tip (or q.Selected) and assembles the history.
// Chain errors are returned as is; status lookup failures are logged and the
// item is reported as completed.
func (b *Builder) Build(ctx context.Context, q Query) (*History, error) {
	tip := q.Tip
	if tip.IsZero() {
		tip = q.Selected
	}

	chain, err := b.walker.Walk(ctx, dataset.NewRef(q.Path, tip))
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(chain))
	for i, rec := range chain {
		items[i] = Item{
			Ref:         rec.Ref(),
			Description: rec.LastTransform.Describe(),
			User:        q.User,
			CreatedAt:   rec.CreatedAt,
			Selected:    rec.Version == q.Selected,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i := range items {
		g.Go(func() error {
			items[i].State = b.latestStatus(gctx, items[i].Ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := chain[0]
	edited, err := b.edited(ctx, q.Path, tip, root, len(items))
	if err != nil {
		return nil, err
	}

	return &History{
		Items:          items,
		Selected:       q.Selected,
		CurrentVersion: root.Version,
		Edited:         edited,
	}, nil
}

// edited compares the tip with the saved version. A dataset that was never
// saved counts as edited when it started from raw SQL or has any transform
// history at all.
func (b *Builder) edited(ctx context.Context, path dataset.Path, tip dataset.Version, root *dataset.Record, length int) (bool, error) {
	saved, err := b.store.GetLatestSaved(ctx, path)
	if err != nil && !errors.Is(err, ErrDatasetNotFound) {
		return false, fmt.Errorf("load saved version of %s: %w", path, err)
	}
	if saved == nil {
		return root.Derivation == dataset.DerivationSQL || length > 1, nil
	}
	return tip != saved.Version, nil
}

func (b *Builder) latestStatus(ctx context.Context, ref dataset.VersionRef) Status {
	if b.statuses == nil {
		return StatusCompleted
	}
	status, found, err := b.statuses.LatestStatus(ctx, ref)
	if err != nil {
		b.log.Warn("status lookup failed, reporting completed", "version", ref.String(), "error", err)
		return StatusCompleted
	}
	if !found {
		return StatusCompleted
	}
	return status
}
