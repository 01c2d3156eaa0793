package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshist/dshist/internal/database"
	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/history"
)

// VersionService is the SQLite-backed history.Store. It also owns the saved
// pointers of named datasets.
type VersionService struct {
	ctx      *database.Context
	versions *database.VersionRepository
	datasets *database.DatasetRepository
	now      func() time.Time
}

var _ history.Store = (*VersionService)(nil)

func NewVersionService(ctx *database.Context) *VersionService {
	return &VersionService{
		ctx:      ctx,
		versions: database.NewVersionRepository(ctx),
		datasets: database.NewDatasetRepository(ctx),
		now:      time.Now,
	}
}

func (s *VersionService) Get(ctx context.Context, ref dataset.VersionRef) (*dataset.Record, error) {
	row, err := s.versions.FindByPathAndVersion(ctx, ref.Path.String(), ref.Version.String())
	if err != nil {
		return nil, fmt.Errorf("get version %s: %w", ref, err)
	}
	if row == nil {
		return nil, history.NotFound(ref)
	}
	return database.DecodeVersion(*row)
}

func (s *VersionService) Put(ctx context.Context, record *dataset.Record) error {
	return putVersion(ctx, s.versions, record)
}

// GetLatestSaved returns the version the saved pointer of path refers to.
func (s *VersionService) GetLatestSaved(ctx context.Context, path dataset.Path) (*dataset.Record, error) {
	row, err := s.datasets.FindSavedVersion(ctx, path.String())
	if err != nil {
		return nil, fmt.Errorf("get saved version of %s: %w", path, err)
	}
	if row == nil {
		return nil, fmt.Errorf("%s: %w", path, history.ErrDatasetNotFound)
	}
	return database.DecodeVersion(*row)
}

// MarkSaved stores record at its path and makes it the saved version there,
// in one transaction.
func (s *VersionService) MarkSaved(ctx context.Context, record *dataset.Record) error {
	now := s.now().UTC()
	return withTx(ctx, s.ctx, func(tx *database.Context) error {
		if err := putVersion(ctx, database.NewVersionRepository(tx), record); err != nil {
			return err
		}

		datasets := database.NewDatasetRepository(tx)
		path := record.Path.String()
		existing, err := datasets.FindByPath(ctx, path)
		if err != nil {
			return fmt.Errorf("load dataset %s: %w", path, err)
		}

		pointer := database.DatasetRecord{
			Path:      path,
			ID:        uuid.NewString(),
			Version:   record.Version.String(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if existing != nil {
			pointer.ID = existing.ID
			pointer.CreatedAt = existing.CreatedAt
		}
		if err := datasets.Upsert(ctx, pointer); err != nil {
			return fmt.Errorf("save dataset %s: %w", path, err)
		}
		return nil
	})
}

// ListSaved returns the saved version of every named dataset, ordered by path.
func (s *VersionService) ListSaved(ctx context.Context) ([]*dataset.Record, error) {
	pointers, err := s.datasets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}

	records := make([]*dataset.Record, 0, len(pointers))
	for _, p := range pointers {
		row, err := s.versions.FindByPathAndVersion(ctx, p.Path, p.Version)
		if err != nil {
			return nil, fmt.Errorf("load saved version of %s: %w", p.Path, err)
		}
		if row == nil {
			continue
		}
		rec, err := database.DecodeVersion(*row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ListVersions returns every version stored at path, oldest first. This is
// storage order, not chain order.
func (s *VersionService) ListVersions(ctx context.Context, path dataset.Path) ([]*dataset.Record, error) {
	rows, err := s.versions.ListByPath(ctx, path.String())
	if err != nil {
		return nil, fmt.Errorf("list versions of %s: %w", path, err)
	}
	records := make([]*dataset.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := database.DecodeVersion(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func putVersion(ctx context.Context, repo *database.VersionRepository, record *dataset.Record) error {
	row, err := database.EncodeVersion(record)
	if err != nil {
		return err
	}
	if err := repo.Upsert(ctx, row); err != nil {
		return fmt.Errorf("put version %s: %w", record.Ref(), err)
	}
	return nil
}
