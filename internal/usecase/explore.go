package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshist/dshist/internal/database"
	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/history"
	"github.com/dshist/dshist/internal/lineage"
	"github.com/dshist/dshist/internal/logger"
	"github.com/dshist/dshist/internal/services"
)

var (
	// ErrInvalidInput wraps every validation failure of explore input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUntitledTarget is returned when saving to the draft location.
	ErrUntitledTarget = errors.New("cannot save to the untitled path")
)

const defaultMetadataTimeout = 30 * time.Second

// Options configures an Explore use case.
type Options struct {
	User              string
	StatusConcurrency int
	MetadataTimeout   time.Duration
	Logger            *logger.Logger
}

// Explore is the dataset editing flow: create drafts, transform them, look
// at their history and save them under a name.
type Explore struct {
	versions *services.VersionService
	jobs     *services.JobService
	builder  *history.Builder
	renamer  *history.Renamer
	executor QueryExecutor

	user            string
	metadataTimeout time.Duration
	log             *logger.Logger
	now             func() time.Time
}

func NewExplore(dbCtx *database.Context, executor QueryExecutor, opts Options) *Explore {
	versions := services.NewVersionService(dbCtx)
	jobs := services.NewJobService(dbCtx)
	log := logger.OrNop(opts.Logger)

	timeout := opts.MetadataTimeout
	if timeout <= 0 {
		timeout = defaultMetadataTimeout
	}

	return &Explore{
		versions: versions,
		jobs:     jobs,
		builder: history.NewBuilder(versions, jobs, history.Options{
			StatusConcurrency: opts.StatusConcurrency,
			Logger:            log,
		}),
		renamer:         history.NewRenamer(versions),
		executor:        executor,
		user:            opts.User,
		metadataTimeout: timeout,
		log:             log,
		now:             time.Now,
	}
}

// Result is a version together with the job that ran it and its history.
type Result struct {
	Record  *dataset.Record
	JobID   JobID
	History *history.History
}

type NewUntitledInput struct {
	From    dataset.From
	Context []string
	// Version is optional; a fresh one is generated when empty.
	Version dataset.Version
	// Columns and Parents are what the query is declared to produce and read.
	Columns []string
	Parents []dataset.Parent
}

// NewUntitled creates the first version of a draft at dataset.UntitledPath.
func (u *Explore) NewUntitled(ctx context.Context, in NewUntitledInput) (*Result, error) {
	if err := validateSource(in.From); err != nil {
		return nil, err
	}

	version := in.Version
	if version.IsZero() {
		version = dataset.NewVersion()
	}

	path := dataset.NewPath(dataset.UntitledPath...)
	rec := &dataset.Record{
		ID:            uuid.NewString(),
		Path:          path,
		Name:          path.Leaf(),
		Version:       version,
		Named:         false,
		Derivation:    lineage.Initial(in.From),
		SQL:           sqlForSource(in.From, in.Context),
		Context:       append([]string(nil), in.Context...),
		Owner:         u.user,
		CreatedAt:     u.now().UTC(),
		LastTransform: dataset.CreateFromParent(in.From),
	}

	parents := append([]dataset.Parent(nil), in.Parents...)
	if in.From.Type == dataset.FromTable {
		parents = append([]dataset.Parent{{Path: dataset.NewPath(in.From.Table...), Type: dataset.ParentPhysical}}, parents...)
	}

	jobID, err := u.runAndApply(ctx, rec, parents, in.Columns)
	if err != nil {
		return nil, err
	}
	u.log.Info("created untitled dataset", "version", version.String(), "derivation", string(rec.Derivation))

	return u.result(ctx, rec, jobID)
}

type TransformInput struct {
	Base      dataset.VersionRef
	Transform dataset.Transform
	// Columns overrides the columns derived from the base version.
	Columns []string
}

// Transform applies an edit on top of Base and stores the result as a new
// version at Base's path.
func (u *Explore) Transform(ctx context.Context, in TransformInput) (*Result, error) {
	if err := in.Transform.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	base, err := u.versions.Get(ctx, in.Base)
	if err != nil {
		return nil, err
	}

	sql, columns, err := applyTransform(base.SQL, columnNames(base.FieldOrigins), in.Transform)
	if err != nil {
		return nil, err
	}
	if len(in.Columns) > 0 {
		columns = in.Columns
	}

	prev := base.Ref()
	rec := &dataset.Record{
		ID:            base.ID,
		Path:          dataset.NewPath(base.Path...),
		Name:          base.Name,
		Version:       dataset.NewVersion(),
		Previous:      &prev,
		Named:         base.Named,
		Derivation:    base.Derivation,
		SQL:           sql,
		Context:       append([]string(nil), base.Context...),
		GrandParents:  base.GrandParents,
		Owner:         u.user,
		CreatedAt:     u.now().UTC(),
		LastTransform: in.Transform,
	}

	jobID, err := u.runAndApply(ctx, rec, base.Parents, columns)
	if err != nil {
		return nil, err
	}
	u.log.Info("transformed dataset", "base", prev.String(), "version", rec.Version.String(), "transform", string(in.Transform.Type))

	return u.result(ctx, rec, jobID)
}

// History builds the history of the version selected at path. tip may be
// empty.
func (u *Explore) History(ctx context.Context, path dataset.Path, selected, tip dataset.Version) (*history.History, error) {
	return u.builder.Build(ctx, history.Query{
		Path:     path,
		Selected: selected,
		Tip:      tip,
		User:     u.user,
	})
}

type SaveInput struct {
	Ref     dataset.VersionRef
	NewPath dataset.Path
}

// Save names the version at Ref: it moves the untitled part of its chain to
// NewPath and makes it the saved version there.
func (u *Explore) Save(ctx context.Context, in SaveInput) (*dataset.Record, error) {
	if len(in.NewPath) == 0 {
		return nil, fmt.Errorf("%w: save requires a path", ErrInvalidInput)
	}
	if in.NewPath.IsUntitled() {
		return nil, ErrUntitledTarget
	}

	tip, err := u.versions.Get(ctx, in.Ref)
	if err != nil {
		return nil, err
	}

	tip.Named = true
	tip.Name = in.NewPath.Leaf()
	if err := u.renamer.Rename(ctx, tip, in.NewPath); err != nil {
		return nil, fmt.Errorf("move %s to %s: %w", in.Ref, in.NewPath, err)
	}
	if err := u.versions.MarkSaved(ctx, tip); err != nil {
		return nil, fmt.Errorf("save %s: %w", tip.Ref(), err)
	}

	u.log.Info("saved dataset", "from", in.Ref.String(), "path", in.NewPath.String(), "version", tip.Version.String())
	return tip, nil
}

func (u *Explore) Get(ctx context.Context, ref dataset.VersionRef) (*dataset.Record, error) {
	return u.versions.Get(ctx, ref)
}

// Saved returns the saved version at path, or an error matching
// history.ErrDatasetNotFound.
func (u *Explore) Saved(ctx context.Context, path dataset.Path) (*dataset.Record, error) {
	return u.versions.GetLatestSaved(ctx, path)
}

func (u *Explore) ListSaved(ctx context.Context) ([]*dataset.Record, error) {
	return u.versions.ListSaved(ctx)
}

// Jobs lists the query runs recorded for ref.
func (u *Explore) Jobs(ctx context.Context, ref dataset.VersionRef) ([]database.JobRecord, error) {
	return u.jobs.Jobs(ctx, ref)
}

// runAndApply submits rec's SQL, waits for its metadata, applies the inferred
// lineage and stores rec.
func (u *Explore) runAndApply(ctx context.Context, rec *dataset.Record, parents []dataset.Parent, columns []string) (JobID, error) {
	listener := NewMetadataListener()
	jobID, err := u.executor.Run(ctx, Query{
		Type:    QueryTypePreview,
		SQL:     rec.SQL,
		Context: rec.Context,
		Parents: parents,
		Columns: columns,
	}, rec.Ref(), listener)
	if err != nil {
		return "", fmt.Errorf("run query for %s: %w", rec.Ref(), err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, u.metadataTimeout)
	defer cancel()
	md, err := listener.Wait(waitCtx)
	if err != nil {
		u.log.Warn("no query metadata", "version", rec.Ref().String(), "job", string(jobID), "error", err)
		return "", fmt.Errorf("wait for metadata of %s: %w", rec.Ref(), err)
	}

	lineage.Apply(rec, md)
	if err := u.versions.Put(ctx, rec); err != nil {
		return "", err
	}
	return jobID, nil
}

func (u *Explore) result(ctx context.Context, rec *dataset.Record, jobID JobID) (*Result, error) {
	h, err := u.History(ctx, rec.Path, rec.Version, "")
	if err != nil {
		return nil, err
	}
	return &Result{Record: rec, JobID: jobID, History: h}, nil
}
