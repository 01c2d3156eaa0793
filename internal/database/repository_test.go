package database

import (
	"context"
	"testing"
	"time"

	"github.com/dshist/dshist/internal/dataset"
)

func TestVersionRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewVersionRepository(setupTestDB(t))

	created := time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC)
	rec := VersionRecord{
		Path:          "space.orders",
		Version:       "v1",
		ID:            "id-1",
		Name:          "orders",
		Derivation:    "SQL",
		SQL:           "SELECT 1",
		Context:       `["space"]`,
		Parents:       "[]",
		GrandParents:  "[]",
		FieldOrigins:  "[]",
		LastTransform: `{"type":"create_from_parent"}`,
		Owner:         "ada",
		CreatedAt:     created,
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	fetched, err := repo.FindByPathAndVersion(ctx, "space.orders", "v1")
	if err != nil {
		t.Fatalf("FindByPathAndVersion returned error: %v", err)
	}
	if fetched == nil {
		t.Fatalf("expected version to be found")
	}
	if fetched.SQL != "SELECT 1" || fetched.Owner != "ada" || fetched.PreviousVersion != "" {
		t.Fatalf("unexpected record: %#v", fetched)
	}
	if !fetched.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at %s, got %s", created, fetched.CreatedAt)
	}

	rec.IsNamed = true
	rec.SQL = "SELECT 2"
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("second Upsert returned error: %v", err)
	}
	fetched, err = repo.FindByPathAndVersion(ctx, "space.orders", "v1")
	if err != nil || fetched == nil {
		t.Fatalf("FindByPathAndVersion after update: %v, %#v", err, fetched)
	}
	if !fetched.IsNamed || fetched.SQL != "SELECT 2" {
		t.Fatalf("expected upsert to overwrite the row, got %#v", fetched)
	}

	next := rec
	next.Version = "v2"
	next.PreviousPath = "space.orders"
	next.PreviousVersion = "v1"
	next.CreatedAt = created.Add(time.Minute)
	if err := repo.Upsert(ctx, next); err != nil {
		t.Fatalf("Upsert v2 returned error: %v", err)
	}

	count, err := repo.CountByPath(ctx, "space.orders")
	if err != nil {
		t.Fatalf("CountByPath returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 versions, got %d", count)
	}

	list, err := repo.ListByPath(ctx, "space.orders")
	if err != nil {
		t.Fatalf("ListByPath returned error: %v", err)
	}
	if len(list) != 2 || list[0].Version != "v1" || list[1].PreviousVersion != "v1" {
		t.Fatalf("unexpected list: %#v", list)
	}

	missing, err := repo.FindByPathAndVersion(ctx, "space.orders", "v9")
	if err != nil {
		t.Fatalf("FindByPathAndVersion missing returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for a missing version, got %#v", missing)
	}

	deleted, err := repo.DeleteByPath(ctx, "space.orders")
	if err != nil {
		t.Fatalf("DeleteByPath returned error: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 rows deleted, got %d", deleted)
	}
}

func TestDatasetRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	versions := NewVersionRepository(dbCtx)
	repo := NewDatasetRepository(dbCtx)

	for _, v := range []string{"v1", "v2"} {
		insertVersion(t, dbCtx.DB, "space.orders", v, "", "")
	}

	saved, err := repo.FindSavedVersion(ctx, "space.orders")
	if err != nil {
		t.Fatalf("FindSavedVersion returned error: %v", err)
	}
	if saved != nil {
		t.Fatalf("expected nothing saved yet, got %#v", saved)
	}

	created := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.Upsert(ctx, DatasetRecord{Path: "space.orders", ID: "ds-1", Version: "v1", CreatedAt: created, UpdatedAt: created}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	later := created.Add(time.Hour)
	if err := repo.Upsert(ctx, DatasetRecord{Path: "space.orders", ID: "ds-other", Version: "v2", CreatedAt: later, UpdatedAt: later}); err != nil {
		t.Fatalf("second Upsert returned error: %v", err)
	}

	pointer, err := repo.FindByPath(ctx, "space.orders")
	if err != nil || pointer == nil {
		t.Fatalf("FindByPath: %v, %#v", err, pointer)
	}
	if pointer.ID != "ds-1" || pointer.Version != "v2" {
		t.Fatalf("expected id kept and version moved, got %#v", pointer)
	}
	if !pointer.CreatedAt.Equal(created) || !pointer.UpdatedAt.Equal(later) {
		t.Fatalf("unexpected timestamps: %#v", pointer)
	}

	saved, err = repo.FindSavedVersion(ctx, "space.orders")
	if err != nil || saved == nil {
		t.Fatalf("FindSavedVersion: %v, %#v", err, saved)
	}
	if saved.Version != "v2" {
		t.Fatalf("expected saved version v2, got %q", saved.Version)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 dataset, got %d", len(all))
	}

	removed, err := repo.Delete(ctx, "space.orders")
	if err != nil || !removed {
		t.Fatalf("Delete: %v, %v", err, removed)
	}
	if count, _ := versions.CountByPath(ctx, "space.orders"); count != 2 {
		t.Fatalf("deleting the pointer must keep versions, got %d", count)
	}
}

func TestJobRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository(setupTestDB(t))

	submitted := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"01A", "01B"} {
		err := repo.Create(ctx, JobRecord{
			ID:             id,
			DatasetPath:    "space.orders",
			DatasetVersion: "v1",
			QueryType:      "UI_PREVIEW",
			SQL:            "SELECT 1",
			State:          "RUNNING",
			SubmittedAt:    submitted,
		})
		if err != nil {
			t.Fatalf("Create %s returned error: %v", id, err)
		}
	}

	finished := submitted.Add(2 * time.Second)
	if err := repo.UpdateState(ctx, "01B", "FAILED", &finished, "syntax error"); err != nil {
		t.Fatalf("UpdateState returned error: %v", err)
	}

	latest, err := repo.LatestForVersion(ctx, "space.orders", "v1")
	if err != nil || latest == nil {
		t.Fatalf("LatestForVersion: %v, %#v", err, latest)
	}
	if latest.ID != "01B" || latest.State != "FAILED" || latest.ErrorMessage != "syntax error" {
		t.Fatalf("unexpected latest job: %#v", latest)
	}
	if latest.FinishedAt == nil || !latest.FinishedAt.Equal(finished) {
		t.Fatalf("expected finished_at %s, got %v", finished, latest.FinishedAt)
	}

	first, err := repo.FindByID(ctx, "01A")
	if err != nil || first == nil {
		t.Fatalf("FindByID: %v, %#v", err, first)
	}
	if first.FinishedAt != nil || first.ErrorMessage != "" {
		t.Fatalf("expected unfinished job, got %#v", first)
	}

	jobs, err := repo.ListForVersion(ctx, "space.orders", "v1")
	if err != nil {
		t.Fatalf("ListForVersion returned error: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != "01A" {
		t.Fatalf("unexpected jobs: %#v", jobs)
	}

	none, err := repo.LatestForVersion(ctx, "space.orders", "v2")
	if err != nil || none != nil {
		t.Fatalf("expected no job for v2, got %v, %#v", err, none)
	}

	if err := repo.UpdateState(ctx, "missing", "COMPLETED", nil, ""); err == nil {
		t.Fatalf("expected error for unknown job")
	}
}

func TestEncodeDecodeVersionRoundTrip(t *testing.T) {
	prev := dataset.NewRef(dataset.UntitledPath, "v0")
	original := &dataset.Record{
		ID:         "id-1",
		Path:       dataset.NewPath("space", "my.orders"),
		Name:       "my.orders",
		Version:    "v1",
		Previous:   &prev,
		Named:      true,
		Derivation: dataset.DerivationDerivedPhysical,
		SQL:        `SELECT * FROM "pg"."orders"`,
		Context:    []string{"pg"},
		Parents:    []dataset.Parent{{Path: dataset.NewPath("pg", "orders"), Type: dataset.ParentPhysical, Level: 1}},
		FieldOrigins: []dataset.FieldOrigin{{
			Name:    "id",
			Origins: []dataset.Origin{{Table: dataset.NewPath("pg", "orders"), Column: "id"}},
		}},
		Owner:         "ada",
		CreatedAt:     time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		LastTransform: dataset.Transform{Type: dataset.TransformSort, Column: "id", Descending: true},
	}

	row, err := EncodeVersion(original)
	if err != nil {
		t.Fatalf("EncodeVersion returned error: %v", err)
	}
	if row.Path != `space."my.orders"` || row.PreviousPath != "tmp.UNTITLED" {
		t.Fatalf("unexpected encoded paths: %q, %q", row.Path, row.PreviousPath)
	}

	decoded, err := DecodeVersion(row)
	if err != nil {
		t.Fatalf("DecodeVersion returned error: %v", err)
	}
	if !decoded.Path.Equal(original.Path) || decoded.Previous == nil || !decoded.Previous.Equal(prev) {
		t.Fatalf("paths did not survive: %#v", decoded)
	}
	if len(decoded.FieldOrigins) != 1 || !decoded.FieldOrigins[0].Origins[0].Table.Equal(dataset.NewPath("pg", "orders")) {
		t.Fatalf("field origins did not survive: %#v", decoded.FieldOrigins)
	}
	if decoded.LastTransform.Type != dataset.TransformSort || !decoded.LastTransform.Descending {
		t.Fatalf("transform did not survive: %#v", decoded.LastTransform)
	}
}

func TestDecodeVersionRejectsBrokenColumns(t *testing.T) {
	_, err := DecodeVersion(VersionRecord{Path: "space.orders", Version: "v1", Parents: "{not json"})
	if err == nil {
		t.Fatalf("expected decode error")
	}
	_, err = DecodeVersion(VersionRecord{Path: `"unterminated`, Version: "v1"})
	if err == nil {
		t.Fatalf("expected path error")
	}
}
