package database

import (
	"encoding/json"
	"fmt"

	"github.com/dshist/dshist/internal/dataset"
	sqldb "github.com/dshist/dshist/internal/database/sqlc"
)

// VersionRecordFromRow converts a dataset_versions row.
func VersionRecordFromRow(row sqldb.DatasetVersion) VersionRecord {
	return VersionRecord{
		Path:            row.Path,
		Version:         row.Version,
		ID:              row.ID,
		Name:            row.Name,
		IsNamed:         row.IsNamed != 0,
		Derivation:      row.Derivation,
		SQL:             row.Sql,
		Context:         row.Context,
		PreviousPath:    optionalString(row.PreviousPath),
		PreviousVersion: optionalString(row.PreviousVersion),
		Parents:         row.Parents,
		GrandParents:    row.GrandParents,
		FieldOrigins:    row.FieldOrigins,
		LastTransform:   row.LastTransform,
		Owner:           row.Owner,
		CreatedAt:       row.CreatedAt,
	}
}

// VersionUpsertParams builds the upsert arguments for a version record.
func VersionUpsertParams(rec VersionRecord) sqldb.UpsertDatasetVersionParams {
	return sqldb.UpsertDatasetVersionParams{
		Path:            rec.Path,
		Version:         rec.Version,
		ID:              rec.ID,
		Name:            rec.Name,
		IsNamed:         boolToInt64(rec.IsNamed),
		Derivation:      rec.Derivation,
		Sql:             rec.SQL,
		Context:         rec.Context,
		PreviousPath:    nullString(rec.PreviousPath),
		PreviousVersion: nullString(rec.PreviousVersion),
		Parents:         rec.Parents,
		GrandParents:    rec.GrandParents,
		FieldOrigins:    rec.FieldOrigins,
		LastTransform:   rec.LastTransform,
		Owner:           rec.Owner,
		CreatedAt:       rec.CreatedAt.UTC(),
	}
}

// DatasetRecordFromRow converts a datasets row.
func DatasetRecordFromRow(row sqldb.Dataset) DatasetRecord {
	return DatasetRecord{
		Path:      row.Path,
		ID:        row.ID,
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// JobRecordFromRow converts a jobs row.
func JobRecordFromRow(row sqldb.Job) JobRecord {
	return JobRecord{
		ID:             row.ID,
		DatasetPath:    row.DatasetPath,
		DatasetVersion: row.DatasetVersion,
		QueryType:      row.QueryType,
		SQL:            row.Sql,
		State:          row.State,
		SubmittedAt:    row.SubmittedAt,
		FinishedAt:     optionalTime(row.FinishedAt),
		ErrorMessage:   optionalString(row.ErrorMessage),
	}
}

// EncodeVersion flattens a domain record into its row form.
func EncodeVersion(r *dataset.Record) (VersionRecord, error) {
	rec := VersionRecord{
		Path:       r.Path.String(),
		Version:    r.Version.String(),
		ID:         r.ID,
		Name:       r.Name,
		IsNamed:    r.Named,
		Derivation: string(r.Derivation),
		SQL:        r.SQL,
		Owner:      r.Owner,
		CreatedAt:  r.CreatedAt,
	}
	if r.Previous != nil {
		rec.PreviousPath = r.Previous.Path.String()
		rec.PreviousVersion = r.Previous.Version.String()
	}

	columns := []struct {
		name  string
		value any
		dst   *string
	}{
		{"context", r.Context, &rec.Context},
		{"parents", r.Parents, &rec.Parents},
		{"grand_parents", r.GrandParents, &rec.GrandParents},
		{"field_origins", r.FieldOrigins, &rec.FieldOrigins},
		{"last_transform", r.LastTransform, &rec.LastTransform},
	}
	for _, col := range columns {
		raw, err := json.Marshal(col.value)
		if err != nil {
			return VersionRecord{}, fmt.Errorf("encode %s of %s: %w", col.name, r.Ref(), err)
		}
		*col.dst = string(raw)
	}
	return rec, nil
}

// DecodeVersion rebuilds the domain record from its row form.
func DecodeVersion(rec VersionRecord) (*dataset.Record, error) {
	path, err := dataset.ParsePath(rec.Path)
	if err != nil {
		return nil, fmt.Errorf("decode path of version %s: %w", rec.Version, err)
	}

	r := &dataset.Record{
		ID:         rec.ID,
		Path:       path,
		Name:       rec.Name,
		Version:    dataset.Version(rec.Version),
		Named:      rec.IsNamed,
		Derivation: dataset.Derivation(rec.Derivation),
		SQL:        rec.SQL,
		Owner:      rec.Owner,
		CreatedAt:  rec.CreatedAt,
	}

	if rec.PreviousVersion != "" {
		prevPath, err := dataset.ParsePath(rec.PreviousPath)
		if err != nil {
			return nil, fmt.Errorf("decode previous path of %s: %w", r.Ref(), err)
		}
		r.Previous = &dataset.VersionRef{Path: prevPath, Version: dataset.Version(rec.PreviousVersion)}
	}

	columns := []struct {
		name string
		raw  string
		dst  any
	}{
		{"context", rec.Context, &r.Context},
		{"parents", rec.Parents, &r.Parents},
		{"grand_parents", rec.GrandParents, &r.GrandParents},
		{"field_origins", rec.FieldOrigins, &r.FieldOrigins},
		{"last_transform", rec.LastTransform, &r.LastTransform},
	}
	for _, col := range columns {
		if col.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return nil, fmt.Errorf("decode %s of %s: %w", col.name, r.Ref(), err)
		}
	}
	return r, nil
}
