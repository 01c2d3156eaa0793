package database

import (
	"time"
)

// VersionRecord mirrors a dataset_versions row. Paths are stored in their
// dotted string form and list-valued columns as JSON text.
type VersionRecord struct {
	Path            string
	Version         string
	ID              string
	Name            string
	IsNamed         bool
	Derivation      string
	SQL             string
	Context         string
	PreviousPath    string
	PreviousVersion string
	Parents         string
	GrandParents    string
	FieldOrigins    string
	LastTransform   string
	Owner           string
	CreatedAt       time.Time
}

// DatasetRecord is the saved pointer of a named dataset: the version that was
// last saved at Path.
type DatasetRecord struct {
	Path      string
	ID        string
	Version   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JobRecord tracks one query run against a dataset version.
type JobRecord struct {
	ID             string
	DatasetPath    string
	DatasetVersion string
	QueryType      string
	SQL            string
	State          string
	SubmittedAt    time.Time
	FinishedAt     *time.Time
	ErrorMessage   string
}
