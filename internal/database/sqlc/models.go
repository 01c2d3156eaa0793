package sqldb

import (
	"database/sql"
	"time"
)

type Dataset struct {
	Path      string
	ID        string
	Version   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type DatasetVersion struct {
	Path            string
	Version         string
	ID              string
	Name            string
	IsNamed         int64
	Derivation      string
	Sql             string
	Context         string
	PreviousPath    sql.NullString
	PreviousVersion sql.NullString
	Parents         string
	GrandParents    string
	FieldOrigins    string
	LastTransform   string
	Owner           string
	CreatedAt       time.Time
}

type Job struct {
	ID             string
	DatasetPath    string
	DatasetVersion string
	QueryType      string
	Sql            string
	State          string
	SubmittedAt    time.Time
	FinishedAt     sql.NullTime
	ErrorMessage   sql.NullString
}
