package dataset

import (
	"time"
)

// Derivation classifies a version's lineage relative to its upstream sources.
type Derivation string

const (
	DerivationSQL             Derivation = "SQL"
	DerivationDerivedUnknown  Derivation = "DERIVED_UNKNOWN"
	DerivationDerivedPhysical Derivation = "DERIVED_PHYSICAL"
	DerivationDerivedVirtual  Derivation = "DERIVED_VIRTUAL"
	DerivationUnknown         Derivation = "UNKNOWN"
)

// Valid reports whether d is one of the known derivations.
func (d Derivation) Valid() bool {
	switch d {
	case DerivationSQL, DerivationDerivedUnknown, DerivationDerivedPhysical,
		DerivationDerivedVirtual, DerivationUnknown:
		return true
	}
	return false
}

// ParentType tells whether an upstream dataset is a physical table or a view.
type ParentType string

const (
	ParentPhysical ParentType = "PHYSICAL"
	ParentVirtual  ParentType = "VIRTUAL"
	ParentUnknown  ParentType = "UNKNOWN"
)

// Parent is an upstream dataset reference.
type Parent struct {
	Path  Path       `json:"path"`
	Type  ParentType `json:"type,omitempty"`
	Level int        `json:"level"`
}

// Origin is one (table, column) a field was computed from.
type Origin struct {
	Table   Path   `json:"table"`
	Column  string `json:"column"`
	Derived bool   `json:"derived,omitempty"`
}

// FieldOrigin maps an output column to its upstream origins.
type FieldOrigin struct {
	Name    string   `json:"name"`
	Origins []Origin `json:"origins"`
}

// Record is a single immutable version of a dataset definition.
//
// Records form a backward-linked chain through Previous. The store, not the
// in-memory value, is authoritative; Previous is a key, never a pointer.
type Record struct {
	ID       string
	Path     Path
	Name     string
	Version  Version
	Previous *VersionRef
	Named    bool

	Derivation   Derivation
	SQL          string
	Context      []string
	Parents      []Parent
	GrandParents []Parent
	FieldOrigins []FieldOrigin

	Owner         string
	CreatedAt     time.Time
	LastTransform Transform
}

// Ref returns the key this record is stored under.
func (r *Record) Ref() VersionRef {
	return VersionRef{Path: r.Path, Version: r.Version}
}

// Clone returns a deep copy so callers can mutate without touching shared
// state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Path = NewPath(r.Path...)
	if r.Previous != nil {
		prev := VersionRef{Path: NewPath(r.Previous.Path...), Version: r.Previous.Version}
		out.Previous = &prev
	}
	out.Context = append([]string(nil), r.Context...)
	out.Parents = cloneParents(r.Parents)
	out.GrandParents = cloneParents(r.GrandParents)
	if r.FieldOrigins != nil {
		out.FieldOrigins = make([]FieldOrigin, len(r.FieldOrigins))
		for i, fo := range r.FieldOrigins {
			origins := make([]Origin, len(fo.Origins))
			for j, o := range fo.Origins {
				origins[j] = Origin{Table: NewPath(o.Table...), Column: o.Column, Derived: o.Derived}
			}
			out.FieldOrigins[i] = FieldOrigin{Name: fo.Name, Origins: origins}
		}
	}
	out.LastTransform = r.LastTransform.clone()
	return &out
}

func cloneParents(in []Parent) []Parent {
	if in == nil {
		return nil
	}
	out := make([]Parent, len(in))
	for i, p := range in {
		out[i] = Parent{Path: NewPath(p.Path...), Type: p.Type, Level: p.Level}
	}
	return out
}

// FromType identifies the kind of source a new dataset is created from.
type FromType string

const (
	FromSQL      FromType = "SQL"
	FromTable    FromType = "TABLE"
	FromSubQuery FromType = "SUB_QUERY"
)

// From describes the source a new untitled dataset is created from.
type From struct {
	Type  FromType `json:"type"`
	SQL   string   `json:"sql,omitempty"`
	Table Path     `json:"table,omitempty"`
	Alias string   `json:"alias,omitempty"`
}

// FromSQLText creates a SQL source.
func FromSQLText(sql string) From {
	return From{Type: FromSQL, SQL: sql}
}

// FromDataset creates a table source.
func FromDataset(table Path) From {
	return From{Type: FromTable, Table: table, Alias: table.Leaf()}
}

// FromSubQueryText creates a sub-query source with the given alias.
func FromSubQueryText(sql, alias string) From {
	return From{Type: FromSubQuery, SQL: sql, Alias: alias}
}
