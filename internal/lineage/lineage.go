// Package lineage infers how a dataset version relates to its upstream
// sources once the planner has reported parents and field origins.
package lineage

import (
	"github.com/dshist/dshist/internal/dataset"
)

// QueryMetadata is what planning a version's SQL reports back. A nil slice
// means the planner did not report that part; the record keeps its value.
type QueryMetadata struct {
	Parents      []dataset.Parent
	FieldOrigins []dataset.FieldOrigin
	GrandParents []dataset.Parent
}

// Initial is the derivation of a freshly created dataset, before any
// planner metadata is known.
func Initial(from dataset.From) dataset.Derivation {
	switch from.Type {
	case dataset.FromSQL:
		return dataset.DerivationSQL
	case dataset.FromTable:
		return dataset.DerivationDerivedUnknown
	default:
		return dataset.DerivationUnknown
	}
}

// Classify returns the derivation r should have. Only DERIVED_UNKNOWN is
// refined; every other value is already settled and returned as is.
//
// With exactly one parent, a version whose field origins all point at that
// parent is DERIVED_PHYSICAL. Anything else, including no origins at all, is
// DERIVED_VIRTUAL. Any other parent count means parent detection went wrong
// and yields UNKNOWN.
func Classify(r *dataset.Record) dataset.Derivation {
	if r.Derivation != dataset.DerivationDerivedUnknown {
		return r.Derivation
	}
	if len(r.Parents) != 1 {
		return dataset.DerivationUnknown
	}

	var tables []dataset.Path
	for _, field := range r.FieldOrigins {
		for _, origin := range field.Origins {
			if !containsPath(tables, origin.Table) {
				tables = append(tables, origin.Table)
			}
		}
	}

	if len(tables) == 1 && tables[0].Equal(r.Parents[0].Path) {
		return dataset.DerivationDerivedPhysical
	}
	return dataset.DerivationDerivedVirtual
}

// Resolve stores Classify(r) on r.
func Resolve(r *dataset.Record) {
	r.Derivation = Classify(r)
}

// Apply copies planner metadata onto r and resolves its derivation. Parents
// are direct by definition, so their level is forced to 1.
func Apply(r *dataset.Record, md QueryMetadata) {
	if md.Parents != nil {
		parents := make([]dataset.Parent, len(md.Parents))
		for i, p := range md.Parents {
			parents[i] = dataset.Parent{Path: dataset.NewPath(p.Path...), Type: p.Type, Level: 1}
		}
		r.Parents = parents
	}
	if md.FieldOrigins != nil {
		r.FieldOrigins = md.FieldOrigins
	}
	if md.GrandParents != nil {
		r.GrandParents = md.GrandParents
	}
	Resolve(r)
}

func containsPath(paths []dataset.Path, p dataset.Path) bool {
	for _, existing := range paths {
		if existing.Equal(p) {
			return true
		}
	}
	return false
}
