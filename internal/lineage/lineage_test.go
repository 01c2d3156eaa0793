package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshist/dshist/internal/dataset"
)

var (
	customers = dataset.NewPath("pg", "public", "customers")
	orders    = dataset.NewPath("pg", "public", "orders")
)

func origins(table dataset.Path, columns ...string) []dataset.Origin {
	out := make([]dataset.Origin, len(columns))
	for i, c := range columns {
		out[i] = dataset.Origin{Table: table, Column: c}
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		record dataset.Record
		want   dataset.Derivation
	}{
		{
			name:   "settled derivation is kept",
			record: dataset.Record{Derivation: dataset.DerivationSQL},
			want:   dataset.DerivationSQL,
		},
		{
			name: "settled virtual ignores metadata",
			record: dataset.Record{
				Derivation:   dataset.DerivationDerivedVirtual,
				Parents:      []dataset.Parent{{Path: customers}},
				FieldOrigins: []dataset.FieldOrigin{{Name: "id", Origins: origins(customers, "id")}},
			},
			want: dataset.DerivationDerivedVirtual,
		},
		{
			name: "two parents",
			record: dataset.Record{
				Derivation: dataset.DerivationDerivedUnknown,
				Parents:    []dataset.Parent{{Path: customers}, {Path: orders}},
			},
			want: dataset.DerivationUnknown,
		},
		{
			name:   "no parents",
			record: dataset.Record{Derivation: dataset.DerivationDerivedUnknown},
			want:   dataset.DerivationUnknown,
		},
		{
			name: "single parent is the only origin",
			record: dataset.Record{
				Derivation: dataset.DerivationDerivedUnknown,
				Parents:    []dataset.Parent{{Path: customers}},
				FieldOrigins: []dataset.FieldOrigin{
					{Name: "id", Origins: origins(customers, "id")},
					{Name: "name", Origins: origins(customers, "first", "last")},
				},
			},
			want: dataset.DerivationDerivedPhysical,
		},
		{
			name: "origins reach past the parent",
			record: dataset.Record{
				Derivation: dataset.DerivationDerivedUnknown,
				Parents:    []dataset.Parent{{Path: customers}},
				FieldOrigins: []dataset.FieldOrigin{
					{Name: "id", Origins: origins(customers, "id")},
					{Name: "total", Origins: origins(orders, "amount")},
				},
			},
			want: dataset.DerivationDerivedVirtual,
		},
		{
			name: "single origin that is not the parent",
			record: dataset.Record{
				Derivation:   dataset.DerivationDerivedUnknown,
				Parents:      []dataset.Parent{{Path: dataset.NewPath("space", "view")}},
				FieldOrigins: []dataset.FieldOrigin{{Name: "id", Origins: origins(customers, "id")}},
			},
			want: dataset.DerivationDerivedVirtual,
		},
		{
			name: "single parent without origins",
			record: dataset.Record{
				Derivation: dataset.DerivationDerivedUnknown,
				Parents:    []dataset.Parent{{Path: customers}},
			},
			want: dataset.DerivationDerivedVirtual,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(&tt.record))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	r := &dataset.Record{
		Derivation: dataset.DerivationDerivedUnknown,
		Parents:    []dataset.Parent{{Path: customers}},
	}
	Classify(r)
	assert.Equal(t, dataset.DerivationDerivedUnknown, r.Derivation)

	Resolve(r)
	assert.Equal(t, dataset.DerivationDerivedVirtual, r.Derivation)
}

func TestInitial(t *testing.T) {
	assert.Equal(t, dataset.DerivationSQL, Initial(dataset.FromSQLText("select 1")))
	assert.Equal(t, dataset.DerivationDerivedUnknown, Initial(dataset.FromDataset(customers)))
	assert.Equal(t, dataset.DerivationUnknown, Initial(dataset.FromSubQueryText("select 1", "q")))
}

func TestApply(t *testing.T) {
	r := &dataset.Record{
		Derivation:   dataset.DerivationDerivedUnknown,
		GrandParents: []dataset.Parent{{Path: orders, Level: 2}},
	}

	Apply(r, QueryMetadata{
		Parents:      []dataset.Parent{{Path: customers, Type: dataset.ParentPhysical, Level: 4}},
		FieldOrigins: []dataset.FieldOrigin{{Name: "id", Origins: origins(customers, "id")}},
	})

	assert.Equal(t, []dataset.Parent{{Path: customers, Type: dataset.ParentPhysical, Level: 1}}, r.Parents)
	assert.Len(t, r.FieldOrigins, 1)
	// Grand parents were not reported, so the old ones stay.
	assert.Equal(t, []dataset.Parent{{Path: orders, Level: 2}}, r.GrandParents)
	assert.Equal(t, dataset.DerivationDerivedPhysical, r.Derivation)
}

func TestApplyLeavesSqlDerivation(t *testing.T) {
	r := &dataset.Record{Derivation: dataset.DerivationSQL}

	Apply(r, QueryMetadata{Parents: []dataset.Parent{{Path: customers}, {Path: orders}}})

	assert.Len(t, r.Parents, 2)
	assert.Equal(t, dataset.DerivationSQL, r.Derivation)
}
