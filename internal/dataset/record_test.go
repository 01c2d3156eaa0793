package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCloneIsDeep(t *testing.T) {
	orig := &Record{
		Path:     NewPath("space", "orders"),
		Version:  "v2",
		Previous: &VersionRef{Path: UntitledPath, Version: "v1"},
		Parents:  []Parent{{Path: NewPath("src", "orders"), Level: 1}},
		FieldOrigins: []FieldOrigin{{
			Name:    "id",
			Origins: []Origin{{Table: NewPath("src", "orders"), Column: "id"}},
		}},
		LastTransform: CreateFromParent(FromDataset(NewPath("src", "orders"))),
	}

	clone := orig.Clone()
	require.Equal(t, orig, clone)

	clone.Path[1] = "changed"
	clone.Previous.Version = "other"
	clone.Parents[0].Path[0] = "x"
	clone.FieldOrigins[0].Origins[0].Column = "y"
	clone.LastTransform.From.Table[0] = "z"

	assert.Equal(t, "orders", orig.Path[1])
	assert.Equal(t, Version("v1"), orig.Previous.Version)
	assert.Equal(t, "src", orig.Parents[0].Path[0])
	assert.Equal(t, "id", orig.FieldOrigins[0].Origins[0].Column)
	assert.Equal(t, "src", orig.LastTransform.From.Table[0])
}

func TestTransformDescribe(t *testing.T) {
	cases := []struct {
		tr   Transform
		want string
	}{
		{CreateFromParent(FromSQLText("select 1")), "New SQL"},
		{CreateFromParent(FromDataset(NewPath("src", "orders"))), "Created from src.orders"},
		{Transform{Type: TransformUpdateSQL, SQL: "select 2"}, "SQL edited"},
		{Transform{Type: TransformSort, Column: "amount", Descending: true}, "Sorted by amount descending"},
		{Transform{Type: TransformDrop, Column: "note"}, "Dropped note"},
		{Transform{Type: TransformRename, Column: "a", NewColumn: "b"}, "Renamed a to b"},
		{Transform{}, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.tr.Describe())
	}
}

func TestTransformValidate(t *testing.T) {
	assert.NoError(t, Transform{Type: TransformSort, Column: "a"}.Validate())
	assert.NoError(t, CreateFromParent(FromSQLText("select 1")).Validate())
	assert.ErrorIs(t, Transform{Type: TransformSort}.Validate(), ErrInvalidTransform)
	assert.ErrorIs(t, Transform{Type: TransformFilter, Column: "a"}.Validate(), ErrInvalidTransform)
	assert.ErrorIs(t, Transform{Type: "explode"}.Validate(), ErrInvalidTransform)
}
