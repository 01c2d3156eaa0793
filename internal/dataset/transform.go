package dataset

import (
	"errors"
	"fmt"
)

// TransformType names the edit operation that produced a version.
type TransformType string

const (
	TransformCreateFromParent TransformType = "create_from_parent"
	TransformUpdateSQL        TransformType = "update_sql"
	TransformSort             TransformType = "sort"
	TransformDrop             TransformType = "drop"
	TransformRename           TransformType = "rename"
	TransformFilter           TransformType = "filter"
	TransformCalculatedField  TransformType = "calculated_field"
)

// ErrInvalidTransform is returned by Transform.Validate.
var ErrInvalidTransform = errors.New("dataset: invalid transform")

// Transform describes an edit. Only the fields relevant to Type are set.
type Transform struct {
	Type       TransformType `json:"type"`
	From       *From         `json:"from,omitempty"`
	SQL        string        `json:"sql,omitempty"`
	Column     string        `json:"column,omitempty"`
	NewColumn  string        `json:"newColumn,omitempty"`
	Descending bool          `json:"descending,omitempty"`
	Expression string        `json:"expression,omitempty"`
}

// CreateFromParent is the transform recorded on the first version of a chain.
func CreateFromParent(from From) Transform {
	f := from
	return Transform{Type: TransformCreateFromParent, From: &f}
}

// Validate checks that the fields required by the transform type are present.
func (t Transform) Validate() error {
	switch t.Type {
	case TransformCreateFromParent:
		if t.From == nil {
			return fmt.Errorf("%w: %s requires a source", ErrInvalidTransform, t.Type)
		}
	case TransformUpdateSQL:
		if t.SQL == "" {
			return fmt.Errorf("%w: %s requires sql", ErrInvalidTransform, t.Type)
		}
	case TransformSort, TransformDrop:
		if t.Column == "" {
			return fmt.Errorf("%w: %s requires a column", ErrInvalidTransform, t.Type)
		}
	case TransformRename:
		if t.Column == "" || t.NewColumn == "" {
			return fmt.Errorf("%w: rename requires column and new column", ErrInvalidTransform)
		}
	case TransformFilter:
		if t.Column == "" || t.Expression == "" {
			return fmt.Errorf("%w: filter requires column and expression", ErrInvalidTransform)
		}
	case TransformCalculatedField:
		if t.NewColumn == "" || t.Expression == "" {
			return fmt.Errorf("%w: calculated field requires new column and expression", ErrInvalidTransform)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransform, t.Type)
	}
	return nil
}

// Describe renders the label shown for this transform in a history list.
func (t Transform) Describe() string {
	switch t.Type {
	case TransformCreateFromParent:
		if t.From == nil {
			return "New dataset"
		}
		switch t.From.Type {
		case FromTable:
			return fmt.Sprintf("Created from %s", t.From.Table)
		case FromSubQuery:
			return fmt.Sprintf("Created from sub-query %s", t.From.Alias)
		default:
			return "New SQL"
		}
	case TransformUpdateSQL:
		return "SQL edited"
	case TransformSort:
		if t.Descending {
			return fmt.Sprintf("Sorted by %s descending", t.Column)
		}
		return fmt.Sprintf("Sorted by %s ascending", t.Column)
	case TransformDrop:
		return fmt.Sprintf("Dropped %s", t.Column)
	case TransformRename:
		return fmt.Sprintf("Renamed %s to %s", t.Column, t.NewColumn)
	case TransformFilter:
		return fmt.Sprintf("Filtered %s by %s", t.Column, t.Expression)
	case TransformCalculatedField:
		return fmt.Sprintf("Added %s as %s", t.NewColumn, t.Expression)
	case "":
		return ""
	default:
		return string(t.Type)
	}
}

func (t Transform) clone() Transform {
	out := t
	if t.From != nil {
		f := *t.From
		f.Table = NewPath(t.From.Table...)
		out.From = &f
	}
	return out
}
