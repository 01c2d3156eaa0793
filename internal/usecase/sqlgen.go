package usecase

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dshist/dshist/internal/dataset"
)

const nestedAlias = "nested_0"

func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quotePath(p dataset.Path) string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = quoteIdentifier(c)
	}
	return strings.Join(parts, ".")
}

// sqlForSource is the first SQL of a new dataset. A table inside the current
// context is referenced by its leaf name only.
func sqlForSource(from dataset.From, sqlContext []string) string {
	switch from.Type {
	case dataset.FromTable:
		if parent := from.Table.Parent(); len(parent) > 0 && parent.Equal(dataset.NewPath(sqlContext...)) {
			return "SELECT * FROM " + quoteIdentifier(from.Table.Leaf())
		}
		return "SELECT * FROM " + quotePath(from.Table)
	case dataset.FromSubQuery:
		alias := from.Alias
		if alias == "" {
			alias = nestedAlias
		}
		return fmt.Sprintf("SELECT * FROM (%s) AS %s", from.SQL, quoteIdentifier(alias))
	default:
		return from.SQL
	}
}

func validateSource(from dataset.From) error {
	switch from.Type {
	case dataset.FromSQL, dataset.FromSubQuery:
		if strings.TrimSpace(from.SQL) == "" {
			return fmt.Errorf("%w: %s source requires sql", ErrInvalidInput, from.Type)
		}
	case dataset.FromTable:
		if len(from.Table) == 0 {
			return fmt.Errorf("%w: table source requires a table path", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown source type %q", ErrInvalidInput, from.Type)
	}
	return nil
}

// applyTransform wraps baseSQL so it produces the transformed result and
// returns the resulting column list. columns may be empty when the base
// columns are unknown; transforms that must list columns then fail.
func applyTransform(baseSQL string, columns []string, t dataset.Transform) (string, []string, error) {
	nested := fmt.Sprintf("(%s) AS %s", baseSQL, nestedAlias)

	switch t.Type {
	case dataset.TransformUpdateSQL:
		return t.SQL, columns, nil

	case dataset.TransformSort:
		dir := "ASC"
		if t.Descending {
			dir = "DESC"
		}
		return fmt.Sprintf("SELECT * FROM %s ORDER BY %s %s", nested, quoteIdentifier(t.Column), dir), columns, nil

	case dataset.TransformFilter:
		return fmt.Sprintf("SELECT * FROM %s WHERE %s %s", nested, quoteIdentifier(t.Column), t.Expression), columns, nil

	case dataset.TransformCalculatedField:
		out := append(slices.Clone(columns), t.NewColumn)
		return fmt.Sprintf("SELECT *, %s AS %s FROM %s", t.Expression, quoteIdentifier(t.NewColumn), nested), out, nil

	case dataset.TransformDrop:
		idx := slices.Index(columns, t.Column)
		if idx < 0 {
			return "", nil, fmt.Errorf("%w: unknown column %q", ErrInvalidInput, t.Column)
		}
		out := slices.Delete(slices.Clone(columns), idx, idx+1)
		if len(out) == 0 {
			return "", nil, fmt.Errorf("%w: cannot drop the last column", ErrInvalidInput)
		}
		selects := make([]string, len(out))
		for i, c := range out {
			selects[i] = quoteIdentifier(c)
		}
		return fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), nested), out, nil

	case dataset.TransformRename:
		idx := slices.Index(columns, t.Column)
		if idx < 0 {
			return "", nil, fmt.Errorf("%w: unknown column %q", ErrInvalidInput, t.Column)
		}
		out := slices.Clone(columns)
		out[idx] = t.NewColumn
		selects := make([]string, len(columns))
		for i, c := range columns {
			if i == idx {
				selects[i] = fmt.Sprintf("%s AS %s", quoteIdentifier(c), quoteIdentifier(t.NewColumn))
				continue
			}
			selects[i] = quoteIdentifier(c)
		}
		return fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), nested), out, nil
	}

	return "", nil, fmt.Errorf("%w: transform %q cannot be applied to an existing version", ErrInvalidInput, t.Type)
}

func columnNames(origins []dataset.FieldOrigin) []string {
	if len(origins) == 0 {
		return nil
	}
	names := make([]string, len(origins))
	for i, fo := range origins {
		names[i] = fo.Name
	}
	return names
}
