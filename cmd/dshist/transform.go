package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/usecase"
)

func newTransformCmd() *cobra.Command {
	var (
		sortCol   string
		desc      bool
		dropCol   string
		rename    string
		filterCol string
		calcCol   string
		expr      string
		sqlText   string
		columns   []string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "transform <path> <version>",
		Short: "Apply a transform to a dataset version",
		Long:  "Apply one edit on top of a dataset version and store the result as a new version at the same path.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			ref, err := parseRef(args[0], args[1])
			if err != nil {
				return err
			}

			var tr dataset.Transform
			switch {
			case sqlText != "":
				tr = dataset.Transform{Type: dataset.TransformUpdateSQL, SQL: sqlText}
			case sortCol != "":
				tr = dataset.Transform{Type: dataset.TransformSort, Column: sortCol, Descending: desc}
			case dropCol != "":
				tr = dataset.Transform{Type: dataset.TransformDrop, Column: dropCol}
			case rename != "":
				oldName, newName, ok := strings.Cut(rename, "=")
				if !ok {
					return fmt.Errorf("invalid --rename %q: expected old=new", rename)
				}
				tr = dataset.Transform{Type: dataset.TransformRename, Column: oldName, NewColumn: newName}
			case filterCol != "":
				tr = dataset.Transform{Type: dataset.TransformFilter, Column: filterCol, Expression: expr}
			case calcCol != "":
				tr = dataset.Transform{Type: dataset.TransformCalculatedField, NewColumn: calcCol, Expression: expr}
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.explore.Transform(context.Background(), usecase.TransformInput{
				Base:      ref,
				Transform: tr,
				Columns:   columns,
			})
			if err != nil {
				return err
			}
			return outputResult(cmd, res, format)
		},
	}

	cmd.Flags().StringVar(&sqlText, "sql", "", "Replace the SQL of the dataset")
	cmd.Flags().StringVar(&sortCol, "sort", "", "Sort by column")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().StringVar(&dropCol, "drop", "", "Drop a column")
	cmd.Flags().StringVar(&rename, "rename", "", "Rename a column, as old=new")
	cmd.Flags().StringVar(&filterCol, "filter", "", "Filter on a column using --expr")
	cmd.Flags().StringVar(&calcCol, "calc", "", "Add a calculated column using --expr")
	cmd.Flags().StringVar(&expr, "expr", "", "Expression for --filter and --calc")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns of the result, when known")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")
	cmd.MarkFlagsOneRequired("sql", "sort", "drop", "rename", "filter", "calc")
	cmd.MarkFlagsMutuallyExclusive("sql", "sort", "drop", "rename", "filter", "calc")

	return cmd
}

func parseRef(path, version string) (dataset.VersionRef, error) {
	p, err := dataset.ParsePath(path)
	if err != nil {
		return dataset.VersionRef{}, fmt.Errorf("invalid path: %w", err)
	}
	if version == "" {
		return dataset.VersionRef{}, fmt.Errorf("version is required")
	}
	return dataset.NewRef(p, dataset.Version(version)), nil
}
