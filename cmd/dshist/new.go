package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/usecase"
)

func newNewCmd() *cobra.Command {
	var (
		sqlText  string
		table    string
		subQuery string
		alias    string
		sqlCtx   string
		columns  []string
		parents  []string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an untitled dataset",
		Long:  "Create the first version of an untitled dataset from SQL text, a table or a sub-query.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			from, err := parseSource(sqlText, table, subQuery, alias)
			if err != nil {
				return err
			}

			var contextPath []string
			if sqlCtx != "" {
				p, err := dataset.ParsePath(sqlCtx)
				if err != nil {
					return fmt.Errorf("invalid context: %w", err)
				}
				contextPath = p
			}

			parentList := make([]dataset.Parent, 0, len(parents))
			for _, raw := range parents {
				p, err := dataset.ParsePath(raw)
				if err != nil {
					return fmt.Errorf("invalid parent %q: %w", raw, err)
				}
				parentList = append(parentList, dataset.Parent{Path: p, Type: dataset.ParentUnknown})
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.explore.NewUntitled(context.Background(), usecase.NewUntitledInput{
				From:    from,
				Context: contextPath,
				Columns: columns,
				Parents: parentList,
			})
			if err != nil {
				return err
			}
			return outputResult(cmd, res, format)
		},
	}

	cmd.Flags().StringVar(&sqlText, "sql", "", "SQL text of the dataset")
	cmd.Flags().StringVar(&table, "table", "", "Dotted path of a table to start from")
	cmd.Flags().StringVar(&subQuery, "subquery", "", "SQL of a sub-query to start from")
	cmd.Flags().StringVar(&alias, "alias", "", "Alias of the sub-query")
	cmd.Flags().StringVar(&sqlCtx, "context", "", "Dotted SQL context the query runs in")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns the query produces")
	cmd.Flags().StringSliceVar(&parents, "parent", nil, "Dotted path of a dataset the query reads (repeatable)")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")
	cmd.MarkFlagsOneRequired("sql", "table", "subquery")
	cmd.MarkFlagsMutuallyExclusive("sql", "table", "subquery")

	return cmd
}

func parseSource(sqlText, table, subQuery, alias string) (dataset.From, error) {
	switch {
	case table != "":
		p, err := dataset.ParsePath(table)
		if err != nil {
			return dataset.From{}, fmt.Errorf("invalid table: %w", err)
		}
		return dataset.FromDataset(p), nil
	case subQuery != "":
		return dataset.FromSubQueryText(subQuery, alias), nil
	case sqlText != "":
		return dataset.FromSQLText(sqlText), nil
	default:
		return dataset.From{}, fmt.Errorf("one of --sql, --table or --subquery is required")
	}
}

type resultOutput struct {
	Version usecase.VersionView `json:"version"`
	JobID   string              `json:"jobId,omitempty"`
	History usecase.HistoryView `json:"history"`
}

func outputResult(cmd *cobra.Command, res *usecase.Result, format string) error {
	out := resultOutput{
		Version: usecase.NewVersionView(res.Record),
		JobID:   string(res.JobID),
		History: usecase.NewHistoryView(res.History),
	}
	if format == formatJSON {
		return outputJSON(cmd, out)
	}
	outputVersion(cmd, out.Version)
	outputHistory(cmd, out.History)
	return nil
}
