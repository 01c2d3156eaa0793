package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dshist/dshist/internal/usecase"
)

func newListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			records, err := a.explore.ListSaved(context.Background())
			if err != nil {
				return err
			}

			views := make([]usecase.VersionView, 0, len(records))
			for _, r := range records {
				views = append(views, usecase.NewVersionView(r))
			}

			if format == formatJSON {
				return outputJSON(cmd, views)
			}
			outputList(cmd, views)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")

	return cmd
}
