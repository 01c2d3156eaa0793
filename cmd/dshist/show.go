package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/usecase"
)

func newShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <path> [version]",
		Short: "Show a dataset version",
		Long:  "Show one version of a dataset and the jobs run for it. Without a version the saved version is shown.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			path, err := dataset.ParsePath(args[0])
			if err != nil {
				return fmt.Errorf("invalid path: %w", err)
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := context.Background()
			var rec *dataset.Record
			if len(args) == 2 {
				rec, err = a.explore.Get(ctx, dataset.NewRef(path, dataset.Version(args[1])))
			} else {
				rec, err = a.explore.Saved(ctx, path)
			}
			if err != nil {
				return err
			}

			jobs, err := a.explore.Jobs(ctx, rec.Ref())
			if err != nil {
				return err
			}

			view := usecase.NewVersionView(rec)
			jobViews := newJobViews(jobs)
			if format == formatJSON {
				return outputJSON(cmd, struct {
					Version usecase.VersionView `json:"version"`
					Jobs    []jobView           `json:"jobs"`
				}{view, jobViews})
			}
			outputVersion(cmd, view)
			outputJobs(cmd, jobViews)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")

	return cmd
}
