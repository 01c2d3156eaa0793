package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/usecase"
)

func newHistoryCmd() *cobra.Command {
	var (
		tip    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "history <path> <version>",
		Short: "Show the version history of a dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			ref, err := parseRef(args[0], args[1])
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			h, err := a.explore.History(context.Background(), ref.Path, ref.Version, dataset.Version(tip))
			if err != nil {
				return err
			}

			view := usecase.NewHistoryView(h)
			if format == formatJSON {
				return outputJSON(cmd, view)
			}
			outputHistory(cmd, view)
			return nil
		},
	}

	cmd.Flags().StringVar(&tip, "tip", "", "Newest known version, when it differs from the selected one")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")

	return cmd
}
