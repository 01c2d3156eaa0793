package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/usecase"
)

func newSaveCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "save <path> <version> <new-path>",
		Short: "Save a dataset version under a name",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			ref, err := parseRef(args[0], args[1])
			if err != nil {
				return err
			}
			target, err := dataset.ParsePath(args[2])
			if err != nil {
				return fmt.Errorf("invalid new path: %w", err)
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			saved, err := a.explore.Save(context.Background(), usecase.SaveInput{Ref: ref, NewPath: target})
			if err != nil {
				return err
			}

			view := usecase.NewVersionView(saved)
			if format == formatJSON {
				return outputJSON(cmd, view)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s@%s\n", view.Path, view.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")

	return cmd
}
