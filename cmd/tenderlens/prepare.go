package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/tenderlens/pkg/tenderlens/analytics"
)

func newPrepareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Clean the dataset, assign clusters and write a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Snapshot.Path == "" {
				return errors.New("prepare: snapshot.path or --snapshot is required")
			}
			ctx := cmd.Context()
			lens, _, err := a.newLens(ctx)
			if err != nil {
				return err
			}
			defer lens.Close()

			table, err := lens.PrepareDataset(ctx)
			if err != nil {
				return err
			}
			if err := lens.SaveSnapshot(ctx, table); err != nil {
				return err
			}

			s := analytics.Summarize(table.Records)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tenders (%d entities, %d vendors, %d-%d) to %s\n",
				s.Records, s.TotalEntities, s.TotalVendors, s.MinYear, s.MaxYear, a.cfg.Snapshot.Path)
			return nil
		},
	}
}
