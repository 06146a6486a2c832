package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
	"github.com/cognicore/tenderlens/pkg/tenderlens/topics"
)

func newTopicsCmd(a *app) *cobra.Command {
	var (
		clusterName  string
		entity       string
		categories   []string
		from, to     int
		byYear       bool
		fromSnapshot bool
	)
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Fit a topic model on a filtered selection and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			var preds []tender.Predicate
			if clusterName != "" {
				preds = append(preds, tender.InCluster(clusterName))
			}
			if entity != "" {
				preds = append(preds, tender.ForEntity(entity))
			}
			for _, raw := range categories {
				c, err := tender.ParseCategory(raw)
				if err != nil {
					return err
				}
				preds = append(preds, tender.HasCategory(c))
			}
			if from != 0 || to != 0 {
				preds = append(preds, tender.StartYearBetween(from, to))
			}

			ctx := cmd.Context()
			lens, _, err := a.newLens(ctx)
			if err != nil {
				return err
			}
			defer lens.Close()

			var table *tender.Table
			if fromSnapshot {
				table, err = lens.LoadSnapshot(ctx)
			} else {
				table, err = lens.PrepareDataset(ctx)
			}
			if err != nil {
				return err
			}
			records := tender.Filter(table.Records, preds...)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			var out topics.Outcome
			if byYear {
				var counts topics.YearCounts
				counts, out = lens.TopicCountsByYear(ctx, records)
				err = enc.Encode(struct {
					topics.Outcome
					Labels map[int]string    `json:"labels"`
					Counts topics.YearCounts `json:"counts"`
				}{out, out.Labels(), counts})
			} else {
				out = lens.FitTopics(ctx, tender.Descriptions(records))
				err = enc.Encode(struct {
					topics.Outcome
					WordCloudText string `json:"word_cloud_text"`
				}{out, out.WordCloudText()})
			}
			if err != nil {
				return err
			}
			if err := out.Err(); err != nil {
				return fmt.Errorf("topics: %s: %w", out.Message, err)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&clusterName, "cluster", "", "entity cluster")
	f.StringVar(&entity, "entity", "", "canonical entity name")
	f.StringSliceVar(&categories, "category", nil, "goods, service or construction (repeatable)")
	f.IntVar(&from, "from", 0, "first tender start year")
	f.IntVar(&to, "to", 0, "last tender start year")
	f.BoolVar(&byYear, "by-year", false, "count documents per awarded year and topic")
	f.BoolVar(&fromSnapshot, "from-snapshot", false, "read the prepared snapshot")
	return cmd
}
