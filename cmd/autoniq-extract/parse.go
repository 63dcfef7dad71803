package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/nhle/autoniq-extractor/internal/report"
	"github.com/nhle/autoniq-extractor/internal/source"
	"github.com/nhle/autoniq-extractor/internal/source/email"
)

func parseCmd() *cobra.Command {
	var (
		asJSON bool
		write  bool
	)

	cmd := &cobra.Command{
		Use:   "parse FILE...",
		Short: "Extract listings from saved .eml files without touching the mailbox",
		Long: `parse runs the extractor over message files saved from a mail client.
The watermark is neither read nor written. Reports are only appended with
--write.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			src := email.NewFileSource(args...)
			msgs, err := src.FetchMessages(context.Background(), source.Query{})
			if err != nil {
				return err
			}

			runner, err := a.newRunner(src, nil)
			if err != nil {
				return err
			}
			res := runner.Process(msgs)

			if write {
				if err := report.NewCSVWriter(a.cfg.Reports.Dir).WriteAll(res.Groups); err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Listings   any `json:"listings"`
					Rejections any `json:"rejections"`
				}{res.Listings, res.Rejections})
			}

			a.printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print listings as JSON")
	cmd.Flags().BoolVar(&write, "write", false, "Append the listings to the CSV reports")
	return cmd
}
