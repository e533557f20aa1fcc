package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablewarden/tablewarden/pkg/logging"
)

var runCmd = &cobra.Command{
	Use:   "run [source...]",
	Short: "Fetch and reconcile sources once",
	Long: `Run fetches each named source (all configured sources when none are
named), reconciles the scraped tables against the snapshots, rewrites
the workbooks, and mails the configured recipients when new rows
appeared.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		result, err := client.Run(cmd.Context(), args...)
		if err != nil {
			return err
		}

		for _, report := range result.Reports {
			if report.Err != nil {
				logging.Err(report.Err).Str("source", report.Source).Msg("source failed")
				continue
			}
			logging.Info().
				Str("source", report.Source).
				Int("rows", report.Result.TotalRows()).
				Int("new", report.Result.NewRows()).
				Bool("tampered", report.Result.Tampered).
				Msg("source reconciled")
		}

		if failed := result.Failed(); len(failed) > 0 {
			return fmt.Errorf("%d of %d sources failed", len(failed), len(result.Reports))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
