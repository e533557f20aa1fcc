package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tablewarden/tablewarden/pkg/logging"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <source>",
	Short: "Rebuild a source's workbook from its snapshots",
	Long: `Restore regenerates the workbook for a source from the durable CSV
snapshots, discarding whatever the workbook currently contains. Use it
when a workbook was edited or corrupted beyond what automatic
reconciliation repairs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Restore(cmd.Context(), args[0]); err != nil {
			return err
		}
		logging.Info().Str("source", args[0]).Msg("workbook restored from snapshots")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
