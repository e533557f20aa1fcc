package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tablewarden/tablewarden/internal/scheduler"
	"github.com/tablewarden/tablewarden/internal/server"
	"github.com/tablewarden/tablewarden/pkg/constants"
	"github.com/tablewarden/tablewarden/pkg/logging"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard and scheduler",
	Long: `Serve starts the HTTP dashboard and schedules each source's cron
expression. Sources without a schedule only run when triggered from the
dashboard or the run command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if listenAddr != "" {
			appConfig.Listen = listenAddr
		}

		sched := scheduler.New(func(ctx context.Context, source string) {
			ctx, cancel := context.WithTimeout(ctx, constants.DefaultRunTimeout)
			defer cancel()
			result, err := client.Run(ctx, source)
			if err != nil {
				logging.Err(err).Str("source", source).Msg("scheduled run failed")
				return
			}
			logging.Info().
				Str("source", source).
				Int("new_rows", result.NewRows()).
				Msg("scheduled run finished")
		})
		sched.Start(appConfig.Sources)
		defer sched.Stop()

		srv := server.New(client, appConfig.Listen)
		go func() {
			<-cmd.Context().Done()
			logging.Info().Msg("shutting down")
			if err := srv.Shutdown(context.Background()); err != nil {
				logging.Err(err).Msg("shutdown failed")
			}
		}()

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}
