package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Veraticus/expense-flow/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the categorization endpoint over HTTP",
		Long: `Serve POST /api/categorize backed by the configured language model, so
other tools (or 'expense import --remote') can share one set of credentials.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			// Serving through another remote endpoint would only proxy it.
			settings.RemoteURL = ""

			logger := slog.Default()
			svc, cleanup, err := buildCategorizer(settings, false, logger)
			if err != nil {
				return err
			}
			defer cleanup()
			if svc == nil {
				logger.Warn("serving without a categorizer, requests will get 503")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.Run(ctx, settings.ServerAddr, server.NewHandler(svc, logger))
		},
	}

	cmd.Flags().String("addr", "127.0.0.1:8787", "Listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}
