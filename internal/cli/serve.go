package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/majorcompass-backend/internal/app"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	log, err := app.NewLogger()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, log, app.ModeServe)
	if err != nil {
		log.Error("Startup failed", "error", err)
		log.Sync()
		return err
	}
	defer a.Close()

	a.Start()
	if err := a.Run(ctx); err != nil {
		log.Error("Server failed", "error", err)
		return err
	}
	return nil
}
