package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thinkscotty/minutes/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(sigCtx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if n, err := a.db.CleanExpiredSessions(); err != nil {
				slog.Warn("Failed to clean expired sessions", "error", err)
			} else if n > 0 {
				slog.Info("Removed expired sessions", "count", n)
			}

			srv := server.New(cfg, a.db, a.pipeline, version)
			go func() {
				<-sigCtx.Done()
				slog.Info("Shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					slog.Error("Shutdown failed", "error", err)
				}
			}()

			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
