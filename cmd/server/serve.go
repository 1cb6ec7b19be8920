package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			hub, cfg, logger, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer hub.Close()

			httpServer := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           hub.Handler(),
				ReadHeaderTimeout: 15 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", cfg.Server.Addr).Int("executors", len(hub.Registry.List())).Msg("http server started")
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info().Msg("shutting down")
			// open event streams would otherwise hold Shutdown open
			hub.Events.Stop()
			ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctxShutdown); err != nil {
				logger.Error().Err(err).Msg("graceful shutdown failed")
				return err
			}
			return nil
		},
	}
}
