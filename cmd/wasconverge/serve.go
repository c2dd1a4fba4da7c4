package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wasconverge/wasconverge/internal/api"
	"github.com/wasconverge/wasconverge/internal/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the manifest watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := newLogger(cfg)

			store, reconciler, err := buildComponents(cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Sync.AutoSync {
				go func() {
					if err := reconciler.Watch(ctx); err != nil && ctx.Err() == nil {
						log.Error().Err(err).Msg("manifest watcher stopped")
					}
				}()
			}

			router := api.NewRouter(store, reconciler, cfg.Sync.BootstrapAPIKey, log)
			server := &http.Server{
				Addr:         cfg.Server.Addr(),
				Handler:      router,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errs := make(chan error, 1)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errs <- err
				}
			}()

			log.Info().Str("addr", cfg.Server.Addr()).Msg("server started")

			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
