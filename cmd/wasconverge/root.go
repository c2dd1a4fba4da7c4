package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wasconverge/wasconverge/internal/config"
	"github.com/wasconverge/wasconverge/internal/script"
	"github.com/wasconverge/wasconverge/internal/scope"
	"github.com/wasconverge/wasconverge/internal/service"
	"github.com/wasconverge/wasconverge/internal/storage"
	"github.com/wasconverge/wasconverge/internal/storage/sql"
	"github.com/wasconverge/wasconverge/internal/wsadmin"
)

// version is injected at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "wasconverge",
	Short: "Reconcile WebSphere cell configuration from manifests",
	Long: `wasconverge reads resource manifests and converges a deployment
manager's configuration toward them, one wsadmin script per drifted
resource.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newReconcileCmd())
	rootCmd.AddCommand(newSecretCmd())
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = zerolog.New(os.Stderr)
	if cfg.Log.Pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return out.Level(level).With().Timestamp().Logger()
}

// buildComponents wires storage, the executor, and the reconciler from
// config. The caller owns closing the returned store.
func buildComponents(cfg *config.Config, log zerolog.Logger) (storage.Storage, *service.Reconciler, error) {
	if cfg.Database.Driver == "sqlite3" {
		if dir := filepath.Dir(cfg.Database.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, err
			}
		}
	}

	store, err := sql.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}

	var executor wsadmin.Executor
	if cfg.Was.RecorderShim {
		log.Warn().Msg("recorder shim enabled, scripts will not reach wsadmin")
		executor = wsadmin.NewRecorder()
	} else {
		executor = wsadmin.NewProcess(cfg.Was.WsadminPath, cfg.Was.User, cfg.Was.Password, log)
	}

	renderer, err := script.NewRenderer()
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	reconciler := service.New(
		store,
		scope.NewResolver(cfg.Was.ProfileBase, cfg.Was.DmgrProfile),
		executor,
		renderer,
		cfg.Sync.ManifestDir,
		cfg.Sync.Debounce,
		cfg.Sync.AutoSync,
		log,
	)
	return store, reconciler, nil
}
