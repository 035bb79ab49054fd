package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vdiff/internal/config"
	"github.com/vango-dev/vdiff/pkg/server"
	"github.com/vango-dev/vdiff/pkg/snapshot"
	"github.com/vango-dev/vdiff/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diff API and websocket patch stream",
		Long: `Run the HTTP diff API and the websocket patch stream.

Configuration is read from --config, or from vdiff.json / vdiff.yaml in
the working directory when present. VDIFF_ADDR and VDIFF_LOG_LEVEL
override the file.

Examples:
  vdiff serve
  vdiff serve --addr 127.0.0.1:9000
  vdiff serve --config deploy/vdiff.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			level := cfg.LogLevel()
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = slog.LevelDebug
			}
			setupLoggingLevel(cmd.ErrOrStderr(), level, cfg.Log.Format)

			store, err := snapshot.Open(cfg.Snapshot)
			if err != nil {
				return err
			}
			defer store.Close()

			var metrics *telemetry.Metrics
			if cfg.Metrics.Enabled {
				metrics = telemetry.NewMetrics(telemetry.WithNamespace(cfg.Metrics.Namespace))
			}

			srv := server.New(server.Config{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     cfg.ReadTimeout(),
				WriteTimeout:    cfg.WriteTimeout(),
				ShutdownTimeout: cfg.ShutdownTimeout(),
				MaxMessageBytes: int64(cfg.Server.MaxMessageBytes),
				Store:           store,
				Metrics:         metrics,
				MetricsPath:     cfg.Metrics.Path,
				Logger:          slog.Default(),
			})

			out := cmd.OutOrStdout()
			fmt.Fprint(out, banner)
			fmt.Fprintln(out)
			info(out, "Listening on  %s", cfg.Server.Addr)
			info(out, "Snapshots     %s", cfg.Snapshot.Backend)
			if metrics != nil {
				info(out, "Metrics       %s", cfg.Metrics.Path)
			}
			if cfg.Path() == "" {
				warn(out, "No config file found, using defaults")
			}
			fmt.Fprintln(out)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (default: vdiff.json or vdiff.yaml in the working directory)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides the config)")

	return cmd
}

// loadConfig loads path, or the config in the working directory, or the
// defaults when there is none.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if config.Exists(".") {
		return config.Load(".")
	}
	cfg := config.New()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
