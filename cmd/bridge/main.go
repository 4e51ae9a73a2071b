package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	clientcmd "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/cmd/client"
	serverrun "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/cmd/server"
	cfgpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/config"
	pebblestore "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/storage/pebble"
	logpkg "github.com/AndreVRibeiro/tinySSB-miniAppBundles/pkg/log"
)

func main() {
	// Respect BRIDGE_LOG_LEVEL for both CLI and server start output
	level := os.Getenv("BRIDGE_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	rootCmd := &cobra.Command{
		Use:          "bridge",
		Short:        "tinySSB frontend bridge",
		Long:         "bridge serves the tinySSB mini-app frontend over HTTP and gRPC and provides a small client for driving it.",
		SilenceUsage: true,
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the bridge (gRPC and HTTP)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			applyFlags(cmd, &cfg)

			mode, err := pebblestore.ParseFsync(cfg.Fsync)
			if err != nil {
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}
			procLogger, err := logpkg.ApplyConfig(&cfg.Log)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:    cfg.DataDir,
				GRPCAddr:   cfg.GRPCAddr,
				HTTPAddr:   cfg.HTTPAddr,
				PluginsDir: cfg.PluginsDir,
				Fsync:      mode,
				Config:     cfg,
				Logger:     procLogger,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	f := serverStartCmd.Flags()
	f.String("config", os.Getenv("BRIDGE_CONFIG"), "Config file (.toml or .json)")
	f.String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	f.String("plugins-dir", "", "Mini-app bundle directory (default: embedded bundles)")
	f.String("grpc", "", "gRPC listen address (default :50051)")
	f.String("http", "", "HTTP listen address (default :8080)")
	f.String("fsync", "", "Fsync mode: always|interval|never")
	f.String("log-level", "", "Log level: debug|info|warn|error")
	f.String("log-format", "", "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	clientcmd.AddCommands(rootCmd, apiURL)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", logpkg.Err(err))
		os.Exit(1)
	}
}

// applyFlags overlays explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *cfgpkg.Config) {
	set := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	set("data-dir", &cfg.DataDir)
	set("plugins-dir", &cfg.PluginsDir)
	set("grpc", &cfg.GRPCAddr)
	set("http", &cfg.HTTPAddr)
	set("fsync", &cfg.Fsync)
	set("log-level", &cfg.Log.Level)
	set("log-format", &cfg.Log.Format)
}

func apiURL() string {
	if v := os.Getenv("BRIDGE_HTTP_URL"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
