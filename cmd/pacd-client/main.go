// Command pacd-client connects to a pacd-server game session and plays it,
// either interactively via the keyboard or by replaying a commands file
// (client_main.c's file-driven input mode).
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/pacd/pacd/internal/client"
	"github.com/pacd/pacd/internal/client/ui"
	"github.com/pacd/pacd/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config/pacd-client.yaml"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "pacd-client",
		Short: "Connect to a pacd-server game session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", defaultConfigPath, "path to client config YAML")

	if err := root.Execute(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	path := configPath
	if p := os.Getenv("PACD_CLIENT_CONFIG"); p != "" {
		path = p
	}

	cfg, err := config.LoadClient(path)
	if err != nil {
		return fmt.Errorf("loading client config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	sess, err := client.Dial(cfg.ServerAddress, cfg.DialTimeout)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.ServerAddress, err)
	}

	render, err := ui.NewRenderer()
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer render.Close()

	var tempo atomic.Int32
	tempo.Store(200)

	var source ui.CommandSource
	if cfg.CommandsFile != "" {
		fs, err := ui.NewFileSource(cfg.CommandsFile, &tempo)
		if err != nil {
			return fmt.Errorf("opening commands file: %w", err)
		}
		defer fs.Close()
		source = fs
	} else {
		source = ui.NewKeyboardSource(render)
	}

	err = ui.Run(sess, source, render, &tempo)
	if derr := sess.Disconnect(); derr != nil {
		slog.Warn("disconnect failed", "err", derr)
	}
	if err != nil && !errors.Is(err, ui.ErrQuit) {
		return fmt.Errorf("session ended: %w", err)
	}
	return nil
}

// parseLogLevel converts a string log level to slog.Level, defaulting to
// info for an empty or unrecognized value.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
