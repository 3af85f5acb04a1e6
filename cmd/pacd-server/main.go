// Command pacd-server runs the game session server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pacd/pacd/internal/config"
	"github.com/pacd/pacd/internal/session"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config/pacd-server.yaml"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "pacd-server",
		Short: "Run the Pac-Man game session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", defaultConfigPath, "path to server config YAML")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	path := configPath
	if p := os.Getenv("PACD_SERVER_CONFIG"); p != "" {
		path = p
	}

	cfg, err := config.LoadServer(path)
	if err != nil {
		return fmt.Errorf("loading server config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("pacd-server starting",
		"bind_address", cfg.BindAddress,
		"port", cfg.Port,
		"max_games", cfg.MaxGames,
		"level_dir", cfg.LevelDir)

	srv := session.NewServer(cfg)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
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
