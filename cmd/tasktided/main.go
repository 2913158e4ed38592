package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tasktide/internal/daemon"
	"tasktide/internal/infrastructure/auth"
	"tasktide/internal/infrastructure/config"
	"tasktide/internal/infrastructure/persistence/sqlstore"
	"tasktide/internal/web"
)

var (
	configPath string
	issueToken bool
)

var rootCmd = &cobra.Command{
	Use:   "tasktided",
	Short: "TaskTide data service daemon",
	Long: `tasktided owns the board database. It serves the CLI and TUI over a unix
socket and, when web.enabled is set, the HTTP API with its websocket change
feed.

Examples:
  # Run in the foreground
  tasktided

  # Print a bearer token for the configured user
  tasktided --issue-token`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, loader, err := config.LoadFrom(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", loader.GetConfigPath(), err)
		}

		if issueToken {
			return printToken(cfg)
		}

		level := new(slog.LevelVar)
		level.Set(parseLevel(cfg.LogLevel))
		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return run(ctx, cfg, loader, level, log)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path")
	rootCmd.Flags().BoolVar(&issueToken, "issue-token", false, "Print a web API token for board.user_id and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, loader *config.Loader, level *slog.LevelVar, log *slog.Logger) error {
	store, err := sqlstore.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN, sqlstore.WithLogger(log))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	services := 1

	server := daemon.NewServer(store, cfg.SocketPath(), log)
	go func() {
		errCh <- server.Start(ctx)
	}()

	if cfg.Web.Enabled {
		tokens, err := auth.NewTokenService(cfg.Web.JWTSecret, auth.DefaultTTL)
		if err != nil {
			return fmt.Errorf("web api: %w", err)
		}
		router := web.NewRouter(log, store, tokens, web.RouterConfig{
			Columns:        cfg.Columns(),
			AllowedOrigins: cfg.Web.AllowedOrigins,
			Timeout:        cfg.WebRequestTimeout(),
		})
		services++
		go func() {
			errCh <- web.NewServer(cfg.Web.ListenAddr, router, log).Run(ctx)
		}()
	}

	go func() {
		err := loader.Watch(ctx, func(next *config.Config, err error) {
			if err != nil {
				log.Warn("config reload failed, keeping previous config", "error", err)
				return
			}
			level.Set(parseLevel(next.LogLevel))
			log.Info("config reloaded", "log_level", next.LogLevel)
		})
		if err != nil {
			log.Warn("config watch stopped", "error", err)
		}
	}()

	log.Info("tasktided started", "socket", cfg.SocketPath(), "web", cfg.Web.Enabled)

	var firstErr error
	for i := 0; i < services; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	log.Info("tasktided stopped")
	return firstErr
}

func printToken(cfg *config.Config) error {
	tokens, err := auth.NewTokenService(cfg.Web.JWTSecret, auth.DefaultTTL)
	if err != nil {
		return err
	}
	token, err := tokens.Issue(cfg.Board.UserID)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
