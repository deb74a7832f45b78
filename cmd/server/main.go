package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/logging"
	"github.com/benbeisheim/chess-backend/internal/server"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := config.NewViper()
	var configFile string

	cmd := &cobra.Command{
		Use:           "chess-server",
		Short:         "Serve chess games over HTTP and websockets",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("addr", ":3000", "listen address")
	flags.String("storage", storage.DriverMemory, fmt.Sprintf("storage driver %v", storage.Drivers))
	flags.String("log-level", "info", "log level")
	bindFlags(v, cmd, map[string]string{
		"http.addr":      "addr",
		"storage.driver": "storage",
		"log.level":      "log-level",
	})
	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func run(ctx context.Context, cfg config.Config) error {
	log, err := logging.New(cfg.Log.Level, cfg.Log.Pretty, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Error().Err(err).Msg("close storage")
		}
	}()

	hub := service.NewHub(log)
	gameManager := service.NewGameManager(repo, hub, log)
	gameService := service.NewGameService(gameManager)
	go gameManager.RunMatchmaking(ctx, cfg.Matchmaking.Interval)

	app := server.New(gameService, server.Options{
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Logger:      log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.HTTP.Addr).
			Str("storage", cfg.Storage.Driver).
			Msg("server listening")
		errCh <- app.Listen(cfg.HTTP.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
