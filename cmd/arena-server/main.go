package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/api"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/config"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/constants"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/economy"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/logging"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/service"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/storage"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/version"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./arena_config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Fatal("Missing or invalid arena configuration", err, logging.Fields{"config_path": configPath})
	}
	if cfg.SessionSecret == "" {
		logging.Fatal("Required environment variable not set", nil, logging.Fields{"var": constants.EnvSessionSecret})
	}
	if cfg.LogLevel != "" {
		logging.SetLevel(cfg.LogLevel)
	}
	defer logging.Sync()

	if dir := filepath.Dir(cfg.DBPath); !strings.HasPrefix(cfg.DBPath, "file:") && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logging.Fatal("Failed to create database directory", err, logging.Fields{"dir": dir})
		}
	}
	db, err := storage.OpenAndMigrate(cfg.DBPath, cfg.Avatars)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}
	repo := storage.NewSQLiteRepository(db)

	ledger, err := economy.NewOutbox(repo)
	if err != nil {
		logging.Fatal("Failed to initialize outcome outbox", err, nil)
	}
	svc, err := service.NewBattleService(repo, repo, ledger, service.Options{
		Rules:           cfg.Rules,
		Tolerance:       cfg.Tolerance,
		Stake:           cfg.Stake,
		AIFallbackAfter: cfg.AIFallbackAfter,
	})
	if err != nil {
		logging.Fatal("Failed to initialize battle service", err, nil)
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewBattleHandler(svc), []byte(cfg.SessionSecret))
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logging.Info("Server started", logging.Fields{
			constants.LogFieldAddr: srv.Addr,
			"version":              version.Current().Version,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		return svc.RunQueueJanitor(ctx, cfg.JanitorInterval, cfg.QueueStaleAfter)
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		logging.Fatal("Server stopped with error", err, nil)
	}
	logging.Info("Server stopped", nil)
}
