package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/sorteo-api/internal/api"
	"github.com/vietanh2810/sorteo-api/internal/config"
	"github.com/vietanh2810/sorteo-api/internal/db"
	"github.com/vietanh2810/sorteo-api/internal/logger"
)

const shutdownTimeout = 15 * time.Second

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := api.NewServer(conf, postgresDB)

	if err = s.Queue.Start(ctx); err != nil {
		return fmt.Errorf("failed to start the import queue -> %w", err)
	}
	defer func() {
		if err := s.Queue.Close(); err != nil {
			zap.L().Error("failed to close the import queue", zap.Error(err))
		}
	}()

	startup := *conf.Import
	conf.WatchImport(
		func(next config.ImportConfig) {
			if startup.NeedsRestart(next) {
				zap.L().Warn("import.workers and import.max_file_size need a restart to change",
					zap.Int("running_workers", startup.Workers),
					zap.Int("configured_workers", next.Workers),
					zap.Int64("running_max_file_size", startup.MaxFileSize),
					zap.Int64("configured_max_file_size", next.MaxFileSize),
				)
			}

			s.Pipeline.SetConfig(next)
			zap.L().Info("import config reloaded",
				zap.String("mode", next.Mode),
				zap.Int("sync_chunk_size", next.SyncChunkSize),
				zap.Int("async_chunk_size", next.AsyncChunkSize),
				zap.Int("error_limit", next.ErrorLimit),
			)
		},
		func(err error) {
			zap.L().Warn("ignoring config change", zap.Error(err))
		},
	)

	addr := ":" + s.Config.API.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down the server -> %w", err)
		}
	}

	return nil
}
