package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"smarta-financials/internal/config"
	"smarta-financials/internal/storage"
	"smarta-financials/pkg/logger"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  up       apply pending migrations (default)
  down     roll back the last migration
  status   print migration status`)
	os.Exit(2)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	if !cfg.Database.Enabled() {
		zapLogger.Fatal("DB_HOST is not set")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var migrate func(context.Context, *storage.PostgresStorage, *zap.Logger) error
	switch cmd {
	case "up":
		migrate = func(ctx context.Context, s *storage.PostgresStorage, l *zap.Logger) error {
			return storage.RunMigrations(ctx, s.DB(), l)
		}
	case "down":
		migrate = func(ctx context.Context, s *storage.PostgresStorage, l *zap.Logger) error {
			return storage.RollbackMigration(ctx, s.DB(), l)
		}
	case "status":
		migrate = func(ctx context.Context, s *storage.PostgresStorage, l *zap.Logger) error {
			return storage.Status(ctx, s.DB(), l)
		}
	default:
		usage()
	}

	ctx := context.Background()
	pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init PostgreSQL storage", zap.Error(err))
	}
	defer pgStorage.Close()

	if err := migrate(ctx, pgStorage, zapLogger); err != nil {
		zapLogger.Fatal("Migration failed", zap.String("command", cmd), zap.Error(err))
	}
}
