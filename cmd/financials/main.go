package main

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
	"golang.org/x/sync/errgroup"

	"smarta-financials/internal/bot"
	"smarta-financials/internal/config"
	"smarta-financials/internal/httpapi"
	"smarta-financials/internal/service"
	"smarta-financials/internal/storage"
	reportcache "smarta-financials/internal/storage/redis"
	"smarta-financials/internal/variants"
	"smarta-financials/pkg/logger"
	"smarta-financials/pkg/redis"
)

// ENTRY POINT

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

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := run(ctx, cfg, zapLogger); err != nil {
		zapLogger.Fatal("Service stopped with error", zap.Error(err))
	}
	zapLogger.Info("Service shutdown gracefully")
}

func run(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) error {
	catalog, err := loadCatalog(cfg.VariantsFile)
	if err != nil {
		return err
	}
	zapLogger.Info("Variants loaded", zap.Strings("variants", catalog.Names()))

	var cache service.ReportCache
	if cfg.Redis.Enabled() {
		redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx); err != nil {
			zapLogger.Warn("Redis unavailable, report cache disabled", zap.Error(err))
		} else {
			cache = reportcache.NewReportCache(redisClient)
			zapLogger.Info("Report cache enabled", zap.Duration("ttl", cfg.Redis.TTL))
		}
	}

	var archive service.ReportArchive
	if cfg.Database.Enabled() {
		pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, zapLogger)
		if err != nil {
			return fmt.Errorf("init PostgreSQL storage: %w", err)
		}
		defer pgStorage.Close()

		if err := storage.RunMigrations(ctx, pgStorage.DB(), zapLogger); err != nil {
			return err
		}
		archive = pgStorage
	}

	dashboard := service.NewDashboard(catalog, cache, archive, zapLogger)

	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      httpapi.NewHandler(dashboard, zapLogger).Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	g.Go(func() error {
		zapLogger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Telegram.Token != "" {
		tgBot, err := bot.New(cfg.Telegram.Token, cfg.Telegram.Debug, dashboard, cfg.Bot.AdminIDs, zapLogger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return tgBot.Start(ctx)
		})
	} else {
		zapLogger.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	return g.Wait()
}

func loadCatalog(path string) (*variants.Catalog, error) {
	if path == "" {
		return variants.Default()
	}
	return variants.LoadFile(path)
}
