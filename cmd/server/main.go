package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gleber2006-sketch/machlog/internal/config"
	internalhttp "github.com/gleber2006-sketch/machlog/internal/http"
	"github.com/gleber2006-sketch/machlog/internal/jobs"
	"github.com/gleber2006-sketch/machlog/internal/repository"
	"github.com/gleber2006-sketch/machlog/internal/seed"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := repository.NewStore(pool)
	if err := store.Migrate(ctx); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if err := seed.Apply(ctx, store, cfg.QuestionSeedPath); err != nil {
		logger.Error("question seed failed", "error", err)
		os.Exit(1)
	}

	var locks *redis.Client
	if cfg.RedisAddr != "" {
		locks = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := locks.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, submission locks disabled", "error", err)
			locks = nil
		}
		if locks != nil {
			defer locks.Close()
		}
	}

	jobs.StartSessionCleanupJob(ctx, cfg, store, logger)

	server := internalhttp.NewServer(cfg, store, locks, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("machlog listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
