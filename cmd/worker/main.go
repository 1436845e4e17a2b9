package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mohamedhany/eshop-api/internal/config"
	"github.com/mohamedhany/eshop-api/internal/observability"
	"github.com/mohamedhany/eshop-api/internal/repo/postgres"
	"github.com/mohamedhany/eshop-api/internal/worker"
)

func main() {
	cfg := config.Load()

	slogger := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBURL)

	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	defer pool.Close()

	usersRepo := postgres.NewUsersRepo(pool)

	metrics := observability.NewProm(prometheus.DefaultRegisterer)

	s := worker.New(worker.Config{
		Interval: cfg.SweepInterval,
	}, usersRepo, slogger, metrics.ObserveSweep)

	slogger.Info("sweeper has started", "interval", cfg.SweepInterval.String())

	if err := s.Run(ctx); err != nil {
		slogger.Error("sweeper stopped with error", "err", err.Error())
	}

	slogger.Info("sweeper shutdown complete")
}
