// Package worker runs the background maintenance loop: expired password
// reset codes are cleared so stale codes cannot pile up in the table.
package worker

import (
	"context"
	"log/slog"
	"time"
)

type ResetCodeStore interface {
	SweepExpiredResetCodes(ctx context.Context) (int64, error)
}

// SweepObserver records one sweep; nil is fine.
type SweepObserver func(swept int64, err error)

type Config struct {
	Interval time.Duration
}

type Sweeper struct {
	cfg     Config
	store   ResetCodeStore
	log     *slog.Logger
	observe SweepObserver
}

func New(cfg Config, store ResetCodeStore, log *slog.Logger, observe SweepObserver) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}

	return &Sweeper{
		cfg:     cfg,
		store:   store,
		log:     log,
		observe: observe,
	}
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	// one pass right away so a restart doesn't wait a full interval
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper received shutdown signal")
			return nil

		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	swept, err := s.store.SweepExpiredResetCodes(ctx)

	if s.observe != nil {
		s.observe(swept, err)
	}

	if err != nil {
		s.log.ErrorContext(ctx, "sweep_failed", "err", err.Error())
		return
	}

	if swept > 0 {
		s.log.InfoContext(ctx, "reset_codes_swept", "count", swept)
	}
}
