package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// StaleCanceller cancels orders that are still pending at cutoff.
type StaleCanceller interface {
	CancelStale(ctx context.Context, cutoff time.Time) (int, error)
}

// Sweeper periodically cancels checkouts that were abandoned before payment.
type Sweeper struct {
	orders   StaleCanceller
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewSweeper(orders StaleCanceller, ttl, interval time.Duration, logger zerolog.Logger) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())

	return &Sweeper{
		orders:   orders,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		logger:   logger.With().Str("component", "order_sweeper").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Sweeper) Start() {
	s.logger.Info().Dur("ttl", s.ttl).Dur("interval", s.interval).Msg("starting stale order sweeper")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.Sweep(s.ctx)
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.Sweep(s.ctx)
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	s.logger.Info().Msg("stopping stale order sweeper")
	s.cancel()
	s.wg.Wait()
}

// Sweep runs one pass and returns how many orders were cancelled.
func (s *Sweeper) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.ttl)

	n, err := s.orders.CancelStale(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error().Err(err).Time("cutoff", cutoff).Msg("stale order sweep failed")
		}
		return n
	}
	if n > 0 {
		s.logger.Info().Int("cancelled", n).Time("cutoff", cutoff).Msg("cancelled stale pending orders")
	}
	return n
}
