package service

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper is anything with periodic garbage to collect. The in-memory
// login state store implements it; the Redis store does not need to.
type Sweeper interface {
	Sweep(ctx context.Context) int
}

// HousekeepingService periodically sweeps expired login states so
// abandoned login attempts don't accumulate in memory.
type HousekeepingService struct {
	Sweeper  Sweeper
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewHousekeepingService(sweeper Sweeper, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &HousekeepingService{
		Sweeper:  sweeper,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background sweep loop. Non-blocking; pair with
// Stop on shutdown.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop shuts the loop down and waits for any in-progress sweep.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.Sweeper == nil {
				continue
			}
			if removed := s.Sweeper.Sweep(context.Background()); removed > 0 {
				s.Logger.Debug("swept expired login states", "removed", removed)
			}
		case <-s.stopCh:
			return
		}
	}
}
