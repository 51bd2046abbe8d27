package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/spacehub/internal/accounts/store"
)

// HousekeepingService periodically clears expired one-time codes and voids
// invitations that were never accepted.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Metrics  *Metrics
	Now      Clock

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. Intervals of zero or
// less default to 10 minutes.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down, waiting for an in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one pass. Each step is independent; a failure in one
// doesn't stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := s.Now.Now()

	if n, err := s.Store.Accounts().ClearExpiredChallenges(ctx, now); err != nil {
		s.Logger.Error("failed to clear expired challenges", "error", err)
	} else {
		s.Metrics.cleared("challenge", n)
		s.Logger.Debug("cleared expired challenges", "count", n)
	}

	if n, err := s.Store.Accounts().ExpireInvitations(ctx, now); err != nil {
		s.Logger.Error("failed to expire invitations", "error", err)
	} else {
		s.Metrics.cleared("invitation", n)
		s.Logger.Debug("expired invitations", "count", n)
	}
}
