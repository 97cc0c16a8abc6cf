package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
)

// HousekeepingService periodically invalidates request tokens that were
// issued but never exchanged within the TTL. Tokens are never deleted.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Recorder Recorder
	Interval time.Duration
	TTL      time.Duration

	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping worker. A non-positive
// interval defaults to 1 hour and a non-positive TTL to 24 hours.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, ttl time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		TTL:      ttl,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "request_token_ttl", s.TTL)
}

// Stop blocks until any in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run once on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	n, err := s.Sweep(context.Background())
	if err != nil {
		s.Logger.Error("failed to invalidate stale request tokens", "error", err)
		return
	}
	s.Logger.Info("housekeeping cleanup completed", "invalidated_request_tokens", n)
}

// Sweep invalidates request tokens created more than TTL ago that are still
// live, authorized or not.
func (s *HousekeepingService) Sweep(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	n, err := s.Store.Tokens().InvalidateStaleRequestTokens(ctx, now.Add(-s.TTL), now)
	if err != nil {
		return 0, storageError("invalidate stale request tokens", err)
	}
	recorderOrNop(s.Recorder).StaleRequestTokens(n)
	return n, nil
}
