package token

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// SizeRecorder receives the cache occupancy after each sweep. A nil
// SizeRecorder disables reporting.
type SizeRecorder interface {
	UpdateTokenCacheSize(size int)
}

// Sweeper purges expired entries from the token cache on a cron schedule.
// With a 24-hour token lifetime the cache only grows between issuances for
// the same identity, so an hourly sweep keeps occupancy bounded without any
// effect on correctness: Get already refuses expired entries.
type Sweeper struct {
	cache    *Cache
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	metrics  SizeRecorder

	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper for the given cache.
// An empty schedule disables sweeping; Start then does nothing.
func NewSweeper(cache *Cache, schedule string, metrics SizeRecorder) *Sweeper {
	return &Sweeper{
		cache:    cache,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "token.sweeper"),
		metrics:  metrics,
	}
}

// Start begins scheduled sweeping based on the configured cron expression.
//
// Common expressions:
//   - "@hourly"     - every hour on the hour
//   - "0 */6 * * *" - every 6 hours
//
// Returns an error if the expression does not parse.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("sweep schedule not configured, skipping sweeper")
		return nil
	}
	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return fmt.Errorf("failed to schedule cache sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("token cache sweeper started", "schedule", s.schedule)
	return nil
}

// Stop halts scheduled sweeping. It waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false

	s.logger.Info("token cache sweeper stopped")
}

// sweep runs a single purge pass and reports the resulting occupancy.
func (s *Sweeper) sweep() {
	removed := s.cache.PurgeExpired()
	remaining := s.cache.Size()
	if s.metrics != nil {
		s.metrics.UpdateTokenCacheSize(remaining)
	}
	if removed > 0 {
		s.logger.Info("purged expired tokens",
			"removed", removed,
			"remaining", remaining,
		)
	}
}
