// Package scheduler keeps the board current by refreshing today's
// appointments on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dowjanes/coaching-dashboard/pkg/board"
)

// Refresher runs and commits one board refresh
type Refresher interface {
	Refresh(ctx context.Context, date time.Time, token string) (board.Snapshot, error)
	Location() *time.Location
}

// Config holds the scheduler configuration
type Config struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// DefaultConfig returns a default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 5 * time.Minute,
	}
}

// Scheduler polls the board for the current day
type Scheduler struct {
	config    *Config
	refresher Refresher
	token     string
	logger    *slog.Logger
	today     func(*time.Location) time.Time

	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	stats   Stats
}

// Stats holds counters about completed polls
type Stats struct {
	Polls      int       `json:"polls"`
	Failures   int       `json:"failures"`
	Superseded int       `json:"superseded"`
	LastRunID  string    `json:"last_run_id,omitempty"`
	LastPoll   time.Time `json:"last_poll"`
	IsRunning  bool      `json:"is_running"`
}

// New creates a scheduler. token is the calendar access token used for
// every poll.
func New(config *Config, refresher Refresher, token string, logger *slog.Logger) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		config:    config,
		refresher: refresher,
		token:     token,
		logger:    logger,
		today:     board.Today,
	}
}

// Start begins polling. The first poll runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.logger.Info("Starting board scheduler", "poll_interval", s.config.PollInterval)

	s.wg.Add(1)
	go s.poll()

	return nil
}

// Stop cancels polling and waits for an in-flight refresh to return
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("Board scheduler stopped")
	return nil
}

func (s *Scheduler) poll() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	s.refreshToday()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.refreshToday()
		}
	}
}

// refreshToday recomputes the current day so the board rolls over at
// midnight
func (s *Scheduler) refreshToday() {
	date := s.today(s.refresher.Location())
	s.logger.Debug("Polling board", "date", date.Format(time.DateOnly))

	snapshot, err := s.refresher.Refresh(s.ctx, date, s.token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Polls++
	s.stats.LastPoll = time.Now()

	switch {
	case errors.Is(err, board.ErrSuperseded):
		s.stats.Superseded++
	case err != nil:
		s.stats.Failures++
		s.stats.LastRunID = snapshot.RunID
		if s.ctx.Err() == nil {
			s.logger.Warn("Scheduled refresh failed", "error", err)
		}
	default:
		s.stats.LastRunID = snapshot.RunID
	}
}

// GetStats returns scheduler statistics
func (s *Scheduler) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.stats
	stats.IsRunning = s.running
	return stats
}
