// Package board holds the live appointment list for a day and makes sure a
// slow, superseded refresh never overwrites a newer one.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dowjanes/coaching-dashboard/internal/models"
)

// FailureMessage is shown when a refresh fails as a whole
const FailureMessage = "Failed to load calendar events. Please try again."

// ErrSuperseded is returned by Refresh when a newer refresh started before
// this one finished. Its results are discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer run")

// Runner produces the appointments for a day
type Runner interface {
	Run(ctx context.Context, date time.Time, token string) ([]*models.EnrichedAppointment, error)
}

// Snapshot is the board state handed to readers
type Snapshot struct {
	RunID        string                        `json:"run_id"`
	Generation   uint64                        `json:"generation"`
	Date         string                        `json:"date"`
	Loading      bool                          `json:"loading"`
	Error        string                        `json:"error,omitempty"`
	Appointments []*models.EnrichedAppointment `json:"appointments"`
	StartedAt    time.Time                     `json:"started_at"`
	CompletedAt  time.Time                     `json:"completed_at"`
}

// CommitHook observes every committed snapshot. runErr is the pipeline
// error behind a failed snapshot.
type CommitHook func(ctx context.Context, snapshot Snapshot, runErr error)

// Board owns the current snapshot
type Board struct {
	runner   Runner
	location *time.Location
	logger   *slog.Logger
	newRunID func() string

	mu         sync.RWMutex
	generation uint64
	current    Snapshot
	hooks      []CommitHook
}

// New creates an empty board
func New(runner Runner, loc *time.Location, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Board{
		runner:   runner,
		location: loc,
		logger:   logger,
		newRunID: uuid.NewString,
		current:  Snapshot{Appointments: []*models.EnrichedAppointment{}},
	}
}

// OnCommit registers a hook called after each commit, outside the lock
func (b *Board) OnCommit(hook CommitHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks = append(b.hooks, hook)
}

// Location returns the zone dates are interpreted in
func (b *Board) Location() *time.Location {
	return b.location
}

// Snapshot returns a copy of the current state
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current.clone()
}

// Refresh runs the pipeline for date and commits the result unless another
// refresh has started in the meantime. A failed run commits an empty list
// with FailureMessage and returns the run error. A run whose ctx is done by
// the time it returns commits nothing.
func (b *Board) Refresh(ctx context.Context, date time.Time, token string) (Snapshot, error) {
	started := time.Now()

	b.mu.Lock()
	b.generation++
	generation := b.generation
	runID := b.newRunID()
	b.current.Loading = true
	b.mu.Unlock()

	logger := b.logger.With("run_id", runID, "generation", generation)
	logger.Debug("Refresh started", "date", date.In(b.location).Format(time.DateOnly))

	appointments, runErr := b.runner.Run(ctx, date, token)

	// A cancelled run leaves the last committed results in place
	if ctx.Err() != nil {
		b.mu.Lock()
		if generation == b.generation {
			b.current.Loading = false
		}
		b.mu.Unlock()
		logger.Info("Discarding cancelled refresh", "error", runErr)
		return Snapshot{}, fmt.Errorf("refresh cancelled: %w", ctx.Err())
	}

	snapshot := Snapshot{
		RunID:        runID,
		Generation:   generation,
		Date:         date.In(b.location).Format(time.DateOnly),
		Appointments: appointments,
		StartedAt:    started,
		CompletedAt:  time.Now(),
	}
	if runErr != nil {
		snapshot.Error = FailureMessage
		snapshot.Appointments = nil
	}
	if snapshot.Appointments == nil {
		snapshot.Appointments = []*models.EnrichedAppointment{}
	}

	b.mu.Lock()
	if generation != b.generation {
		current := b.generation
		b.mu.Unlock()
		logger.Info("Discarding superseded refresh",
			"current_generation", current,
			"appointments", len(appointments),
			"error", runErr)
		return Snapshot{}, ErrSuperseded
	}
	b.current = snapshot
	hooks := make([]CommitHook, len(b.hooks))
	copy(hooks, b.hooks)
	b.mu.Unlock()

	if runErr != nil {
		logger.Error("Refresh failed", "error", runErr)
	} else {
		logger.Info("Refresh committed",
			"date", snapshot.Date,
			"appointments", len(snapshot.Appointments),
			"duration", snapshot.CompletedAt.Sub(started))
	}

	for _, hook := range hooks {
		hook(ctx, snapshot.clone(), runErr)
	}

	return snapshot.clone(), runErr
}

func (s Snapshot) clone() Snapshot {
	appointments := make([]*models.EnrichedAppointment, len(s.Appointments))
	copy(appointments, s.Appointments)
	s.Appointments = appointments
	return s
}
