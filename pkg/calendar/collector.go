package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dowjanes/coaching-dashboard/internal/models"
	"github.com/dowjanes/coaching-dashboard/pkg/retry"
)

// CollectorConfig bounds the calls a Collector makes against a provider
type CollectorConfig struct {
	MaxConcurrentCalendars int
	Timeout                time.Duration
}

// Collector fetches and filters events across all of a user's calendars
type Collector struct {
	filter      *Filter
	coordinator *EventCoordinator
	retryer     *retry.Retryer
	config      CollectorConfig
	logger      *slog.Logger
}

// NewCollector creates a new Collector
func NewCollector(filter *Filter, retryer *retry.Retryer, config CollectorConfig, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	if retryer == nil {
		retryer = retry.NewRetryer(nil, logger)
	}
	if config.MaxConcurrentCalendars <= 0 {
		config.MaxConcurrentCalendars = 1
	}

	return &Collector{
		filter:      filter,
		coordinator: NewEventCoordinator(logger),
		retryer:     retryer,
		config:      config,
		logger:      logger,
	}
}

// ListCalendars returns the calendars visible through provider
func (c *Collector) ListCalendars(ctx context.Context, provider Provider) ([]*Calendar, error) {
	calendars, err := retry.DoWithResult(ctx, c.retryer, func(ctx context.Context) ([]*Calendar, error) {
		callCtx, cancel := c.callContext(ctx)
		defer cancel()
		return provider.Calendars(callCtx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	return calendars, nil
}

// Collect returns the filtered events of every calendar overlapping
// [from, to]. Calendars keep their enumeration order and each calendar keeps
// its own start-time order. A calendar whose events cannot be fetched
// contributes nothing; only a failure to list calendars is returned.
func (c *Collector) Collect(ctx context.Context, provider Provider, from, to time.Time) ([]*models.CalendarEvent, error) {
	calendars, err := c.ListCalendars(ctx, provider)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetching events from all calendars",
		"calendar_count", len(calendars),
		"from", from.Format(time.RFC3339),
		"to", to.Format(time.RFC3339))

	perCalendar := make([][]*models.CalendarEvent, len(calendars))

	var g errgroup.Group
	g.SetLimit(c.config.MaxConcurrentCalendars)

	for i, cal := range calendars {
		if cal == nil {
			continue
		}
		g.Go(func() error {
			events, err := retry.DoWithResult(ctx, c.retryer, func(ctx context.Context) ([]*models.CalendarEvent, error) {
				callCtx, cancel := c.callContext(ctx)
				defer cancel()
				return provider.Events(callCtx, cal.ID, from, to)
			})
			if err != nil {
				c.logger.Warn("Failed to get events from calendar",
					"calendar_id", cal.ID,
					"calendar_name", cal.Name,
					"error", err)
				return nil
			}

			// Label copies; the provider may hand out events it still owns
			labeled := make([]*models.CalendarEvent, len(events))
			for j, event := range events {
				if event != nil && event.CalendarName == "" {
					copied := *event
					copied.CalendarName = cal.Label()
					event = &copied
				}
				labeled[j] = event
			}

			kept := c.filter.Apply(labeled)
			c.logger.Debug("Fetched events from calendar",
				"calendar_id", cal.ID,
				"event_count", len(events),
				"kept_count", len(kept))

			perCalendar[i] = kept
			return nil
		})
	}

	// Every task returns nil so Wait only acts as a barrier
	_ = g.Wait()

	return c.coordinator.CoordinateEvents(perCalendar), nil
}

func (c *Collector) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.Timeout > 0 {
		return context.WithTimeout(ctx, c.config.Timeout)
	}
	return context.WithCancel(ctx)
}
