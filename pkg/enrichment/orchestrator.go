// Package enrichment runs the daily appointment pipeline: collect coaching
// events, resolve who is in them, look up the client and write a briefing.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dowjanes/coaching-dashboard/internal/models"
	"github.com/dowjanes/coaching-dashboard/pkg/briefing"
	"github.com/dowjanes/coaching-dashboard/pkg/calendar"
	"github.com/dowjanes/coaching-dashboard/pkg/identity"
)

const (
	defaultFocus = "Coaching Session"
	clockFormat  = "3:04 PM"
)

// ErrFetchCalendars is returned when the user's calendars cannot be listed.
// It is the only error a run reports.
var ErrFetchCalendars = errors.New("failed to fetch calendars")

// ContactLookup finds the CRM record for an email. Implementations return
// nil for every kind of miss or failure.
type ContactLookup interface {
	Lookup(ctx context.Context, email string) *models.ContactRecord
}

// Orchestrator wires the pipeline stages together
type Orchestrator struct {
	providers calendar.ProviderFactory
	collector *calendar.Collector
	resolver  *identity.Resolver
	contacts  ContactLookup
	briefer   *briefing.Synthesizer
	location  *time.Location
	logger    *slog.Logger
}

// Options holds the pipeline stages
type Options struct {
	Providers calendar.ProviderFactory
	Collector *calendar.Collector
	Resolver  *identity.Resolver
	Contacts  ContactLookup
	Briefer   *briefing.Synthesizer
	// Location defines day boundaries and rendered times
	Location *time.Location
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	return &Orchestrator{
		providers: opts.Providers,
		collector: opts.Collector,
		resolver:  opts.Resolver,
		contacts:  opts.Contacts,
		briefer:   opts.Briefer,
		location:  opts.Location,
		logger:    logger,
	}
}

// Location returns the zone the orchestrator works in
func (o *Orchestrator) Location() *time.Location {
	return o.location
}

// DayWindow returns the first and last millisecond of date's day in loc
func DayWindow(date time.Time, loc *time.Location) (time.Time, time.Time) {
	date = date.In(loc)
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// Run produces the enriched appointments for date using the calendar access
// token. The result follows calendar enumeration order, each calendar in
// start-time order. Only a failure to list calendars fails the run; every
// other problem degrades the affected calendar or appointment.
func (o *Orchestrator) Run(ctx context.Context, date time.Time, token string) ([]*models.EnrichedAppointment, error) {
	from, to := DayWindow(date, o.location)

	provider, err := o.providers.NewProvider(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchCalendars, err)
	}

	events, err := o.collector.Collect(ctx, provider, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchCalendars, err)
	}

	o.logger.Info("Found coaching events",
		"date", from.Format(time.DateOnly),
		"count", len(events))

	appointments := make([]*models.EnrichedAppointment, len(events))

	var g errgroup.Group
	for i, event := range events {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					o.logger.Error("Enrichment panicked",
						"event_id", event.ID,
						"panic", r)
					appointments[i] = o.assemble(event, identity.UnknownCoach, identity.Client{Name: identity.UnknownClient}, nil)
				}
			}()
			appointments[i] = o.enrich(ctx, event)
			return nil
		})
	}

	// Tasks never return errors, so Wait is only the barrier
	_ = g.Wait()

	return appointments, nil
}

func (o *Orchestrator) enrich(ctx context.Context, event *models.CalendarEvent) *models.EnrichedAppointment {
	coach, client := o.resolver.Resolve(event)

	var contact *models.ContactRecord
	if client.Email != "" && o.contacts != nil {
		contact = o.contacts.Lookup(ctx, client.Email)
	}

	return o.assemble(event, coach, client, contact)
}

func (o *Orchestrator) assemble(event *models.CalendarEvent, coach string, client identity.Client, contact *models.ContactRecord) *models.EnrichedAppointment {
	focus := event.Title
	if focus == "" {
		focus = defaultFocus
	}

	return &models.EnrichedAppointment{
		ID:       event.ID,
		Time:     o.timeRange(event),
		Coach:    coach,
		Client:   client.Name,
		Email:    client.Email,
		Programs: models.ProgramFor(contact),
		Focus:    focus,
		Briefing: o.briefer.Synthesize(contact, event),
		Contact:  contact,
		Event:    event,
	}
}

// timeRange renders "9:00 AM - 9:30 AM" in the orchestrator's zone
func (o *Orchestrator) timeRange(event *models.CalendarEvent) string {
	return event.Start.Time.In(o.location).Format(clockFormat) +
		" - " +
		event.End.Time.In(o.location).Format(clockFormat)
}
