package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/dowjanes/coaching-dashboard/internal/models"
	calendarPkg "github.com/dowjanes/coaching-dashboard/pkg/calendar"
	"github.com/dowjanes/coaching-dashboard/pkg/retry"
)

// Options configures how providers reach the Calendar API
type Options struct {
	// Endpoint overrides the API base URL, mainly for tests
	Endpoint string
	// Location is the zone all-day dates are anchored in
	Location *time.Location
	// HTTPClient is the base transport the bearer token is layered on
	HTTPClient *http.Client
}

// Provider implements calendar.Provider for Google Calendar
type Provider struct {
	service  *calendar.Service
	location *time.Location
	logger   *slog.Logger
}

// NewProvider creates a Google Calendar provider authenticated with accessToken
func NewProvider(ctx context.Context, accessToken string, opts Options, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	serviceOpts := []option.ClientOption{
		option.WithHTTPClient(NewHTTPClient(ctx, accessToken, opts.HTTPClient)),
	}
	if opts.Endpoint != "" {
		serviceOpts = append(serviceOpts, option.WithEndpoint(opts.Endpoint))
	}

	service, err := calendar.NewService(ctx, serviceOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar client: %w", err)
	}

	return &Provider{
		service:  service,
		location: opts.Location,
		logger:   logger,
	}, nil
}

// Calendars returns every calendar in the user's calendar list
func (p *Provider) Calendars(ctx context.Context) ([]*calendarPkg.Calendar, error) {
	var calendars []*calendarPkg.Calendar

	err := p.service.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			calendars = append(calendars, &calendarPkg.Calendar{
				ID:          item.Id,
				Name:        item.Summary,
				Description: item.Description,
				TimeZone:    item.TimeZone,
				Primary:     item.Primary,
				AccessRole:  item.AccessRole,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", asHTTPError(err))
	}

	return calendars, nil
}

// Events returns single instances overlapping [from, to] ordered by start time
func (p *Provider) Events(ctx context.Context, calendarID string, from, to time.Time) ([]*models.CalendarEvent, error) {
	var events []*models.CalendarEvent

	call := p.service.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339Nano)).
		TimeMax(to.Format(time.RFC3339Nano)).
		SingleEvents(true).
		OrderBy("startTime")

	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			event, err := convertEvent(item, calendarID, p.location)
			if err != nil {
				p.logger.Warn("Skipping event that could not be converted",
					"calendar_id", calendarID,
					"event_id", item.Id,
					"error", err)
				continue
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events for calendar %s: %w", calendarID, asHTTPError(err))
	}

	return events, nil
}

// Factory builds providers for the tokens handed to the pipeline
type Factory struct {
	Options Options
	Logger  *slog.Logger
}

// NewProvider implements calendar.ProviderFactory
func (f *Factory) NewProvider(ctx context.Context, token string) (calendarPkg.Provider, error) {
	return NewProvider(ctx, token, f.Options, f.Logger)
}

// asHTTPError maps API errors onto retry.HTTPError so status-based retry
// rules apply to them
func asHTTPError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return &retry.HTTPError{
		StatusCode: apiErr.Code,
		Status:     http.StatusText(apiErr.Code),
		Body:       apiErr.Message,
	}
}
