package calendar

import (
	"context"
	"time"

	"github.com/dowjanes/coaching-dashboard/internal/models"
)

// Provider defines the read capabilities the pipeline needs from a calendar backend
type Provider interface {
	// Calendars returns every calendar visible to the authenticated user,
	// in the backend's enumeration order
	Calendars(ctx context.Context) ([]*Calendar, error)

	// Events returns single instances of events on calendarID overlapping
	// [from, to], ordered by start time
	Events(ctx context.Context, calendarID string, from, to time.Time) ([]*models.CalendarEvent, error)
}

// ProviderFactory builds a Provider bound to an opaque bearer token
type ProviderFactory interface {
	NewProvider(ctx context.Context, token string) (Provider, error)
}
