package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/dowjanes/coaching-dashboard/internal/models"
)

// MockProvider implements Provider for testing
type MockProvider struct {
	mu           sync.Mutex
	calendars    []*Calendar
	calendarsErr error
	events       map[string][]*models.CalendarEvent
	eventErrs    map[string]error
	delays       map[string]time.Duration
	eventCalls   []string
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		events:    make(map[string][]*models.CalendarEvent),
		eventErrs: make(map[string]error),
		delays:    make(map[string]time.Duration),
	}
}

func (m *MockProvider) Calendars(ctx context.Context) ([]*Calendar, error) {
	if m.calendarsErr != nil {
		return nil, m.calendarsErr
	}
	return m.calendars, nil
}

func (m *MockProvider) Events(ctx context.Context, calendarID string, from, to time.Time) ([]*models.CalendarEvent, error) {
	m.mu.Lock()
	m.eventCalls = append(m.eventCalls, calendarID)
	delay := m.delays[calendarID]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err := m.eventErrs[calendarID]; err != nil {
		return nil, err
	}
	return m.events[calendarID], nil
}

func (m *MockProvider) AddCalendar(id string, events ...*models.CalendarEvent) {
	m.calendars = append(m.calendars, &Calendar{ID: id, Name: id})
	m.events[id] = events
}

func (m *MockProvider) EventCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.eventCalls)
}
