package calendar

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dowjanes/coaching-dashboard/internal/models"
	"github.com/dowjanes/coaching-dashboard/pkg/retry"
)

func newTestCollector(config CollectorConfig) *Collector {
	return NewCollector(NewFilter("coaching"), retry.NewRetryer(nil, slog.Default()), config, slog.Default())
}

func event(id, title string, start time.Time) *models.CalendarEvent {
	return &models.CalendarEvent{
		ID:    id,
		Title: title,
		Start: models.EventTime{Time: start},
		End:   models.EventTime{Time: start.Add(30 * time.Minute)},
	}
}

func TestCollector_Collect(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	provider := NewMockProvider()
	provider.AddCalendar("work",
		event("w1", "Coaching: Strategy Session", day.Add(9*time.Hour)),
		event("w2", "Team Standup", day.Add(10*time.Hour)),
		event("w3", "Weekly coaching", day.Add(11*time.Hour)),
	)
	provider.AddCalendar("personal",
		event("p1", "Coaching intro", day.Add(8*time.Hour)),
	)

	collector := newTestCollector(CollectorConfig{MaxConcurrentCalendars: 2})
	events, err := collector.Collect(context.Background(), provider, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	want := []string{"w1", "w3", "p1"}
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(events))
	}
	for i, id := range want {
		if events[i].ID != id {
			t.Errorf("events[%d].ID = %s, want %s", i, events[i].ID, id)
		}
	}

	if events[2].CalendarName != "personal" {
		t.Errorf("Expected calendar name 'personal', got '%s'", events[2].CalendarName)
	}
}

func TestCollector_LeavesProviderEventsUntouched(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	original := event("w1", "Coaching: Strategy Session", day.Add(9*time.Hour))
	named := event("w2", "Coaching review", day.Add(10*time.Hour))
	named.CalendarName = "Shared"

	provider := NewMockProvider()
	provider.AddCalendar("work", original, named)

	collector := newTestCollector(CollectorConfig{MaxConcurrentCalendars: 1})
	for range 2 {
		events, err := collector.Collect(context.Background(), provider, day, day.Add(24*time.Hour))
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(events))
		}
		if events[0] == original || events[0].CalendarName != "work" {
			t.Errorf("Expected a labeled copy, got %+v", events[0])
		}
		if events[1].CalendarName != "Shared" {
			t.Errorf("Expected existing calendar name kept, got %q", events[1].CalendarName)
		}
	}

	if original.CalendarName != "" {
		t.Errorf("Expected provider event to stay unlabeled, got %q", original.CalendarName)
	}
	if provider.events["work"][0] != original {
		t.Error("Expected provider slice to be left as is")
	}
}

func TestCollector_CalendarFailureIsIsolated(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	provider := NewMockProvider()
	provider.AddCalendar("broken")
	provider.eventErrs["broken"] = retry.NewHTTPError(401, "Unauthorized", "http://calendar.test")
	provider.AddCalendar("healthy",
		event("h1", "Coaching A", day.Add(9*time.Hour)),
		event("h2", "Coaching B", day.Add(10*time.Hour)),
	)

	collector := newTestCollector(CollectorConfig{MaxConcurrentCalendars: 4})
	events, err := collector.Collect(context.Background(), provider, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Expected calendar failure to be tolerated, got %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events from the healthy calendar, got %d", len(events))
	}
	if events[0].ID != "h1" || events[1].ID != "h2" {
		t.Errorf("Unexpected events %s, %s", events[0].ID, events[1].ID)
	}
}

func TestCollector_CalendarListFailure(t *testing.T) {
	provider := NewMockProvider()
	provider.calendarsErr = errors.New("unauthorized")

	collector := newTestCollector(CollectorConfig{})
	events, err := collector.Collect(context.Background(), provider, time.Now(), time.Now().Add(time.Hour))
	if err == nil {
		t.Fatal("Expected error when the calendar list fails")
	}
	if events != nil {
		t.Errorf("Expected no events, got %d", len(events))
	}
	if provider.EventCalls() != 0 {
		t.Errorf("Expected no event fetches, got %d", provider.EventCalls())
	}
}

func TestCollector_OrderIndependentOfCompletion(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	provider := NewMockProvider()
	provider.AddCalendar("slow", event("s1", "Coaching slow", day.Add(9*time.Hour)))
	provider.AddCalendar("fast", event("f1", "Coaching fast", day.Add(8*time.Hour)))
	provider.delays["slow"] = 30 * time.Millisecond

	collector := newTestCollector(CollectorConfig{MaxConcurrentCalendars: 2})
	events, err := collector.Collect(context.Background(), provider, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(events) != 2 || events[0].ID != "s1" || events[1].ID != "f1" {
		t.Errorf("Expected calendar enumeration order [s1 f1], got %v", ids(events))
	}
}

func TestCollector_TimeoutDegradesCalendar(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	provider := NewMockProvider()
	provider.AddCalendar("hung", event("x1", "Coaching", day.Add(9*time.Hour)))
	provider.delays["hung"] = time.Second
	provider.AddCalendar("ok", event("o1", "Coaching", day.Add(9*time.Hour)))

	collector := newTestCollector(CollectorConfig{MaxConcurrentCalendars: 2, Timeout: 20 * time.Millisecond})
	events, err := collector.Collect(context.Background(), provider, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(events) != 1 || events[0].ID != "o1" {
		t.Errorf("Expected only the responsive calendar, got %v", ids(events))
	}
}

func ids(events []*models.CalendarEvent) []string {
	var out []string
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}
