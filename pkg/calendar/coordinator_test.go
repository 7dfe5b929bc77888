package calendar

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/dowjanes/coaching-dashboard/internal/models"
)

func TestEventCoordinatorBasicFunctionality(t *testing.T) {
	coordinator := NewEventCoordinator(nil)

	if coordinator == nil {
		t.Fatal("Expected coordinator to be created")
	}
	if coordinator.logger == nil {
		t.Error("Expected default logger to be set")
	}
	if got := coordinator.CoordinateEvents(nil); len(got) != 0 {
		t.Errorf("Expected no events, got %d", len(got))
	}
}

func TestCoordinateEvents(t *testing.T) {
	tests := []struct {
		name        string
		perCalendar [][]*models.CalendarEvent
		want        []string
	}{
		{
			name: "concatenates in calendar order",
			perCalendar: [][]*models.CalendarEvent{
				{{ID: "b"}, {ID: "a"}},
				{{ID: "c"}},
			},
			want: []string{"b", "a", "c"},
		},
		{
			name: "keeps first occurrence of shared event",
			perCalendar: [][]*models.CalendarEvent{
				{{ID: "shared", CalendarID: "work"}},
				{{ID: "other"}, {ID: "shared", CalendarID: "team"}},
			},
			want: []string{"shared", "other"},
		},
		{
			name: "skips nil entries and failed calendars",
			perCalendar: [][]*models.CalendarEvent{
				nil,
				{nil, {ID: "x"}},
			},
			want: []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coordinator := NewEventCoordinator(slog.Default())
			got := coordinator.CoordinateEvents(tt.perCalendar)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d events, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}

	t.Run("first occurrence keeps its calendar", func(t *testing.T) {
		coordinator := NewEventCoordinator(slog.Default())
		got := coordinator.CoordinateEvents([][]*models.CalendarEvent{
			{{ID: "shared", CalendarID: "work"}},
			{{ID: "shared", CalendarID: "team"}},
		})
		if got[0].CalendarID != "work" {
			t.Errorf("Expected event from 'work', got '%s'", got[0].CalendarID)
		}
	})
}

func TestCoordinateEvents_GeneratesMissingIDs(t *testing.T) {
	coordinator := NewEventCoordinator(slog.Default())
	n := 0
	coordinator.newID = func() string {
		n++
		return fmt.Sprintf("generated-%d", n)
	}

	original := &models.CalendarEvent{Title: "Coaching"}
	got := coordinator.CoordinateEvents([][]*models.CalendarEvent{
		{original, {Title: "Coaching again"}},
	})

	if len(got) != 2 {
		t.Fatalf("Expected events without IDs to be kept apart, got %d", len(got))
	}
	if got[0].ID != "generated-1" || got[1].ID != "generated-2" {
		t.Errorf("Unexpected generated IDs %s, %s", got[0].ID, got[1].ID)
	}
	if original.ID != "" {
		t.Error("Expected the fetched event to be left untouched")
	}
}
