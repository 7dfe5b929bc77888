package calendar

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/dowjanes/coaching-dashboard/internal/models"
)

// EventCoordinator merges per-calendar event lists into a single ordered list
type EventCoordinator struct {
	logger *slog.Logger
	newID  func() string
}

// NewEventCoordinator creates a new event coordinator
func NewEventCoordinator(logger *slog.Logger) *EventCoordinator {
	if logger == nil {
		logger = slog.Default()
	}

	return &EventCoordinator{
		logger: logger,
		newID:  uuid.NewString,
	}
}

// CoordinateEvents concatenates the lists in calendar enumeration order and
// drops repeated event IDs, keeping the first occurrence. The same meeting
// shared between two of the user's calendars carries the same ID on both.
// Events without an ID get a generated one so they are never collapsed.
func (c *EventCoordinator) CoordinateEvents(perCalendar [][]*models.CalendarEvent) []*models.CalendarEvent {
	var coordinated []*models.CalendarEvent
	processed := make(map[string]bool)
	total := 0

	for _, events := range perCalendar {
		for _, event := range events {
			if event == nil {
				continue
			}
			total++

			if event.ID == "" {
				assigned := *event
				assigned.ID = c.newID()
				event = &assigned
			}

			if processed[event.ID] {
				c.logger.Debug("Dropping duplicate event",
					"event_id", event.ID,
					"calendar_id", event.CalendarID)
				continue
			}
			processed[event.ID] = true
			coordinated = append(coordinated, event)
		}
	}

	if total != len(coordinated) {
		c.logger.Debug("Event coordination complete",
			"input_count", total,
			"output_count", len(coordinated),
			"duplicates_removed", total-len(coordinated))
	}

	return coordinated
}
