package google

import (
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/dowjanes/coaching-dashboard/internal/models"
)

// convertEvent converts a Google Calendar event to our internal model
func convertEvent(item *calendar.Event, calendarID string, loc *time.Location) (*models.CalendarEvent, error) {
	if item == nil {
		return nil, fmt.Errorf("event is nil")
	}

	start, err := parseEventTime(item.Start, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start time: %w", err)
	}

	end, err := parseEventTime(item.End, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse end time: %w", err)
	}

	return &models.CalendarEvent{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
		Attendees:   convertAttendees(item.Attendees),
		CalendarID:  calendarID,
	}, nil
}

// parseEventTime parses Google Calendar event time (handles both dateTime and date fields).
// All-day dates are anchored at midnight in loc.
func parseEventTime(eventTime *calendar.EventDateTime, loc *time.Location) (models.EventTime, error) {
	if eventTime == nil {
		return models.EventTime{}, fmt.Errorf("event time is nil")
	}

	if eventTime.DateTime != "" {
		t, err := time.Parse(time.RFC3339, eventTime.DateTime)
		if err != nil {
			return models.EventTime{}, fmt.Errorf("failed to parse datetime: %w", err)
		}
		return models.EventTime{Time: t}, nil
	}

	if eventTime.Date != "" {
		if loc == nil {
			loc = time.Local
		}
		t, err := time.ParseInLocation("2006-01-02", eventTime.Date, loc)
		if err != nil {
			return models.EventTime{}, fmt.Errorf("failed to parse date: %w", err)
		}
		return models.EventTime{Time: t, AllDay: true}, nil
	}

	return models.EventTime{}, fmt.Errorf("no datetime or date field found")
}

// convertAttendees keeps list order. Attendees without an email stay in so
// their display name can still name the client.
func convertAttendees(attendees []*calendar.EventAttendee) []models.Attendee {
	var out []models.Attendee
	for _, attendee := range attendees {
		if attendee == nil {
			continue
		}
		out = append(out, models.Attendee{
			Email:       attendee.Email,
			DisplayName: attendee.DisplayName,
		})
	}
	return out
}
