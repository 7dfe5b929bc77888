package models

import (
	"strings"
	"time"
)

// EventTime is either a timed instant or an all-day date
type EventTime struct {
	Time   time.Time `json:"time"`
	AllDay bool      `json:"all_day,omitempty"`
}

// Attendee is a single invitee of a calendar event
type Attendee struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// CalendarEvent represents a calendar event as fetched from the provider.
// Events are never mutated after conversion.
type CalendarEvent struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Start        EventTime  `json:"start"`
	End          EventTime  `json:"end"`
	Attendees    []Attendee `json:"attendees,omitempty"`
	CalendarID   string     `json:"calendar_id"`
	CalendarName string     `json:"calendar_name,omitempty"`
}

// Mentions reports whether the title or the description contains keyword,
// ignoring case
func (e *CalendarEvent) Mentions(keyword string) bool {
	needle := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(e.Title), needle) ||
		strings.Contains(strings.ToLower(e.Description), needle)
}

// IsAllDay returns true if the event starts on a date rather than an instant
func (e *CalendarEvent) IsAllDay() bool {
	return e.Start.AllDay
}
