package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCalendarEvent_Mentions(t *testing.T) {
	tests := []struct {
		name  string
		event CalendarEvent
		want  bool
	}{
		{"title match", CalendarEvent{Title: "Coaching: Strategy Session"}, true},
		{"title lower case", CalendarEvent{Title: "weekly coaching"}, true},
		{"description match", CalendarEvent{Title: "Sync", Description: "Monthly COACHING call"}, true},
		{"no match", CalendarEvent{Title: "Team Sync", Description: "agenda"}, false},
		{"empty fields", CalendarEvent{}, false},
		{"spacing variant does not match", CalendarEvent{Title: "Coach ing"}, false},
		{"hyphenated variant does not match", CalendarEvent{Title: "co-aching"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Mentions("coaching"); got != tt.want {
				t.Errorf("Mentions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalendarEvent_IsAllDay(t *testing.T) {
	timed := &CalendarEvent{Start: EventTime{Time: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}}
	if timed.IsAllDay() {
		t.Error("Expected timed event to not be all-day")
	}

	allDay := &CalendarEvent{Start: EventTime{Time: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), AllDay: true}}
	if !allDay.IsAllDay() {
		t.Error("Expected all-day event to be all-day")
	}
}

func TestContactRecord_Property(t *testing.T) {
	var missing *ContactRecord
	if got := missing.Property("firstname"); got != "" {
		t.Errorf("Expected empty property on nil record, got %q", got)
	}

	contact := &ContactRecord{ID: "1", Properties: map[string]string{"firstname": "Jane"}}
	if got := contact.Property("firstname"); got != "Jane" {
		t.Errorf("Expected 'Jane', got %q", got)
	}
	if got := contact.Property("lastname"); got != "" {
		t.Errorf("Expected empty lastname, got %q", got)
	}
}

func TestProgramFor(t *testing.T) {
	tests := []struct {
		name    string
		contact *ContactRecord
		want    string
	}{
		{"no contact", nil, ProgramLeadProspect},
		{"customer", &ContactRecord{Properties: map[string]string{"lifecyclestage": "customer"}}, ProgramActiveCustomer},
		{"lead", &ContactRecord{Properties: map[string]string{"lifecyclestage": "lead"}}, ProgramLeadProspect},
		{"case sensitive", &ContactRecord{Properties: map[string]string{"lifecyclestage": "Customer"}}, ProgramLeadProspect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgramFor(tt.contact); got != tt.want {
				t.Errorf("ProgramFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnrichedAppointment_JSONOmitsMissingContact(t *testing.T) {
	appointment := EnrichedAppointment{
		ID:       "evt-1",
		Programs: ProgramLeadProspect,
		Event:    &CalendarEvent{ID: "evt-1"},
	}

	data, err := json.Marshal(appointment)
	if err != nil {
		t.Fatalf("Failed to marshal appointment: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal appointment: %v", err)
	}

	if _, ok := decoded["crm_contact"]; ok {
		t.Error("Expected crm_contact to be omitted when no contact was found")
	}
	if decoded["programs"] != ProgramLeadProspect {
		t.Errorf("Expected programs %q, got %v", ProgramLeadProspect, decoded["programs"])
	}
}
