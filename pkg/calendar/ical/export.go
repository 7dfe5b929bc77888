package ical

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/dowjanes/coaching-dashboard/internal/models"
)

const productName = "Dow Janes Coaching Dashboard"

// ExportOptions controls calendar-level properties of an export
type ExportOptions struct {
	Name     string
	Location *time.Location
	// Stamp is written as DTSTAMP on every event; zero means now
	Stamp time.Time
}

// Export builds a VCALENDAR holding one VEVENT per appointment. Appointments
// without their source event are skipped since they carry no times.
func Export(appointments []*models.EnrichedAppointment, opts ExportOptions) *ics.Calendar {
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ics.NewCalendarFor(productName)
	cal.SetMethod(ics.MethodPublish)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	if opts.Location != nil {
		cal.SetXWRTimezone(opts.Location.String())
	}

	for _, appointment := range appointments {
		if appointment == nil || appointment.Event == nil {
			continue
		}
		addAppointment(cal, appointment, opts.Stamp)
	}

	return cal
}

// Write serializes the export of appointments to w
func Write(w io.Writer, appointments []*models.EnrichedAppointment, opts ExportOptions) error {
	cal := Export(appointments, opts)
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

func addAppointment(cal *ics.Calendar, appointment *models.EnrichedAppointment, stamp time.Time) {
	source := appointment.Event

	event := cal.AddEvent(appointment.ID)
	event.SetDtStampTime(stamp)
	event.SetSummary(fmt.Sprintf("%s (%s)", appointment.Focus, appointment.Client))

	if source.IsAllDay() {
		event.SetAllDayStartAt(source.Start.Time)
		if !source.End.Time.IsZero() {
			event.SetAllDayEndAt(source.End.Time)
		}
	} else {
		event.SetStartAt(source.Start.Time)
		if !source.End.Time.IsZero() {
			event.SetEndAt(source.End.Time)
		}
	}

	event.SetDescription(describe(appointment))

	if appointment.Briefing.CRMURL != "" {
		event.SetURL(appointment.Briefing.CRMURL)
	}
	if appointment.Email != "" {
		event.AddAttendee(appointment.Email, ics.WithCN(appointment.Client))
	}
}

func describe(appointment *models.EnrichedAppointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Coach: %s\n", appointment.Coach)
	fmt.Fprintf(&b, "Program: %s\n", appointment.Programs)
	fmt.Fprintf(&b, "Today's focus: %s\n", appointment.Briefing.TodaysFocus)
	fmt.Fprintf(&b, "Recent context: %s\n", appointment.Briefing.RecentContext)
	fmt.Fprintf(&b, "Client overview: %s", appointment.Briefing.ClientOverview)
	return b.String()
}
