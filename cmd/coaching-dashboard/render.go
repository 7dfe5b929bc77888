package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dowjanes/coaching-dashboard/internal/models"
	"github.com/dowjanes/coaching-dashboard/pkg/calendar"
)

// renderText prints one block per appointment in the order the board holds
// them
func renderText(w io.Writer, day time.Time, view string, appointments []*models.EnrichedAppointment) error {
	fmt.Fprintf(w, "Coaching appointments for %s - %s (%d)\n", day.Format("Monday, January 2, 2006"), view, len(appointments))
	if len(appointments) == 0 {
		_, err := fmt.Fprintln(w, "No coaching appointments.")
		return err
	}

	for _, a := range appointments {
		fmt.Fprintln(w)
		client := a.Client
		if a.Email != "" {
			client = fmt.Sprintf("%s <%s>", a.Client, a.Email)
		}
		fmt.Fprintf(w, "%s  %s\n", a.Time, a.Focus)
		fmt.Fprintf(w, "  Client:   %s [%s]\n", client, a.Programs)
		fmt.Fprintf(w, "  Coach:    %s\n", a.Coach)
		fmt.Fprintf(w, "  Focus:    %s\n", a.Briefing.TodaysFocus)
		fmt.Fprintf(w, "  Context:  %s\n", a.Briefing.RecentContext)
		fmt.Fprintf(w, "  Overview: %s\n", a.Briefing.ClientOverview)
		if a.Briefing.CRMURL != "" {
			fmt.Fprintf(w, "  CRM:      %s\n", a.Briefing.CRMURL)
		}
	}
	return nil
}

func renderCalendars(w io.Writer, calendars []*calendar.Calendar) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTIMEZONE\tACCESS\tPRIMARY")
	for _, cal := range calendars {
		primary := ""
		if cal.Primary {
			primary = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", cal.ID, cal.Label(), cal.TimeZone, cal.AccessRole, primary)
	}
	return tw.Flush()
}
