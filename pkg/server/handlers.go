package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dowjanes/coaching-dashboard/pkg/board"
	"github.com/dowjanes/coaching-dashboard/pkg/calendar/ical"
	"github.com/dowjanes/coaching-dashboard/pkg/hubspot"
	"github.com/dowjanes/coaching-dashboard/pkg/retry"
)

// appointmentsResponse is the board filtered by one view
type appointmentsResponse struct {
	board.Snapshot
	View  string       `json:"view"`
	Views []board.View `json:"views"`
}

type contactsRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRefresh runs the pipeline for ?date= with the caller's calendar token
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Missing bearer token")
		return
	}

	date, err := board.ParseDate(r.URL.Query().Get("date"), s.opts.Board.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The board outlives the request; a client hanging up must not cancel a
	// run that would otherwise commit
	snapshot, err := s.opts.Board.Refresh(context.WithoutCancel(r.Context()), date, token)
	switch {
	case errors.Is(err, board.ErrSuperseded):
		writeError(w, http.StatusConflict, "Refresh superseded by a newer request")
	case err != nil:
		// The failed snapshot carries the user-facing message
		writeJSON(w, http.StatusBadGateway, snapshot)
	default:
		writeJSON(w, http.StatusOK, snapshot)
	}
}

// handleAppointments returns the current board, optionally narrowed by
// ?view= ("My Calls" uses ?me=)
func (s *Server) handleAppointments(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	if view == "" {
		view = board.ViewAll
	}
	me := r.URL.Query().Get("me")

	snapshot := s.opts.Board.Snapshot()
	views := board.Views(snapshot.Appointments, me, s.opts.Roster)
	snapshot.Appointments = board.Filter(snapshot.Appointments, view, me)

	writeJSON(w, http.StatusOK, appointmentsResponse{
		Snapshot: snapshot,
		View:     view,
		Views:    views,
	})
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	snapshot := s.opts.Board.Snapshot()

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if snapshot.Date != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="coaching-`+snapshot.Date+`.ics"`)
	}
	err := ical.Write(w, snapshot.Appointments, ical.ExportOptions{
		Name:     s.opts.CalendarName,
		Location: s.opts.Board.Location(),
	})
	if err != nil {
		s.logger.Error("Failed to write calendar export", "error", err)
	}
}

// handleContacts proxies a single-contact email search to the CRM
func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	var req contactsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Missing email in request body")
		return
	}

	result, err := s.opts.Contacts.Search(r.Context(), req.Email)
	if err != nil {
		s.logger.Warn("Contact search failed", "email", req.Email, "error", err)

		var httpErr *retry.HTTPError
		switch {
		case errors.Is(err, hubspot.ErrMissingToken):
			writeError(w, http.StatusServiceUnavailable, "HubSpot API error: token not configured")
		case errors.As(err, &httpErr):
			writeError(w, httpErr.StatusCode, "HubSpot API error: "+httpErr.Body)
		default:
			writeError(w, http.StatusBadGateway, "HubSpot API error: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
