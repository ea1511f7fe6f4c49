package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"evently/internal/database"
)

type createEventRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	Date         string `json:"date"`
	Location     string `json:"location"`
	GuestLimit   int64  `json:"guest_limit"`
	IsPublic     bool   `json:"is_public"`
	RSVPApproval bool   `json:"rsvp_approval"`
}

type eventJSON struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	Date         time.Time `json:"date"`
	Location     string    `json:"location"`
	GuestLimit   int64     `json:"guest_limit,omitempty"`
	IsPublic     bool      `json:"is_public"`
	RSVPApproval bool      `json:"rsvp_approval"`
}

func toEventJSON(event *database.Event) eventJSON {
	return eventJSON{
		ID:           event.ID,
		Title:        event.Title,
		Description:  event.Description.String,
		ImageURL:     event.ImageURL.String,
		Date:         event.Date,
		Location:     event.Location,
		GuestLimit:   event.GuestLimit.Int64,
		IsPublic:     event.IsPublic,
		RSVPApproval: event.RSVPApproval,
	}
}

// parseID parses an ID string and returns an error if invalid
func parseID(idStr string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(idStr, "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid ID format: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid ID: must be positive")
	}
	return id, nil
}

// HandleCreateEvent creates an event owned by the signed-in user. The
// owner always comes from the session, never the request body.
func HandleCreateEvent(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		userID, ok := s.CurrentUserID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Title == "" || req.Date == "" || req.Location == "" {
			writeError(w, http.StatusBadRequest, "Missing required fields")
			return
		}

		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format")
			return
		}

		event := &database.Event{
			CreatedBy:    userID,
			Title:        req.Title,
			Description:  sql.NullString{String: req.Description, Valid: req.Description != ""},
			ImageURL:     sql.NullString{String: req.ImageURL, Valid: req.ImageURL != ""},
			Date:         date,
			Location:     req.Location,
			GuestLimit:   sql.NullInt64{Int64: req.GuestLimit, Valid: req.GuestLimit > 0},
			IsPublic:     req.IsPublic,
			RSVPApproval: req.RSVPApproval,
		}

		event, err = s.GetDB().CreateEvent(r.Context(), event)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]eventJSON{"event": toEventJSON(event)})
	}
}

type eventSummaryJSON struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Attendees int       `json:"attendees"`
	Status    string    `json:"status"`
}

// HandleRecentEvents lists the owner's five most recent events.
func HandleRecentEvents(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.CurrentUserID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		events, err := s.GetDB().RecentEvents(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		summaries := make([]eventSummaryJSON, 0, len(events))
		for _, event := range events {
			summaries = append(summaries, eventSummaryJSON{
				ID:        event.ID,
				Title:     event.Title,
				Date:      event.Date,
				Attendees: event.Attendees,
				Status:    event.Status,
			})
		}

		writeJSON(w, http.StatusOK, map[string][]eventSummaryJSON{"events": summaries})
	}
}

// HandleShareEvent returns public share metadata for /api/events/{id}/share.
func HandleShareEvent(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/events/")
		idStr, ok := strings.CutSuffix(rest, "/share")
		if !ok {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}

		id, err := parseID(idStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Event ID is required")
			return
		}

		event, err := s.GetDB().GetEventByID(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to retrieve event details")
			return
		}
		if event == nil {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}

		writeJSON(w, http.StatusOK, toEventJSON(event))
	}
}
