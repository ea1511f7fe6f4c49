package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"evently/internal/invite"
)

type generateInviteRequest struct {
	EventID    int64  `json:"event_id"`
	GuestEmail string `json:"guest_email"`
}

// HandleGenerateInvite mints an invite link for one guest on one of
// the signed-in user's events.
func HandleGenerateInvite(s Server) http.HandlerFunc {
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

		var req generateInviteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.EventID == 0 || req.GuestEmail == "" {
			writeError(w, http.StatusBadRequest, "Missing event_id or guest_email")
			return
		}
		if _, err := mail.ParseAddress(req.GuestEmail); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid guest_email")
			return
		}

		event, err := s.GetDB().GetEventByID(r.Context(), req.EventID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if event == nil {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		if event.CreatedBy != userID {
			writeError(w, http.StatusForbidden, "Only the event owner can generate invites")
			return
		}

		token, err := s.GetInvites().Generate(r.Context(), req.EventID, req.GuestEmail)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		link := s.GetConfig().BaseURL + "/rsvp/" + token
		writeJSON(w, http.StatusOK, map[string]string{"link": link})
	}
}

// HandleValidateInvite reports whether a token is redeemable. Unknown
// and expired tokens get the same response, so probing a token reveals
// nothing beyond "not usable".
func HandleValidateInvite(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusBadRequest, "Token required")
			return
		}

		err := s.GetInvites().Validate(r.Context(), token)
		switch {
		case errors.Is(err, invite.ErrInvalidToken), errors.Is(err, invite.ErrTokenExpired):
			writeError(w, http.StatusNotFound, "Invalid or expired token")
		case err != nil:
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
		default:
			writeJSON(w, http.StatusOK, map[string]string{"message": "Valid token"})
		}
	}
}

type submitRSVPRequest struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

type rsvpJSON struct {
	EventID  int64 `json:"event_id"`
	UserID   int64 `json:"user_id"`
	Approved bool  `json:"approved"`
}

// HandleSubmitRSVP redeems an invite token into an RSVP. A resubmitted
// or replayed token gets a clear "already used" answer, never a second
// RSVP.
func HandleSubmitRSVP(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req submitRSVPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Token == "" || req.Name == "" {
			writeError(w, http.StatusBadRequest, "Missing data")
			return
		}

		rsvp, err := s.GetInvites().Redeem(r.Context(), req.Token, req.Name)
		switch {
		case errors.Is(err, invite.ErrInvalidToken), errors.Is(err, invite.ErrTokenExpired):
			writeError(w, http.StatusNotFound, "Invalid or expired token")
		case errors.Is(err, invite.ErrAlreadyRedeemed):
			writeError(w, http.StatusConflict, "Invite already used")
		case err != nil:
			writeError(w, http.StatusInternalServerError, "Server error")
		default:
			writeJSON(w, http.StatusCreated, map[string]rsvpJSON{
				"rsvp": {EventID: rsvp.EventID, UserID: rsvp.UserID, Approved: rsvp.Approved},
			})
		}
	}
}
