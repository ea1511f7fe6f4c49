package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"evently/internal/config"
	"evently/internal/database"
	"evently/internal/invite"
)

// memStore is a minimal invite.Store for exercising handlers without a
// database.
type memStore struct {
	mu      sync.Mutex
	invites map[string]*invite.Invite
}

func (s *memStore) Insert(ctx context.Context, inv *invite.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invites[inv.Token]; exists {
		return invite.ErrDuplicateToken
	}
	copied := *inv
	s.invites[inv.Token] = &copied
	return nil
}

func (s *memStore) FindByToken(ctx context.Context, token string) (*invite.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[token]
	if !ok {
		return nil, invite.ErrInviteNotFound
	}
	copied := *inv
	return &copied, nil
}

func (s *memStore) Consume(ctx context.Context, token, displayName string) (*invite.RSVP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[token]
	if !ok {
		return nil, invite.ErrInviteNotFound
	}
	if inv.Consumed {
		return nil, invite.ErrAlreadyConsumed
	}
	inv.Consumed = true
	return &invite.RSVP{EventID: inv.EventID, UserID: 1, Approved: true}, nil
}

// stubServer satisfies Server for handlers that never touch the database.
type stubServer struct {
	cfg     *config.Config
	invites *invite.Coordinator
}

func (s *stubServer) GetDB() *database.DB                         { return nil }
func (s *stubServer) GetConfig() *config.Config                   { return s.cfg }
func (s *stubServer) GetInvites() *invite.Coordinator             { return s.invites }
func (s *stubServer) CurrentUserID(r *http.Request) (int64, bool) { return 0, false }

func newStubServer(store invite.Store) *stubServer {
	return &stubServer{
		cfg:     &config.Config{BaseURL: "http://localhost:8080", InviteExpiryWindow: 5 * time.Minute},
		invites: invite.NewCoordinator(store, 5*time.Minute, zerolog.Nop()),
	}
}

func TestHandleValidateInvite(t *testing.T) {
	now := time.Now()
	store := &memStore{invites: map[string]*invite.Invite{
		"fresh":   {Token: "fresh", EventID: 1, GuestEmail: "a@b.com", CreatedAt: now.Add(-1 * time.Minute)},
		"expired": {Token: "expired", EventID: 1, GuestEmail: "a@b.com", CreatedAt: now.Add(-10 * time.Minute)},
	}}
	handler := HandleValidateInvite(newStubServer(store))

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing token",
			query:      "",
			wantStatus: http.StatusBadRequest,
			wantError:  "Token required",
		},
		{
			name:       "valid token",
			query:      "?token=fresh",
			wantStatus: http.StatusOK,
		},
		{
			name:       "expired token",
			query:      "?token=expired",
			wantStatus: http.StatusNotFound,
			wantError:  "Invalid or expired token",
		},
		{
			name:       "unknown token",
			query:      "?token=nope",
			wantStatus: http.StatusNotFound,
			wantError:  "Invalid or expired token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/invites/validate"+tt.query, nil)
			w := httptest.NewRecorder()

			handler(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantError != "" {
				var body map[string]string
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("response is not JSON: %v", err)
				}
				if body["error"] != tt.wantError {
					t.Errorf("error = %q, want %q", body["error"], tt.wantError)
				}
			}
		})
	}
}

func TestHandleValidateInviteUniformRejection(t *testing.T) {
	now := time.Now()
	store := &memStore{invites: map[string]*invite.Invite{
		"expired": {Token: "expired", EventID: 1, GuestEmail: "a@b.com", CreatedAt: now.Add(-10 * time.Minute)},
	}}
	handler := HandleValidateInvite(newStubServer(store))

	// An expired token and a token that never existed must be
	// indistinguishable from the outside.
	var bodies [2]string
	for i, token := range []string{"expired", "never-issued"} {
		r := httptest.NewRequest(http.MethodGet, "/api/invites/validate?token="+token, nil)
		w := httptest.NewRecorder()
		handler(w, r)
		if w.Code != http.StatusNotFound {
			t.Fatalf("token %q: status = %d, want %d", token, w.Code, http.StatusNotFound)
		}
		bodies[i] = w.Body.String()
	}
	if bodies[0] != bodies[1] {
		t.Errorf("expired and unknown tokens produce different responses: %q vs %q", bodies[0], bodies[1])
	}
}

func TestHandleSubmitRSVP(t *testing.T) {
	now := time.Now()
	store := &memStore{invites: map[string]*invite.Invite{
		"tok": {Token: "tok", EventID: 9, GuestEmail: "a@b.com", CreatedAt: now},
	}}
	handler := HandleSubmitRSVP(newStubServer(store))

	post := func(body string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/rsvps/submit", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler(w, r)
		return w
	}

	// First submission creates the RSVP.
	w := post(`{"token":"tok","name":"Alice"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var created map[string]rsvpJSON
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if created["rsvp"].EventID != 9 {
		t.Errorf("rsvp.event_id = %d, want 9", created["rsvp"].EventID)
	}

	// A resubmit is rejected without creating another RSVP.
	if w := post(`{"token":"tok","name":"Alice"}`); w.Code != http.StatusConflict {
		t.Errorf("resubmit status = %d, want %d", w.Code, http.StatusConflict)
	}

	// Unknown tokens get the generic rejection.
	if w := post(`{"token":"nope","name":"Alice"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown token status = %d, want %d", w.Code, http.StatusNotFound)
	}

	// Missing fields.
	if w := post(`{"token":"tok"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing name status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	// Wrong method.
	r := httptest.NewRequest(http.MethodGet, "/api/rsvps/submit", nil)
	rec := httptest.NewRecorder()
	handler(rec, r)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
