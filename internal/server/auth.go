package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"evently/internal/database"
)

// bcryptCost matches the work factor used for existing account hashes.
const bcryptCost = 10

type authRequest struct {
	Type     string `json:"type"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type authUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" || (req.Type == "signup" && req.Name == "") {
		http.Error(w, `{"error":"Missing fields"}`, http.StatusBadRequest)
		return
	}

	switch req.Type {
	case "signup":
		s.handleSignup(w, r, req)
	case "login":
		s.handleLogin(w, r, req)
	default:
		http.Error(w, `{"error":"Invalid request type"}`, http.StatusBadRequest)
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request, req authRequest) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to hash password")
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	user, err := s.db.CreateUser(r.Context(), req.Email, string(hash), req.Name)
	if errors.Is(err, database.ErrEmailTaken) {
		http.Error(w, `{"error":"Email already registered"}`, http.StatusConflict)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create user")
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	s.saveSession(w, r, user.ID, user.Email, user.Name)
	writeUser(w, authUser{ID: user.ID, Email: user.Email, Name: user.Name})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, req authRequest) {
	user, err := s.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to look up user")
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	// Unknown email and wrong password fail the same way, so login
	// attempts cannot enumerate accounts.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, `{"error":"Invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	s.saveSession(w, r, user.ID, user.Email, user.Name)
	writeUser(w, authUser{ID: user.ID, Email: user.Email, Name: user.Name})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessionStore.Get(r, "auth-session")
	session.Values["user_id"] = int64(0)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"message":"Logged out"}`))
}

// saveSession stores the authenticated identity in the signed cookie
// session. Only this value is ever trusted for authorization.
func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, userID int64, email, name string) {
	session, _ := s.sessionStore.Get(r, "auth-session")
	session.Values["user_id"] = userID
	session.Values["email"] = email
	session.Values["name"] = name
	if err := session.Save(r, w); err != nil {
		s.log.Error().Err(err).Msg("failed to save session")
	}
}

func writeUser(w http.ResponseWriter, user authUser) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]authUser{"user": user})
}
