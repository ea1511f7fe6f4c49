package handlers

import (
	"encoding/json"
	"net/http"

	"evently/internal/config"
	"evently/internal/database"
	"evently/internal/invite"
)

// Server interface defines the methods needed by handlers
type Server interface {
	GetDB() *database.DB
	GetConfig() *config.Config
	GetInvites() *invite.Coordinator
	CurrentUserID(r *http.Request) (int64, bool)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
