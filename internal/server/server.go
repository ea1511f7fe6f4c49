package server

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"evently/internal/config"
	"evently/internal/database"
	"evently/internal/invite"
	"evently/internal/server/handlers"
)

type Server struct {
	config       *config.Config
	db           *database.DB
	invites      *invite.Coordinator
	sessionStore *sessions.CookieStore
	router       *http.ServeMux
	log          zerolog.Logger
}

// GetDB implements handlers.Server interface
func (s *Server) GetDB() *database.DB {
	return s.db
}

// GetConfig implements handlers.Server interface
func (s *Server) GetConfig() *config.Config {
	return s.config
}

// GetInvites implements handlers.Server interface
func (s *Server) GetInvites() *invite.Coordinator {
	return s.invites
}

// CurrentUserID implements handlers.Server interface. Identity comes
// only from the server-signed session, never from request payloads.
func (s *Server) CurrentUserID(r *http.Request) (int64, bool) {
	session, _ := s.sessionStore.Get(r, "auth-session")
	userID, ok := session.Values["user_id"].(int64)
	return userID, ok && userID > 0
}

func New(cfg *config.Config, db *database.DB, log zerolog.Logger) *Server {
	s := &Server{
		config:       cfg,
		db:           db,
		sessionStore: sessions.NewCookieStore([]byte(cfg.SessionSecret)),
		router:       http.NewServeMux(),
		log:          log,
	}
	s.invites = invite.NewCoordinator(
		db.Invites(),
		cfg.InviteExpiryWindow,
		log.With().Str("component", "invite").Logger(),
	)

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", handleHealth)

	// Auth routes
	s.router.HandleFunc("/api/auth", s.handleAuth)
	s.router.HandleFunc("/api/auth/logout", s.handleLogout)

	// Event routes (protected)
	s.router.HandleFunc("/api/dashboard", s.requireAuth(handlers.HandleDashboard(s)))
	s.router.HandleFunc("/api/events/recent", s.requireAuth(handlers.HandleRecentEvents(s)))
	s.router.HandleFunc("/api/events/create", s.requireAuth(handlers.HandleCreateEvent(s)))
	s.router.HandleFunc("/api/invites/generate", s.requireAuth(handlers.HandleGenerateInvite(s)))

	// Public routes
	s.router.HandleFunc("/api/events/", handlers.HandleShareEvent(s))
	s.router.HandleFunc("/api/invites/validate", handlers.HandleValidateInvite(s))
	s.router.HandleFunc("/api/rsvps/submit", handlers.HandleSubmitRSVP(s))
}

func (s *Server) Start(addr string) error {
	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(s.logRequests(s.router))

	return http.ListenAndServe(addr, handler)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// requireAuth is a middleware that checks if user is authenticated
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.CurrentUserID(r); !ok {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
