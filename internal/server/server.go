// Package server exposes the group calendar over JSON REST and
// websocket subscription endpoints.
package server

import (
	"net/http"

	"github.com/mmynk/syncdays/internal/auth"
	"github.com/mmynk/syncdays/internal/middleware"
	"github.com/mmynk/syncdays/internal/service"
)

// Server wires the services to HTTP routes.
type Server struct {
	groups   *service.GroupService
	days     *service.DayService
	auth     *service.AuthService
	verifier auth.Verifier
}

// New creates a server. authSvc may be nil when the Firebase identity
// provider handles sign-up and login; the local /api/signup and
// /api/login routes are only registered when it is present.
func New(groups *service.GroupService, days *service.DayService, authSvc *service.AuthService, verifier auth.Verifier) *Server {
	return &Server{
		groups:   groups,
		days:     days,
		auth:     authSvc,
		verifier: verifier,
	}
}

// Handler builds the route table with auth, logging, and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	if s.auth != nil {
		mux.HandleFunc("POST /api/signup", s.handleSignup)
		mux.HandleFunc("POST /api/login", s.handleLogin)
	}

	authed := http.NewServeMux()
	authed.HandleFunc("POST /api/groups", s.handleCreateGroup)
	authed.HandleFunc("GET /api/groups", s.handleListGroups)
	authed.HandleFunc("GET /api/groups/{id}", s.handleGetGroup)
	authed.HandleFunc("POST /api/groups/{id}/join", s.handleJoinGroup)
	authed.HandleFunc("PUT /api/groups/{id}/member-name", s.handleSetMemberName)
	authed.HandleFunc("DELETE /api/groups/{id}", s.handleDeleteGroup)

	authed.HandleFunc("GET /api/groups/{id}/days", s.handleListDays)
	authed.HandleFunc("GET /api/groups/{id}/days/{date}", s.handleGetDay)
	authed.HandleFunc("PUT /api/groups/{id}/days/{date}/status", s.handleSetStatus)
	authed.HandleFunc("POST /api/groups/{id}/days/{date}/appointments", s.handleAddAppointment)
	authed.HandleFunc("PATCH /api/groups/{id}/days/{date}/appointments/{apptId}", s.handleEditAppointment)
	authed.HandleFunc("DELETE /api/groups/{id}/days/{date}/appointments/{apptId}", s.handleDeleteAppointment)

	authed.HandleFunc("GET /api/ws/groups", s.handleWatchGroups)
	authed.HandleFunc("GET /api/ws/groups/{id}/days", s.handleWatchDays)

	requireAuth := middleware.RequireAuth(s.verifier, func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, err)
	})
	mux.Handle("/api/", requireAuth(authed))

	return middleware.Logging(cors(mux))
}

// cors adds CORS headers for browser access.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
