// Package httpapi is the HTTP surface: routing, authentication, request
// decoding, and the mapping from domain errors onto the error taxonomy.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"taskdeck/internal/audit"
	"taskdeck/internal/config"
	"taskdeck/internal/identity"
	"taskdeck/internal/obs"
	"taskdeck/internal/task"
	"taskdeck/internal/team"
	"taskdeck/internal/token"
)

const maxBodyBytes = 1 << 20

// Server wires the domain services into HTTP handlers.
type Server struct {
	log      *logrus.Logger
	debug    bool
	tokens   *token.Service
	identity *identity.Service
	tasks    *task.Service
	teams    *team.Service
	auditLog audit.Store

	defaultPageSize int
	maxPageSize     int

	rateBurst     int
	ratePerSecond int

	// ready reports backing-store health for readyz; nil means always ready.
	ready func(context.Context) error
}

type Deps struct {
	Tokens   *token.Service
	Identity *identity.Service
	Tasks    *task.Service
	Teams    *team.Service
	AuditLog audit.Store
	Ready    func(context.Context) error
}

func NewServer(cfg *config.Config, log *logrus.Logger, deps Deps) *Server {
	return &Server{
		log:             log,
		debug:           cfg.Server.Debug,
		tokens:          deps.Tokens,
		identity:        deps.Identity,
		tasks:           deps.Tasks,
		teams:           deps.Teams,
		auditLog:        deps.AuditLog,
		defaultPageSize: cfg.Pagination.DefaultPageSize,
		maxPageSize:     cfg.Pagination.MaxPageSize,
		rateBurst:       cfg.RateLimit.Burst,
		ratePerSecond:   cfg.RateLimit.PerSecond,
		ready:           deps.Ready,
	}
}

// Handler builds the full middleware chain and route table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.Handle("/healthz", http.HandlerFunc(s.handleHealthz)).Methods(http.MethodGet)
	r.Handle("/readyz", http.HandlerFunc(s.handleReadyz)).Methods(http.MethodGet)
	r.Handle("/metrics", obs.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public.
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)

	// Authenticated.
	authed := api.NewRoute().Subrouter()
	authed.Use(mux.MiddlewareFunc(s.authenticate))

	authed.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)

	authed.HandleFunc("/users/me", s.handleGetMe).Methods(http.MethodGet)
	authed.HandleFunc("/users/me", s.handleUpdateMe).Methods(http.MethodPut)
	authed.HandleFunc("/users/me/change-password", s.handleChangePassword).Methods(http.MethodPost)

	authed.HandleFunc("/tasks", s.handleListTasks).Methods(http.MethodGet)
	authed.HandleFunc("/tasks", s.handleCreateTask).Methods(http.MethodPost)
	authed.HandleFunc("/tasks/{id}", s.handleGetTask).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}", s.handleUpdateTask).Methods(http.MethodPut)
	authed.HandleFunc("/tasks/{id}/status", s.handleUpdateTaskStatus).Methods(http.MethodPatch)
	authed.HandleFunc("/tasks/{id}", s.handleDeleteTask).Methods(http.MethodDelete)

	authed.HandleFunc("/teams", s.handleCreateTeam).Methods(http.MethodPost)
	authed.HandleFunc("/teams", s.handleListTeams).Methods(http.MethodGet)
	authed.HandleFunc("/teams/{id}", s.handleGetTeam).Methods(http.MethodGet)
	authed.HandleFunc("/teams/{id}/members", s.handleAddTeamMember).Methods(http.MethodPost)
	authed.HandleFunc("/teams/{id}/members/{user_id}", s.handleRemoveTeamMember).Methods(http.MethodDelete)

	authed.HandleFunc("/admin/dashboard", s.handleDashboard).Methods(http.MethodGet)
	authed.HandleFunc("/admin/users", s.handleAdminListUsers).Methods(http.MethodGet)
	authed.HandleFunc("/admin/users/{id}/role", s.handleAdminSetRole).Methods(http.MethodPatch)
	authed.HandleFunc("/admin/users/{id}/status", s.handleAdminSetStatus).Methods(http.MethodPatch)
	authed.HandleFunc("/admin/audit-logs", s.handleAuditLogs).Methods(http.MethodGet)
	authed.HandleFunc("/admin/security-events", s.handleSecurityEvents).Methods(http.MethodGet)

	r.Use(func(next http.Handler) http.Handler {
		return obs.Instrument(next, routeTemplate)
	})

	var h http.Handler = r
	h = MaxBodyBytes(h, maxBodyBytes)
	if s.ratePerSecond > 0 {
		h = RateLimit(h, s.rateBurst, s.ratePerSecond)
	}
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h, s.log)
	h = RequestID(h)
	return h
}

// routeTemplate labels metrics with the matched route pattern to keep label
// cardinality bounded.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
