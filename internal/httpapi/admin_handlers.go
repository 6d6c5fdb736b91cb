package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"taskdeck/internal/audit"
	"taskdeck/internal/identity"
	"taskdeck/internal/policy"
	"taskdeck/internal/task"
)

type dashboardResponse struct {
	UserStats        identity.Stats   `json:"user_stats"`
	TaskStats        task.Stats       `json:"task_stats"`
	RecentActivities []audit.Activity `json:"recent_activities"`
	SecurityAlerts   int              `json:"security_alerts"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if err := policy.RequireAdmin(currentUser(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}

	userStats, err := s.identity.UserStats(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	taskStats, err := s.tasks.TaskStats(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	recent, err := s.auditLog.RecentActivities(r.Context(), 10)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if recent == nil {
		recent = []audit.Activity{}
	}
	alerts, err := s.auditLog.CountAlertsSince(r.Context(), time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		UserStats:        userStats,
		TaskStats:        taskStats,
		RecentActivities: recent,
		SecurityAlerts:   alerts,
	})
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	if err := policy.RequireAdmin(currentUser(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}

	q := r.URL.Query()
	skip := intParam(q.Get("skip"), 0)
	limit := intParam(q.Get("limit"), s.maxPageSize)
	if limit <= 0 || limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	users, err := s.identity.ListUsers(r.Context(), skip, limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if users == nil {
		users = []identity.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) handleAdminSetRole(w http.ResponseWriter, r *http.Request) {
	if err := policy.RequireAdmin(currentUser(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}

	var req setRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Role == "" {
		writeValidationError(w, map[string]string{"role": "role is required"})
		return
	}

	user, err := s.identity.SetRole(r.Context(), currentUser(r), mux.Vars(r)["id"], identity.Role(req.Role), requestMeta(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type setStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

func (s *Server) handleAdminSetStatus(w http.ResponseWriter, r *http.Request) {
	if err := policy.RequireAdmin(currentUser(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}

	var req setStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		writeValidationError(w, map[string]string{"is_active": "is_active is required"})
		return
	}

	user, err := s.identity.SetStatus(r.Context(), currentUser(r), mux.Vars(r)["id"], *req.IsActive, requestMeta(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type auditPage[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	if err := policy.RequireAuditRead(currentUser(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}

	page, pageSize := s.pageParams(r)
	items, total, err := s.auditLog.ListActivities(r.Context(), page, pageSize)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []audit.Activity{}
	}
	writeJSON(w, http.StatusOK, auditPage[audit.Activity]{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) handleSecurityEvents(w http.ResponseWriter, r *http.Request) {
	if err := policy.RequireAuditRead(currentUser(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}

	severity := r.URL.Query().Get("severity")
	switch severity {
	case "", audit.SeverityInfo, audit.SeverityWarning, audit.SeverityCritical:
	default:
		writeValidationError(w, map[string]string{"severity": "unknown severity"})
		return
	}

	page, pageSize := s.pageParams(r)
	items, total, err := s.auditLog.ListSecurityEvents(r.Context(), severity, page, pageSize)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []audit.SecurityEvent{}
	}
	writeJSON(w, http.StatusOK, auditPage[audit.SecurityEvent]{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) pageParams(r *http.Request) (int, int) {
	q := r.URL.Query()
	page := intParam(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize := intParam(q.Get("page_size"), s.defaultPageSize)
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	return page, pageSize
}
