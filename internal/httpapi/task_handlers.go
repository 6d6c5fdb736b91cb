package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"taskdeck/internal/task"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := task.Filter{
		Status:   task.Status(q.Get("status")),
		Priority: task.Priority(q.Get("priority")),
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     intParam(q.Get("page"), 1),
		PageSize: intParam(q.Get("page_size"), 0),
	}

	page, err := s.tasks.List(r.Context(), currentUser(r), f)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type createTaskRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Priority     string     `json:"priority"`
	Category     string     `json:"category"`
	Tags         string     `json:"tags"`
	DueDate      *time.Time `json:"due_date"`
	ReminderDate *time.Time `json:"reminder_date"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeValidationError(w, map[string]string{"title": "title is required"})
		return
	}

	t, err := s.tasks.Create(r.Context(), currentUser(r), task.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     task.Priority(req.Priority),
		Category:     req.Category,
		Tags:         req.Tags,
		DueDate:      req.DueDate,
		ReminderDate: req.ReminderDate,
	}, requestMeta(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.Get(r.Context(), currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type updateTaskRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Priority     *string    `json:"priority"`
	Status       *string    `json:"status"`
	Category     *string    `json:"category"`
	Tags         *string    `json:"tags"`
	DueDate      *time.Time `json:"due_date"`
	ReminderDate *time.Time `json:"reminder_date"`
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := task.UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Tags:         req.Tags,
		DueDate:      req.DueDate,
		ReminderDate: req.ReminderDate,
	}
	if req.Priority != nil {
		p := task.Priority(*req.Priority)
		in.Priority = &p
	}
	if req.Status != nil {
		st := task.Status(*req.Status)
		in.Status = &st
	}

	t, err := s.tasks.Update(r.Context(), currentUser(r), mux.Vars(r)["id"], in, requestMeta(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type updateTaskStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req updateTaskStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status == "" {
		writeValidationError(w, map[string]string{"status": "status is required"})
		return
	}

	t, err := s.tasks.UpdateStatus(r.Context(), currentUser(r), mux.Vars(r)["id"], task.Status(req.Status), requestMeta(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Delete(r.Context(), currentUser(r), mux.Vars(r)["id"], requestMeta(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// intParam parses a positive integer query parameter, falling back on junk.
func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
