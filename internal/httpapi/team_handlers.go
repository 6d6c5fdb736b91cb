package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"taskdeck/internal/team"
)

type createTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeValidationError(w, map[string]string{"name": "name is required"})
		return
	}

	t, err := s.teams.Create(r.Context(), currentUser(r), req.Name, req.Description, requestMeta(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.teams.ListMine(r.Context(), currentUser(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

type teamDetail struct {
	*team.Team
	Members []team.Member `json:"members"`
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	t, members, err := s.teams.Get(r.Context(), currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if members == nil {
		members = []team.Member{}
	}
	writeJSON(w, http.StatusOK, teamDetail{Team: t, Members: members})
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) handleAddTeamMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeValidationError(w, map[string]string{"email": "email is required"})
		return
	}

	m, err := s.teams.AddMember(r.Context(), currentUser(r), mux.Vars(r)["id"], req.Email, team.Role(req.Role), requestMeta(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleRemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.teams.RemoveMember(r.Context(), currentUser(r), vars["id"], vars["user_id"], requestMeta(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
