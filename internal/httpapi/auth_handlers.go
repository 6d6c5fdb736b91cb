package httpapi

import (
	"net/http"
	"strings"

	"taskdeck/internal/identity"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrors := map[string]string{}
	if !strings.Contains(req.Email, "@") {
		fieldErrors["email"] = "valid email is required"
	}
	if len(strings.TrimSpace(req.Username)) < 3 {
		fieldErrors["username"] = "username must be at least 3 characters"
	}
	if violations := identity.PasswordViolations(req.Password); len(violations) > 0 {
		fieldErrors["password"] = strings.Join(violations, "; ")
	}
	if len(fieldErrors) > 0 {
		writeValidationError(w, fieldErrors)
		return
	}

	user, err := s.identity.Register(r.Context(), identity.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
	}, requestMeta(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeValidationError(w, map[string]string{"credentials": "username and password are required"})
		return
	}

	pair, _, err := s.identity.Login(r.Context(), req.Username, req.Password, requestMeta(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeValidationError(w, map[string]string{"refresh_token": "refresh token is required"})
		return
	}

	pair, err := s.identity.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// handleLogout acknowledges the logout. Tokens are stateless and are not
// revoked server-side; clients discard them and the refresh token stays
// valid until natural expiry.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "logged out"})
}
