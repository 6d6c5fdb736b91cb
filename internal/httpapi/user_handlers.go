package httpapi

import (
	"net/http"

	"taskdeck/internal/identity"
)

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

type updateMeRequest struct {
	Email           *string `json:"email"`
	FullName        *string `json:"full_name"`
	ThemePreference *string `json:"theme_preference"`
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.identity.UpdateProfile(r.Context(), currentUser(r), identity.ProfileUpdate{
		Email:           req.Email,
		FullName:        req.FullName,
		ThemePreference: req.ThemePreference,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeValidationError(w, map[string]string{"password": "current and new password are required"})
		return
	}

	if err := s.identity.ChangePassword(r.Context(), currentUser(r), req.CurrentPassword, req.NewPassword, requestMeta(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "password changed"})
}
