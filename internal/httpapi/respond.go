package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskdeck/internal/identity"
	"taskdeck/internal/policy"
	"taskdeck/internal/task"
	"taskdeck/internal/team"
	"taskdeck/internal/token"
)

// errorEnvelope is the uniform error shape. Successful responses return the
// serialized model directly.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Message: message})
}

// writeValidationError reports malformed input as 422 with per-field errors
// under data.errors.
func writeValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorEnvelope{
		Message: "validation failed",
		Data:    map[string]any{"errors": fieldErrors},
	})
}

// writeDomainError maps domain sentinels onto the error taxonomy. Unknown
// errors become 500; their detail is surfaced only in debug mode.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, token.ErrInvalidToken),
		errors.Is(err, token.ErrWrongTokenType),
		errors.Is(err, identity.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, identity.ErrAccountInactive),
		errors.Is(err, policy.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, identity.ErrNotFound),
		errors.Is(err, task.ErrNotFound),
		errors.Is(err, team.ErrNotFound),
		errors.Is(err, team.ErrMemberNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, identity.ErrEmailTaken),
		errors.Is(err, identity.ErrUsernameTaken),
		errors.Is(err, identity.ErrWrongPassword),
		errors.Is(err, identity.ErrSelfDeactivation),
		errors.Is(err, team.ErrAlreadyMember),
		errors.Is(err, team.ErrLastOwner):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, identity.ErrWeakPassword),
		errors.Is(err, identity.ErrInvalidInput),
		errors.Is(err, task.ErrInvalidInput),
		errors.Is(err, team.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.WithError(err).Error("internal error")
		msg := "internal server error"
		if s.debug {
			msg = err.Error()
		}
		writeError(w, http.StatusInternalServerError, msg)
	}
}

// decodeJSON parses a request body, reporting malformed payloads uniformly.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeValidationError(w, map[string]string{"body": "malformed JSON payload"})
		return false
	}
	return true
}
