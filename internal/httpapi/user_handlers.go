package httpapi

import (
	"errors"
	"net/http"

	"github.com/Aviat-at/mapleCMS/internal/audit"
	"github.com/Aviat-at/mapleCMS/internal/auth"
	"github.com/Aviat-at/mapleCMS/internal/content"
)

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok || !content.Allow(id.Role, content.ActionManageUsers, false) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	users, err := a.sessions.Users(r.Context()).List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type userStatusRequest struct {
	Active bool `json:"active"`
}

// handleUserStatus toggles an account. Deactivation does not touch issued
// access tokens; they age out within the access TTL.
func (a *API) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok || !content.Allow(id.Role, content.ActionManageUsers, false) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	userID := r.PathValue("id")
	if userID == id.UserID {
		writeError(w, http.StatusBadRequest, "cannot change your own status")
		return
	}
	var req userStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := a.sessions.Users(r.Context()).SetActive(r.Context(), userID, req.Active)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.user.status_changed", map[string]any{
		"target_user_id": userID,
		"active":         req.Active,
	})
	user, err := a.sessions.Users(r.Context()).Find(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
