package api

import (
	"net/http"

	"github.com/codehive/codehive/persistence"
)

// adminHandler serves operator endpoints over HTTP. Only the configured
// admin user may call these; without an admin_user they are disabled.
type adminHandler struct {
	persister persistence.Persister
	adminUser string
}

func (h *adminHandler) listRooms(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || h.adminUser == "" || user.Id != h.adminUser {
		respondError(w, http.StatusForbidden, "admin only")
		return
	}
	rooms, err := h.persister.GetRooms()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rooms)
}
