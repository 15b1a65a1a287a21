package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/codehive/codehive/globals"
	"github.com/codehive/codehive/project"
	"github.com/codehive/codehive/room"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		globals.AppLogger.Error("could not encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads the request body into out. A missing body is fine, all
// request payloads here have usable zero values.
func decodeJSON(r *http.Request, out interface{}) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Anything unmapped is a 500 and gets logged, the client only sees a generic
// message.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, project.ErrRoomNotFound),
		errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, project.ErrFileNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, room.ErrNotHost):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, room.ErrInviteExpired):
		respondError(w, http.StatusGone, err.Error())
	case errors.Is(err, project.ErrPathExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, room.ErrBadRequest),
		errors.Is(err, project.ErrNameRequired),
		errors.Is(err, project.ErrPathRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		globals.AppLogger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
