package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/codehive/codehive/notify"
)

// internalHandler receives fan-out events from peer processes that run
// without a shared broker. The secret is optional; when configured, requests
// without it are rejected.
type internalHandler struct {
	sink   notify.Sink
	secret string
}

func (h *internalHandler) notify(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		got := r.Header.Get("X-Internal-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			respondError(w, http.StatusUnauthorized, "invalid internal secret")
			return
		}
	}
	event := notify.Event{}
	if err := decodeJSON(r, &event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if event.RoomId == "" {
		respondError(w, http.StatusBadRequest, "missing roomId")
		return
	}
	notify.Deliver(h.sink, event)
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
