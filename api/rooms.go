package api

import (
	"net/http"
	"time"

	"github.com/codehive/codehive/room"
	"github.com/codehive/codehive/types"
	"github.com/gorilla/mux"
)

type createRoomRequest struct {
	Name string `json:"name"`
}

type createInviteRequest struct {
	Regenerate bool `json:"regenerate"`
	TTLSeconds int  `json:"ttlSeconds"`
}

type joinRoomRequest struct {
	InviteCode string `json:"inviteCode"`
	RoomId     string `json:"roomId"`
}

type createRoomResponse struct {
	RoomId string      `json:"roomId"`
	Room   *types.Room `json:"room"`
}

type joinRoomResponse struct {
	Room *room.Summary `json:"room"`
}

type roomHandler struct {
	rooms *room.Service
}

func (h *roomHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user")
		return
	}
	req := createRoomRequest{}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.rooms.Create(user, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, createRoomResponse{RoomId: created.Id, Room: created})
}

func (h *roomHandler) get(w http.ResponseWriter, r *http.Request) {
	roomId := mux.Vars(r)["id"]
	found, err := h.rooms.Get(roomId)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, found)
}

func (h *roomHandler) createInvite(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user")
		return
	}
	req := createInviteRequest{}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	invite, err := h.rooms.CreateInvite(mux.Vars(r)["id"], user.Id, req.Regenerate, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invite)
}

func (h *roomHandler) join(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user")
		return
	}
	req := joinRoomRequest{}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	summary, err := h.rooms.Join(req.InviteCode, req.RoomId, user)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, joinRoomResponse{Room: summary})
}
