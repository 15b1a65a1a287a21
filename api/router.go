// Package api is the REST surface of the collaboration service plus the
// websocket mount point. Handlers stay thin: decode, call a service, map the
// error, encode.
package api

import (
	"net/http"

	"github.com/codehive/codehive/auth"
	"github.com/codehive/codehive/notify"
	"github.com/codehive/codehive/persistence"
	"github.com/codehive/codehive/project"
	"github.com/codehive/codehive/room"
	"github.com/codehive/codehive/ws"
	"github.com/gorilla/mux"
)

// RouterConfig carries everything the router wires together. DisableAPI and
// DisableGateway allow running the two surfaces in separate processes; the
// internal notify endpoint is always mounted so peers can reach this one.
type RouterConfig struct {
	Persister      persistence.Persister
	Authenticator  *auth.Authenticator
	Rooms          *room.Service
	Projects       *project.Service
	Gateway        *ws.Gateway
	Sink           notify.Sink
	InternalSecret string
	AdminUser      string
	DisableAPI     bool
	DisableGateway bool
}

func NewRouter(rc RouterConfig) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	internal := &internalHandler{sink: rc.Sink, secret: rc.InternalSecret}
	router.HandleFunc("/internal/notify", internal.notify).Methods(http.MethodPost)

	if !rc.DisableGateway {
		router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(rc.Gateway, w, r)
		}).Methods(http.MethodGet)
	}

	if !rc.DisableAPI {
		rooms := &roomHandler{rooms: rc.Rooms}
		projects := &projectHandler{projects: rc.Projects}

		authed := router.NewRoute().Subrouter()
		authed.Use(authMiddleware(rc.Authenticator, rc.Persister))

		authed.HandleFunc("/rooms", rooms.create).Methods(http.MethodPost)
		authed.HandleFunc("/rooms/join", rooms.join).Methods(http.MethodPost)
		authed.HandleFunc("/rooms/{id}", rooms.get).Methods(http.MethodGet)
		authed.HandleFunc("/rooms/{id}/invite", rooms.createInvite).Methods(http.MethodPost)

		authed.HandleFunc("/projects", projects.create).Methods(http.MethodPost)
		authed.HandleFunc("/projects/my", projects.listMine).Methods(http.MethodGet)
		authed.HandleFunc("/projects/{id}", projects.get).Methods(http.MethodGet)
		authed.HandleFunc("/projects/{id}/open", projects.open).Methods(http.MethodPost)
		authed.HandleFunc("/projects/{id}/files", projects.createFile).Methods(http.MethodPost)
		authed.HandleFunc("/projects/{id}/files/rename", projects.renameFile).Methods(http.MethodPut)
		authed.HandleFunc("/projects/{id}/files", projects.deleteFile).Methods(http.MethodDelete)
		authed.HandleFunc("/projects/{id}/files/content", projects.saveFile).Methods(http.MethodPut)

		admin := &adminHandler{persister: rc.Persister, adminUser: rc.AdminUser}
		authed.HandleFunc("/admin/rooms", admin.listRooms).Methods(http.MethodGet)
	}

	return router
}
