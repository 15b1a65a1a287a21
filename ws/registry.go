package ws

import (
	"sync"

	"github.com/codehive/codehive/globals"
	"github.com/codehive/codehive/types"
)

// Registry holds one hub per room with at least one local connection. It is
// also the receiving end of the cross-process notifier (it satisfies
// notify.Sink), so REST-side file mutations reach local connections through
// the same fan-out path as gateway events.
type Registry struct {
	hubs map[string]*Hub
	sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{hubs: make(map[string]*Hub)}
}

// GetOrCreate returns the room's hub, starting one if needed.
func (r *Registry) GetOrCreate(roomId string) *Hub {
	r.RLock()
	if hub, ok := r.hubs[roomId]; ok {
		r.RUnlock()
		return hub
	}
	r.RUnlock()
	r.Lock()
	defer r.Unlock()
	if hub, ok := r.hubs[roomId]; ok {
		return hub
	}
	hub := NewHub(roomId)
	r.hubs[roomId] = hub
	go hub.Run()
	return hub
}

// Peek returns the room's hub or nil. Broadcast paths use this: a room
// without a hub has no local connections, so there is nothing to deliver to.
func (r *Registry) Peek(roomId string) *Hub {
	r.RLock()
	defer r.RUnlock()
	return r.hubs[roomId]
}

// DispatchFilesUpdated broadcasts the authoritative file list to the room.
func (r *Registry) DispatchFilesUpdated(roomId, projectId string, files []types.FileEntry) {
	hub := r.Peek(roomId)
	if hub == nil {
		return
	}
	data, err := types.NewWebsocketMessage(types.EventFilesUpdated, types.FilesUpdatedMessage{
		RoomId:    roomId,
		ProjectId: projectId,
		Files:     files,
	})
	if err != nil {
		globals.AppLogger.Error("could not marshal files:updated", "error", err)
		return
	}
	hub.Broadcast <- data
}

// DispatchProjectActivated tells the room's clients to switch to the project.
func (r *Registry) DispatchProjectActivated(roomId, projectId string) {
	hub := r.Peek(roomId)
	if hub == nil {
		return
	}
	data, err := types.NewWebsocketMessage(types.EventProjectActive, types.ProjectActivatedMessage{
		ProjectId: projectId,
	})
	if err != nil {
		globals.AppLogger.Error("could not marshal project:activated", "error", err)
		return
	}
	hub.Broadcast <- data
}
