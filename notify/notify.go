// Package notify carries file-mutation updates from the REST side to the
// realtime gateway. The REST response is authoritative on its own; delivery
// here is best-effort and never retried, a missed broadcast only delays
// convergence until the client's next authoritative read.
package notify

import (
	"context"

	"github.com/codehive/codehive/types"
)

const (
	KindFilesUpdated     = "files-updated"
	KindProjectActivated = "project-activated"
)

// Event is one update destined for every connection in a room.
type Event struct {
	Kind      string            `json:"kind"`
	RoomId    string            `json:"roomId"`
	ProjectId string            `json:"projectId"`
	Files     []types.FileEntry `json:"files,omitempty"`
}

// Sink is the gateway-side receiver of events, implemented by the hub
// registry.
type Sink interface {
	DispatchFilesUpdated(roomId, projectId string, files []types.FileEntry)
	DispatchProjectActivated(roomId, projectId string)
}

// Notifier is the sending side. Local delivers in-process, Redis publishes
// on a pub/sub channel so API and gateway can be deployed separately.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Deliver hands one event to a sink.
func Deliver(sink Sink, event Event) {
	switch event.Kind {
	case KindFilesUpdated:
		sink.DispatchFilesUpdated(event.RoomId, event.ProjectId, event.Files)
	case KindProjectActivated:
		sink.DispatchProjectActivated(event.RoomId, event.ProjectId)
	}
}
