package types

import "encoding/json"

// Event names on the persistent connection, client->server and
// server->client. Clients depend on these strings, do not rename.
const (
	EventAuthJoin      = "auth-join"
	EventJoinSuccess   = "join-success"
	EventJoinError     = "join-error"
	EventAuthError     = "auth-error"
	EventSyncView      = "sync-view"
	EventViewSynced    = "view-synced"
	EventLeaveRoom     = "leave-room"
	EventContentChange = "editor:content-change"
	EventContentUpdate = "editor:content-update"
	EventParticipants  = "participants-updated"
	EventProjectActive = "project:activated"
	EventFilesUpdated  = "files:updated"
)

// JSON-serialized WebsocketMessage is what is actually sent via the Websocket
// connection.
type WebsocketMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewWebsocketMessage marshals payload into the wire envelope.
func NewWebsocketMessage(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WebsocketMessage{Event: event, Data: data})
}

// The different types of messages transferred from the client to here.

// AuthJoinMessage carries the bearer token and target room of a connection
// handshake.
type AuthJoinMessage struct {
	Token  string `json:"token" mapstructure:"token"`
	RoomId string `json:"roomId" mapstructure:"roomId"`
}

// SyncViewMessage is the host's request to move every participant to a view.
type SyncViewMessage struct {
	RoomId string `json:"roomId" mapstructure:"roomId"`
	Page   string `json:"page" mapstructure:"page"`
}

// ContentChangeMessage is one live edit of a file, relayed verbatim.
type ContentChangeMessage struct {
	RoomId   string `json:"roomId" mapstructure:"roomId"`
	FilePath string `json:"filePath" mapstructure:"filePath"`
	Content  string `json:"content" mapstructure:"content"`
}

// Outgoing payloads.

type JoinSuccessMessage struct {
	RoomId     string `json:"roomId"`
	HostUserId string `json:"hostUserId"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

type ViewSyncedMessage struct {
	RoomId string `json:"roomId"`
	Page   string `json:"page"`
}

type ContentUpdateMessage struct {
	FilePath string `json:"filePath"`
	Content  string `json:"content"`
	From     string `json:"from"`
}

type ParticipantsMessage struct {
	RoomId       string            `json:"roomId"`
	HostUserId   string            `json:"hostUserId"`
	Participants []ParticipantInfo `json:"participants"`
}

type ProjectActivatedMessage struct {
	ProjectId string `json:"projectId"`
}

type FilesUpdatedMessage struct {
	RoomId    string      `json:"roomId"`
	ProjectId string      `json:"projectId"`
	Files     []FileEntry `json:"files"`
}
