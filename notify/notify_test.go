package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/codehive/codehive/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	filesCalls   []Event
	projectCalls []Event
}

func (s *recordingSink) DispatchFilesUpdated(roomId, projectId string, files []types.FileEntry) {
	s.filesCalls = append(s.filesCalls, Event{RoomId: roomId, ProjectId: projectId, Files: files})
}

func (s *recordingSink) DispatchProjectActivated(roomId, projectId string) {
	s.projectCalls = append(s.projectCalls, Event{RoomId: roomId, ProjectId: projectId})
}

func TestLocalNotifier(t *testing.T) {
	sink := &recordingSink{}
	n := NewLocalNotifier(sink)

	err := n.Publish(context.Background(), Event{
		Kind:      KindFilesUpdated,
		RoomId:    "room1",
		ProjectId: "proj1",
		Files:     []types.FileEntry{{Path: "main.go"}},
	})
	require.NoError(t, err)
	require.Len(t, sink.filesCalls, 1)
	assert.Equal(t, "room1", sink.filesCalls[0].RoomId)
	assert.Len(t, sink.filesCalls[0].Files, 1)

	err = n.Publish(context.Background(), Event{Kind: KindProjectActivated, RoomId: "room1", ProjectId: "proj1"})
	require.NoError(t, err)
	require.Len(t, sink.projectCalls, 1)
	assert.Equal(t, "proj1", sink.projectCalls[0].ProjectId)
}

func TestDeliverIgnoresUnknownKind(t *testing.T) {
	sink := &recordingSink{}
	Deliver(sink, Event{Kind: "something-else", RoomId: "room1"})
	assert.Empty(t, sink.filesCalls)
	assert.Empty(t, sink.projectCalls)
}

// The redis notifier and the internal HTTP endpoint both move this envelope,
// so its JSON shape is contract.
func TestEventEnvelope(t *testing.T) {
	event := Event{
		Kind:      KindFilesUpdated,
		RoomId:    "room1",
		ProjectId: "proj1",
		Files:     []types.FileEntry{{Path: "main.go", Content: "x"}},
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	decoded := Event{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, event.Kind, decoded.Kind)
	assert.Equal(t, event.RoomId, decoded.RoomId)
	require.Len(t, decoded.Files, 1)
	assert.Equal(t, "main.go", decoded.Files[0].Path)

	// files are omitted when empty
	data, err = json.Marshal(Event{Kind: KindProjectActivated, RoomId: "room1"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "files")
}
