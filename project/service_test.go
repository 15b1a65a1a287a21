package project

import (
	"context"
	"testing"
	"time"

	"github.com/codehive/codehive/config"
	"github.com/codehive/codehive/notify"
	"github.com/codehive/codehive/persistence"
	"github.com/codehive/codehive/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyNotifier records published events instead of delivering them.
type spyNotifier struct {
	events []notify.Event
}

func (n *spyNotifier) Publish(ctx context.Context, event notify.Event) error {
	n.events = append(n.events, event)
	return nil
}

func (n *spyNotifier) Close() error { return nil }

func newTestService(t *testing.T) (*Service, *spyNotifier, persistence.Persister) {
	t.Helper()
	cfg := &config.Config{
		PersistenceConfig: config.PersistenceConfig{Type: "buntdb", DSN: ":memory:"},
	}
	persister, err := persistence.NewPersister(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = persister.Close() })
	spy := &spyNotifier{}
	return NewService(persister, spy), spy, persister
}

func storeRoom(t *testing.T, persister persistence.Persister, roomId string) {
	t.Helper()
	require.NoError(t, persister.StoreRoom(types.Room{
		Id:          roomId,
		HostUserId:  "alice",
		CurrentView: types.ViewWelcome,
		UpdatedAt:   time.Now(),
	}))
}

func TestCreateProject(t *testing.T) {
	svc, spy, _ := newTestService(t)
	created, err := svc.Create(context.Background(), "alice", "demo", "")
	require.NoError(t, err)
	assert.Equal(t, "demo", created.Name)
	assert.Equal(t, "alice", created.OwnerUserId)
	assert.Empty(t, created.Files)
	assert.Empty(t, spy.events, "no room, nothing to announce")

	_, err = svc.Create(context.Background(), "alice", "", "")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestOpenInRoom(t *testing.T) {
	svc, spy, persister := newTestService(t)
	storeRoom(t, persister, "room1")
	created, err := svc.Create(context.Background(), "alice", "demo", "room1")
	require.NoError(t, err)

	room := &types.Room{Id: "room1"}
	require.NoError(t, persister.GetRoom(room))
	assert.Equal(t, created.Id, room.ActiveProjectId)
	assert.True(t, room.SessionStarted)
	assert.Equal(t, types.ViewEditor, room.CurrentView)

	// project:activated first, then the authoritative file list
	require.Len(t, spy.events, 2)
	assert.Equal(t, notify.KindProjectActivated, spy.events[0].Kind)
	assert.Equal(t, notify.KindFilesUpdated, spy.events[1].Kind)
	assert.Equal(t, "room1", spy.events[0].RoomId)
	assert.Equal(t, created.Id, spy.events[0].ProjectId)
}

func TestOpenInRoomUnknownRoom(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, err := svc.Create(context.Background(), "alice", "demo", "")
	require.NoError(t, err)
	err = svc.OpenInRoom(context.Background(), created.Id, "nope", "alice")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCreateFile(t *testing.T) {
	svc, spy, persister := newTestService(t)
	storeRoom(t, persister, "room1")
	created, err := svc.Create(context.Background(), "alice", "demo", "")
	require.NoError(t, err)

	files, err := svc.CreateFile(context.Background(), created.Id, "room1", "alice", "/src/main.go", "package main")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "src/main.go", files[0].Path, "leading slash is normalized away")
	assert.Equal(t, "alice", files[0].LastEditedBy)

	require.Len(t, spy.events, 1)
	assert.Equal(t, notify.KindFilesUpdated, spy.events[0].Kind)
	assert.Len(t, spy.events[0].Files, 1)

	// same path again is a conflict, the list is unchanged
	_, err = svc.CreateFile(context.Background(), created.Id, "room1", "bob", "src/main.go", "other")
	assert.ErrorIs(t, err, ErrPathExists)
	loaded, err := svc.Get(created.Id)
	require.NoError(t, err)
	require.Len(t, loaded.Files, 1)
	assert.Equal(t, "package main", loaded.Files[0].Content)
}

func TestRenameFilePrefix(t *testing.T) {
	svc, _, persister := newTestService(t)
	storeRoom(t, persister, "room1")
	created, err := svc.Create(context.Background(), "alice", "demo", "")
	require.NoError(t, err)
	for _, path := range []string{"src/main.go", "src/util/helper.go", "readme.md"} {
		_, err = svc.CreateFile(context.Background(), created.Id, "room1", "alice", path, "")
		require.NoError(t, err)
	}

	files, err := svc.RenameFile(context.Background(), created.Id, "room1", "bob", "src", "lib")
	require.NoError(t, err)

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"lib/main.go", "lib/util/helper.go", "readme.md"}, paths)
}

func TestRenameSingleFile(t *testing.T) {
	svc, _, persister := newTestService(t)
	storeRoom(t, persister, "room1")
	created, err := svc.Create(context.Background(), "alice", "demo", "")
	require.NoError(t, err)
	_, err = svc.CreateFile(context.Background(), created.Id, "room1", "alice", "src/main.go", "")
	require.NoError(t, err)
	_, err = svc.CreateFile(context.Background(), created.Id, "room1", "alice", "src/maintenance.go", "")
	require.NoError(t, err)

	files, err := svc.RenameFile(context.Background(), created.Id, "room1", "alice", "src/main.go", "src/app.go")
	require.NoError(t, err)

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	// "src/maintenance.go" shares the string prefix but not the path prefix
	assert.ElementsMatch(t, []string{"src/app.go", "src/maintenance.go"}, paths)
}

func TestDeleteFilePrefix(t *testing.T) {
	svc, _, persister := newTestService(t)
	storeRoom(t, persister, "room1")
	created, err := svc.Create(context.Background(), "alice", "demo", "")
	require.NoError(t, err)
	for _, path := range []string{"src/main.go", "src/util/helper.go", "srcfoo.go"} {
		_, err = svc.CreateFile(context.Background(), created.Id, "room1", "alice", path, "")
		require.NoError(t, err)
	}

	files, err := svc.DeleteFile(context.Background(), created.Id, "room1", "alice", "src")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "srcfoo.go", files[0].Path)
}

func TestSaveFile(t *testing.T) {
	svc, spy, persister := newTestService(t)
	storeRoom(t, persister, "room1")
	created, err := svc.Create(context.Background(), "alice", "demo", "")
	require.NoError(t, err)
	_, err = svc.CreateFile(context.Background(), created.Id, "room1", "alice", "main.go", "v1")
	require.NoError(t, err)
	broadcastsBefore := len(spy.events)

	require.NoError(t, svc.SaveFile(context.Background(), created.Id, "room1", "bob", "main.go", "v2"))
	loaded, err := svc.Get(created.Id)
	require.NoError(t, err)
	assert.Equal(t, "v2", loaded.Files[0].Content)
	assert.Equal(t, "bob", loaded.Files[0].LastEditedBy)
	assert.Len(t, spy.events, broadcastsBefore, "save does not broadcast")

	err = svc.SaveFile(context.Background(), created.Id, "room1", "bob", "missing.go", "x")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestListByOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), "alice", "one", "")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "alice", "two", "")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "bob", "other", "")
	require.NoError(t, err)

	mine, err := svc.ListByOwner("alice")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
