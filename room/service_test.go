package room

import (
	"regexp"
	"testing"
	"time"

	"github.com/codehive/codehive/config"
	"github.com/codehive/codehive/persistence"
	"github.com/codehive/codehive/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, persistence.Persister) {
	t.Helper()
	cfg := &config.Config{
		PersistenceConfig: config.PersistenceConfig{Type: "buntdb", DSN: ":memory:"},
		InviteConfig:      config.InviteConfig{CodeLength: 7, LinkOrigin: "http://localhost:5173"},
	}
	persister, err := persistence.NewPersister(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = persister.Close() })
	return NewService(persister, cfg), persister
}

func TestCreateRoom(t *testing.T) {
	svc, _ := newTestService(t)
	host := types.User{Id: "alice", Username: "Alice"}

	created, err := svc.Create(host, "standup")
	require.NoError(t, err)
	assert.Equal(t, "standup", created.Name)
	assert.Equal(t, "alice", created.HostUserId)
	assert.Equal(t, types.ViewWelcome, created.CurrentView)
	require.Len(t, created.Participants, 1)
	assert.Equal(t, "alice", created.Participants[0].UserId)
	assert.False(t, created.Participants[0].Online, "host is offline until the websocket handshake")

	loaded, err := svc.Get(created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Id, loaded.Id)
}

func TestCreateRoomGeneratedName(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(types.User{Id: "alice"}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, created.Name)
}

func TestGetUnknownRoom(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get("nope")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCreateInvite(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(types.User{Id: "alice"}, "r")
	require.NoError(t, err)

	invite, err := svc.CreateInvite(created.Id, "alice", false, 0)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{7}$`), invite.Code)
	assert.Contains(t, invite.Link, "?invite="+invite.Code)
	assert.Nil(t, invite.ExpiresAt)

	// without regenerate the existing code is returned
	again, err := svc.CreateInvite(created.Id, "alice", false, 0)
	require.NoError(t, err)
	assert.Equal(t, invite.Code, again.Code)

	regen, err := svc.CreateInvite(created.Id, "alice", true, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, invite.Code, regen.Code)
	require.NotNil(t, regen.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Minute), *regen.ExpiresAt, 5*time.Second)
}

func TestCreateInviteNotHost(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(types.User{Id: "alice"}, "r")
	require.NoError(t, err)

	_, err = svc.CreateInvite(created.Id, "bob", false, 0)
	assert.ErrorIs(t, err, ErrNotHost)
}

func TestJoinByInviteCode(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(types.User{Id: "alice"}, "r")
	require.NoError(t, err)
	invite, err := svc.CreateInvite(created.Id, "alice", false, 0)
	require.NoError(t, err)

	summary, err := svc.Join(invite.Code, "", types.User{Id: "bob", Username: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, created.Id, summary.RoomId)
	assert.Equal(t, "alice", summary.HostUserId)

	// joining again does not duplicate the participant
	_, err = svc.Join(invite.Code, "", types.User{Id: "bob"})
	require.NoError(t, err)
	loaded, err := svc.Get(created.Id)
	require.NoError(t, err)
	assert.Len(t, loaded.Participants, 2)
	assert.False(t, loaded.Find("bob").Online)
}

func TestJoinByRoomId(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.Create(types.User{Id: "alice"}, "r")
	require.NoError(t, err)

	summary, err := svc.Join("", created.Id, types.User{Id: "bob"})
	require.NoError(t, err)
	assert.Equal(t, created.Id, summary.RoomId)
}

func TestJoinExpiredInvite(t *testing.T) {
	svc, persister := newTestService(t)
	created, err := svc.Create(types.User{Id: "alice"}, "r")
	require.NoError(t, err)
	invite, err := svc.CreateInvite(created.Id, "alice", false, time.Minute)
	require.NoError(t, err)

	// push the expiry into the past
	loaded, err := svc.Get(created.Id)
	require.NoError(t, err)
	past := time.Now().Add(-time.Second)
	loaded.InviteExpiresAt = &past
	require.NoError(t, persister.StoreRoom(*loaded))

	_, err = svc.Join(invite.Code, "", types.User{Id: "bob"})
	assert.ErrorIs(t, err, ErrInviteExpired)

	// and the guest was not added
	loaded, err = svc.Get(created.Id)
	require.NoError(t, err)
	assert.Nil(t, loaded.Find("bob"))
}

func TestJoinValidation(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Join("", "", types.User{Id: "bob"})
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = svc.Join("NOSUCH1", "", types.User{Id: "bob"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
