// Package room owns the room store: creation, invites and the REST-side join
// flow. Connection-scoped participant state (socket id, online flag) is
// mutated only by the realtime gateway, never here.
package room

import (
	"errors"
	"time"

	"github.com/codehive/codehive/config"
	"github.com/codehive/codehive/persistence"
	"github.com/codehive/codehive/types"
	"github.com/folkengine/goname"
	"github.com/google/uuid"
)

type Service struct {
	persister persistence.Persister
	cfg       *config.Config
}

func NewService(persister persistence.Persister, cfg *config.Config) *Service {
	return &Service{persister: persister, cfg: cfg}
}

// Create makes a new room with host as its first (offline) participant. The
// gateway marks the host online once the websocket handshake happens. An
// empty name gets a generated one.
func (s *Service) Create(host types.User, name string) (*types.Room, error) {
	if name == "" {
		name = goname.New(goname.FantasyMap).FirstLast()
	}
	now := time.Now()
	room := types.Room{
		Id:          uuid.NewString(),
		Name:        name,
		HostUserId:  host.Id,
		CurrentView: types.ViewWelcome,
		Participants: types.ParticipantList{
			{
				UserId:     host.Id,
				Username:   host.DisplayName(),
				Online:     false,
				LastActive: now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.persister.StoreRoom(room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Get loads a room by id.
func (s *Service) Get(roomId string) (*types.Room, error) {
	room := &types.Room{Id: roomId}
	if err := s.persister.GetRoom(room); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// Summary is the bootstrap payload a guest needs to enter the correct view
// without waiting for a broadcast.
type Summary struct {
	RoomId          string `json:"roomId"`
	Name            string `json:"name"`
	HostUserId      string `json:"hostUserId"`
	ActiveProjectId string `json:"activeProjectId,omitempty"`
	CurrentView     string `json:"currentView"`
}

// Join resolves a room by invite code or room id and idempotently adds user
// as an offline participant. Expired invites fail with ErrInviteExpired and
// do not add a participant.
func (s *Service) Join(inviteCode, roomId string, user types.User) (*Summary, error) {
	var room *types.Room
	switch {
	case inviteCode != "":
		var err error
		room, err = s.persister.GetRoomByInviteCode(inviteCode)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return nil, ErrRoomNotFound
			}
			return nil, err
		}
	case roomId != "":
		var err error
		room, err = s.Get(roomId)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrBadRequest
	}

	if room.InviteExpired(time.Now()) {
		return nil, ErrInviteExpired
	}

	if room.Find(user.Id) == nil {
		room.Participants = append(room.Participants, types.Participant{
			UserId:     user.Id,
			Username:   user.DisplayName(),
			Online:     false,
			LastActive: time.Now(),
		})
		room.UpdatedAt = time.Now()
		if err := s.persister.StoreRoom(*room); err != nil {
			return nil, err
		}
	}

	return &Summary{
		RoomId:          room.Id,
		Name:            room.Name,
		HostUserId:      room.HostUserId,
		ActiveProjectId: room.ActiveProjectId,
		CurrentView:     room.CurrentView,
	}, nil
}
