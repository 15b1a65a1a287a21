package types

import (
	"time"
)

const (
	ViewWelcome = "welcome"
	ViewEditor  = "editor"
)

// Room is one collaborative session: a host, zero or more guests, the shared
// view and the currently active project. It is read-modify-persisted by every
// join, leave, view change and project activation; there is deliberately no
// optimistic-concurrency guard on these writes (last write wins).
type Room struct {
	Id              string          `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name"`
	HostUserId      string          `json:"hostUserId" gorm:"index"`
	InviteCode      string          `json:"inviteCode,omitempty" gorm:"index"`
	InviteExpiresAt *time.Time      `json:"inviteExpiresAt,omitempty"`
	SessionStarted  bool            `json:"sessionStarted"`
	ActiveProjectId string          `json:"activeProjectId,omitempty"`
	CurrentView     string          `json:"currentView"`
	Participants    ParticipantList `json:"participants"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Participant is a user's membership record within a room. SocketId is the id
// of the one live connection currently representing the user, or empty.
// Invariant: at most one Participant per user id in a room, and Online
// implies SocketId is set.
type Participant struct {
	UserId     string    `json:"userId"`
	Username   string    `json:"username"`
	SocketId   string    `json:"socketId,omitempty"`
	Online     bool      `json:"online"`
	LastActive time.Time `json:"lastActive"`
}

// Find returns the participant entry for userId, or nil.
func (r *Room) Find(userId string) *Participant {
	for i := range r.Participants {
		if r.Participants[i].UserId == userId {
			return &r.Participants[i]
		}
	}
	return nil
}

// InviteExpired reports whether the room's invite code has an expiry in the
// past. A room without expiry never expires.
func (r *Room) InviteExpired(now time.Time) bool {
	return r.InviteExpiresAt != nil && r.InviteExpiresAt.Before(now)
}

// ParticipantInfo is the public projection of a Participant broadcast in
// participants-updated events.
type ParticipantInfo struct {
	UserId     string    `json:"userId"`
	Username   string    `json:"username"`
	Online     bool      `json:"online"`
	SocketId   string    `json:"socketId,omitempty"`
	IsHost     bool      `json:"isHost"`
	LastActive time.Time `json:"lastActive"`
}

// PresenceView projects all participants for broadcasting.
func (r *Room) PresenceView() []ParticipantInfo {
	infos := make([]ParticipantInfo, 0, len(r.Participants))
	for _, p := range r.Participants {
		infos = append(infos, ParticipantInfo{
			UserId:     p.UserId,
			Username:   p.Username,
			Online:     p.Online,
			SocketId:   p.SocketId,
			IsHost:     p.UserId == r.HostUserId,
			LastActive: p.LastActive,
		})
	}
	return infos
}
