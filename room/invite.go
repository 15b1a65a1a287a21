package room

import (
	"crypto/rand"
	"fmt"
	"time"
)

const inviteCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Invite is what the host gets back: the code, a shareable link and the
// expiry, if any.
type Invite struct {
	Code      string     `json:"inviteCode"`
	Link      string     `json:"link"`
	ExpiresAt *time.Time `json:"inviteExpiresAt,omitempty"`
}

// CreateInvite returns the room's invite. A new code is generated when
// regenerate is set or none exists yet; otherwise the existing one is
// returned. Only the host may call this. ttl > 0 sets a fresh expiry,
// ttl == 0 clears it.
func (s *Service) CreateInvite(roomId, requesterId string, regenerate bool, ttl time.Duration) (*Invite, error) {
	room, err := s.Get(roomId)
	if err != nil {
		return nil, err
	}
	if room.HostUserId != requesterId {
		return nil, ErrNotHost
	}

	if regenerate || room.InviteCode == "" {
		code, err := generateInviteCode(s.cfg.InviteConfig.CodeLength)
		if err != nil {
			return nil, err
		}
		room.InviteCode = code
		if ttl > 0 {
			expires := time.Now().Add(ttl)
			room.InviteExpiresAt = &expires
		} else {
			room.InviteExpiresAt = nil
		}
		room.UpdatedAt = time.Now()
		if err := s.persister.StoreRoom(*room); err != nil {
			return nil, err
		}
	}

	return &Invite{
		Code:      room.InviteCode,
		Link:      fmt.Sprintf("%s/editor?invite=%s", s.cfg.InviteConfig.LinkOrigin, room.InviteCode),
		ExpiresAt: room.InviteExpiresAt,
	}, nil
}

// generateInviteCode returns a fixed-length upper-case alphanumeric code from
// a cryptographically random byte source.
func generateInviteCode(length int) (string, error) {
	if length <= 0 {
		length = 7
	}
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	code := make([]byte, length)
	for i, b := range raw {
		code[i] = inviteCharset[int(b)%len(inviteCharset)]
	}
	return string(code), nil
}
