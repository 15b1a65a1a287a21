package room

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotHost       = errors.New("forbidden: not room host")
	ErrInviteExpired = errors.New("invite expired")
	ErrBadRequest    = errors.New("inviteCode or roomId required")
)
