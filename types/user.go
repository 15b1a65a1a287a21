package types

import "time"

type User struct {
	Id         string    `json:"id" gorm:"primaryKey"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	LastOnline time.Time `json:"lastOnline"`
}

// DisplayName resolves the name shown to other participants, falling back to
// the e-mail address when no username is set.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}
