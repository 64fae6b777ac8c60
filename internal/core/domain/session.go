package domain

import "time"

// Session binds a browser session to the upstream bearer credential obtained
// at login. The token is opaque: it is never decoded and carries no local
// expiry — the platform API is the only judge of its validity.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
