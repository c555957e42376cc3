package models

import "time"

// RefreshToken is the single server-side refresh token of a user. The row is
// rotated in place: Token, CreatedAt and Expires are overwritten while ID and
// UserID stay fixed, so at most one token per owner is live at any instant.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
	Expires   time.Time
}

// Expired reports whether the token is no longer exchangeable at instant now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.Expires)
}
