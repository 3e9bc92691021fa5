package domain

import "time"

// User represents an identity record in the storefront. A user created
// through an external provider may have no password hash at all.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized returns a copy of the user with the password hash removed.
// Handlers and token validation must never expose the hash beyond the
// credential verifier.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}

// ProviderMapping links an external identity provider subject to a local user.
// The (Provider, ProviderID) pair is unique; one user may carry several
// mappings. Mappings are created once and never updated.
type ProviderMapping struct {
	Provider   string    `json:"provider"`
	ProviderID string    `json:"provider_id"`
	UserID     int64     `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}
