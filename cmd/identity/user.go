package identity

import "time"

// User is the canonical security principal.
//
// ID is immutable once assigned by the store. Username and Email are unique
// (enforced by the store via their normalized forms). Enabled may be toggled
// externally; authentication treats the record as read-only.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Enabled      bool
	CreatedAt    time.Time
}
