package model

import "time"

// User represents an account as stored in the `users` table.  The
// password hash never leaves the server.
//
// Fields:
//
//	ID           – UUID primary key.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash of the password.
//	CreatedAt    – signup time (UTC).
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
