// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// Users sign up with an email and password. The password itself is never
// stored — only its bcrypt hash (see internal/auth). Email is unique across
// the store: the sqlite backend enforces it with a UNIQUE constraint, the
// workbook backend with a pre-insert lookup.
//
// PasswordHash is tagged json:"-" so it can never leak into an API response,
// no matter how carelessly a handler encodes the struct.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}
