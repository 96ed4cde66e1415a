// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account that owns feedback boxes.
type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}
