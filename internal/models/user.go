package models

import "time"

// User represents a user in the system
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Not serialized
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
}
