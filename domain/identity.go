// Package domain contains core concepts of the chat system.
// This file defines the registered participant.
package domain

import "time"

// Identity is a registered participant. Username is globally unique.
// Online mirrors the presence table and may lag it by one update.
type Identity struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	Online       bool      `json:"isOnline"`
	CreatedAt    time.Time `json:"createdAt"`
}
