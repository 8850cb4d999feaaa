package models

import (
	"time"
)

// Identity represents the identities table, one row per account.
type Identity struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile binds an identity to its wallet, written once at sign-up.
// An identity without a profile row is tolerated at login and routed
// to the landing view.
type Profile struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Wallet    string    `json:"wallet"`
	Certifier bool      `json:"certifier"`
	CreatedAt time.Time `json:"createdAt"`
}
