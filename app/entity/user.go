package entity

import "time"

type User struct {
	ID           uint64
	FirstName    string
	LastName     string
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RevokedToken denylists a token id until the token would have expired anyway.
type RevokedToken struct {
	ID        uint64
	JTI       string
	ExpiresAt time.Time
	CreatedAt time.Time
}
