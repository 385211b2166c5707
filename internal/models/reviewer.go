package models

import "time"

// Reviewer is a moderation actor. Reviewer usernames are what end up in the
// approved_by / rejected_by fields on entries.
type Reviewer struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token    string   `json:"token"`
	Reviewer Reviewer `json:"reviewer"`
	Message  string   `json:"message"`
}
