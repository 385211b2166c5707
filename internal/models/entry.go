package models

import "time"

// Entry status values. An entry starts PENDING and is moved to a terminal
// state by a reviewer.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

type Entry struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`

	// Owner contact info, filled in by the submission workflow
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	AuthorPhone string `json:"-"` // only used for notifications

	Status     string `gorm:"index;not null;default:PENDING" json:"status"`
	Featured   bool   `gorm:"default:false" json:"featured"`
	FeaturedBy string `json:"featured_by,omitempty"`

	ApprovedBy string     `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	RejectedBy     string     `json:"rejected_by,omitempty"`
	RejectedReason string     `json:"rejected_reason,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateEntryRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	AuthorPhone string `json:"author_phone"`
}
