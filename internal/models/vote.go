package models

import "time"

// Vote model - the single current preference of one voter identity.
// The unique index on VoterIdentity keeps the ledger at one row per voter:
// casting again swaps EntryID and bumps VoteChangeCount instead of inserting.
type Vote struct {
	ID              int       `gorm:"primaryKey" json:"id"`
	VoterIdentity   string    `gorm:"uniqueIndex;not null" json:"-"`
	EntryID         int       `gorm:"index;not null" json:"entry_id"`
	VoteChangeCount int       `gorm:"not null;default:0" json:"vote_change_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
