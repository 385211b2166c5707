package voting

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/makershowcase/backend/internal/models"
)

// ErrNotFound means the entry being voted on does not exist.
var ErrNotFound = errors.New("entry not found")

// ErrNotEligible means the entry exists but is not approved for voting.
var ErrNotEligible = errors.New("entry is not approved for voting")

// ValidationError covers unusable voter identities.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// CastResult describes the outcome of a cast: whether it was this voter's
// first cast or a switch, and the live tally of the target entry afterwards.
type CastResult struct {
	EntryID         int   `json:"entry_id"`
	Switched        bool  `json:"switched"`
	VoteChangeCount int   `json:"vote_change_count"`
	Tally           int64 `json:"tally"`
}

// Ledger stores at most one vote row per voter identity.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// CastOrSwitch records voterIdentity's current preference as entryID.
// The write is an upsert keyed only by voter_identity: the first cast inserts
// a row, every later cast by the same identity moves that row's target and
// bumps vote_change_count. The unique index closes the concurrent first-cast
// race; the losing insert lands on the existing row instead of duplicating it.
func (l *Ledger) CastOrSwitch(voterIdentity string, entryID int) (*CastResult, error) {
	if voterIdentity == "" || voterIdentity == "unknown" {
		return nil, &ValidationError{Message: "voter identity could not be resolved"}
	}

	var entry models.Entry
	if err := l.db.Select("id", "status").First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load entry %d: %w", entryID, err)
	}
	if entry.Status != models.StatusApproved {
		return nil, ErrNotEligible
	}

	var changeCount int
	err := l.db.Raw(`
		INSERT INTO votes (voter_identity, entry_id, vote_change_count, created_at, updated_at)
		VALUES (?, ?, 0, NOW(), NOW())
		ON CONFLICT (voter_identity) DO UPDATE
			SET entry_id = EXCLUDED.entry_id,
			    vote_change_count = votes.vote_change_count + 1,
			    updated_at = NOW()
		RETURNING vote_change_count
	`, voterIdentity, entryID).Scan(&changeCount).Error
	if err != nil {
		return nil, fmt.Errorf("cast vote for entry %d: %w", entryID, err)
	}

	tally, err := l.Tally(entryID)
	if err != nil {
		return nil, err
	}

	return &CastResult{
		EntryID:         entryID,
		Switched:        changeCount > 0,
		VoteChangeCount: changeCount,
		Tally:           tally,
	}, nil
}

// Tally counts the ledger rows currently targeting entryID. Always a live
// query; there is no cached counter on the entry.
func (l *Ledger) Tally(entryID int) (int64, error) {
	var tally int64
	if err := l.db.Model(&models.Vote{}).
		Where("entry_id = ?", entryID).
		Count(&tally).Error; err != nil {
		return 0, fmt.Errorf("tally entry %d: %w", entryID, err)
	}
	return tally, nil
}

// Current returns the ledger row for a voter identity, if any.
func (l *Ledger) Current(voterIdentity string) (*models.Vote, error) {
	var vote models.Vote
	err := l.db.Where("voter_identity = ?", voterIdentity).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load vote for %q: %w", voterIdentity, err)
	}
	return &vote, nil
}
