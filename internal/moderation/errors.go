package moderation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound means the entry id does not exist.
var ErrNotFound = errors.New("entry not found")

// ValidationError covers bad moderation input: an empty rejection reason,
// an empty batch, or batch ids that resolve to nothing.
type ValidationError struct {
	Message    string
	MissingIDs []int
}

func (e *ValidationError) Error() string {
	if len(e.MissingIDs) > 0 {
		return fmt.Sprintf("%s: %v", e.Message, e.MissingIDs)
	}
	return e.Message
}

// ConflictError is returned when a transition targets an entry already in a
// terminal state. It carries who acted, when, and (for rejections) why, so
// the caller never needs a follow-up read to explain the failure.
type ConflictError struct {
	EntryID int
	Status  string
	Actor   string
	At      time.Time
	Reason  string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("entry %d already %s by %s (%s)", e.EntryID, strings.ToLower(e.Status), e.Actor, e.Reason)
	}
	return fmt.Sprintf("entry %d already %s by %s", e.EntryID, strings.ToLower(e.Status), e.Actor)
}

// BulkConflictError lists every entry in a batch that was no longer pending.
// The batch is rejected as a whole; none of the ids were modified.
type BulkConflictError struct {
	EntryIDs []int
}

func (e *BulkConflictError) Error() string {
	return fmt.Sprintf("entries not pending: %v", e.EntryIDs)
}
