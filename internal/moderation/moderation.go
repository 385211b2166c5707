package moderation

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/makershowcase/backend/internal/models"
)

// Service owns the entry lifecycle: PENDING -> APPROVED | REJECTED.
// It holds no state of its own; every check-then-write races through the
// database as a single atomic statement or transaction.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Approve moves an entry to APPROVED and records the acting reviewer.
// When featured is true the featured flag is set in the same statement, so a
// crash can never leave an approved-but-not-featured entry behind.
// Approving an already-approved entry returns a ConflictError carrying the
// original approver and timestamp; the stored fields are never overwritten.
func (s *Service) Approve(entryID int, actor string, featured bool) (*models.Entry, error) {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":          models.StatusApproved,
		"approved_by":     actor,
		"approved_at":     now,
		"rejected_by":     "",
		"rejected_reason": "",
		"rejected_at":     nil,
		"updated_at":      now,
	}
	if featured {
		updates["featured"] = true
		updates["featured_by"] = actor
	}

	// The status guard makes the check and the write one atomic statement:
	// of two concurrent approvals exactly one matches a non-approved row.
	res := s.db.Model(&models.Entry{}).
		Where("id = ? AND status <> ?", entryID, models.StatusApproved).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("approve entry %d: %w", entryID, res.Error)
	}

	if res.RowsAffected == 0 {
		return nil, s.conflictFor(entryID)
	}

	var entry models.Entry
	if err := s.db.First(&entry, entryID).Error; err != nil {
		return nil, fmt.Errorf("reload entry %d: %w", entryID, err)
	}
	return &entry, nil
}

// Reject moves a PENDING entry to REJECTED with a mandatory reason.
// Rejecting an entry in either terminal state returns a ConflictError with
// the prior actor's details.
func (s *Service) Reject(entryID int, actor, reason string) (*models.Entry, error) {
	if reason == "" {
		return nil, &ValidationError{Message: "rejection reason is required"}
	}

	now := time.Now().UTC()
	res := s.db.Model(&models.Entry{}).
		Where("id = ? AND status = ?", entryID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":          models.StatusRejected,
			"rejected_by":     actor,
			"rejected_reason": reason,
			"rejected_at":     now,
			"updated_at":      now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("reject entry %d: %w", entryID, res.Error)
	}

	if res.RowsAffected == 0 {
		return nil, s.conflictFor(entryID)
	}

	var entry models.Entry
	if err := s.db.First(&entry, entryID).Error; err != nil {
		return nil, fmt.Errorf("reload entry %d: %w", entryID, err)
	}
	return &entry, nil
}

// BulkApprove approves every id in the batch or none of them.
// All rows are locked up front; if any id is unknown or any locked row is no
// longer PENDING, the transaction rolls back and the error names every
// offending id. Notification fan-out is the caller's job, after commit.
func (s *Service) BulkApprove(ids []int, actor string) ([]models.Entry, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, &ValidationError{Message: "no entry ids given"}
	}

	var approved []models.Entry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entries []models.Entry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Find(&entries).Error; err != nil {
			return fmt.Errorf("lock entries: %w", err)
		}

		if len(entries) != len(ids) {
			found := make(map[int]bool, len(entries))
			for _, e := range entries {
				found[e.ID] = true
			}
			var missing []int
			for _, id := range ids {
				if !found[id] {
					missing = append(missing, id)
				}
			}
			return &ValidationError{Message: "unknown entry ids", MissingIDs: missing}
		}

		var offending []int
		for _, e := range entries {
			if e.Status != models.StatusPending {
				offending = append(offending, e.ID)
			}
		}
		if len(offending) > 0 {
			sort.Ints(offending)
			return &BulkConflictError{EntryIDs: offending}
		}

		now := time.Now().UTC()
		res := tx.Model(&models.Entry{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":      models.StatusApproved,
				"approved_by": actor,
				"approved_at": now,
				"updated_at":  now,
			})
		if res.Error != nil {
			return fmt.Errorf("approve batch: %w", res.Error)
		}
		if res.RowsAffected != int64(len(ids)) {
			return fmt.Errorf("approve batch: expected %d rows, got %d", len(ids), res.RowsAffected)
		}

		return tx.Where("id IN ?", ids).Order("id asc").Find(&approved).Error
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// Pending returns the review queue, oldest submissions first.
func (s *Service) Pending() ([]models.Entry, error) {
	var entries []models.Entry
	if err := s.db.Where("status = ?", models.StatusPending).
		Order("created_at asc").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list pending entries: %w", err)
	}
	return entries, nil
}

// conflictFor explains why a guarded update matched nothing.
func (s *Service) conflictFor(entryID int) error {
	var entry models.Entry
	if err := s.db.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load entry %d: %w", entryID, err)
	}

	conflict := &ConflictError{EntryID: entry.ID, Status: entry.Status}
	switch entry.Status {
	case models.StatusApproved:
		conflict.Actor = entry.ApprovedBy
		if entry.ApprovedAt != nil {
			conflict.At = *entry.ApprovedAt
		}
	case models.StatusRejected:
		conflict.Actor = entry.RejectedBy
		conflict.Reason = entry.RejectedReason
		if entry.RejectedAt != nil {
			conflict.At = *entry.RejectedAt
		}
	}
	return conflict
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
