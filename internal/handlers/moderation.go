package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/makershowcase/backend/internal/moderation"
	"github.com/makershowcase/backend/internal/notify"
	"github.com/makershowcase/backend/internal/voting"
)

type ModerationHandler struct {
	service    *moderation.Service
	dispatcher *notify.Dispatcher
}

func NewModerationHandler(db *gorm.DB, dispatcher *notify.Dispatcher) *ModerationHandler {
	return &ModerationHandler{
		service:    moderation.NewService(db),
		dispatcher: dispatcher,
	}
}

// GetPending returns the review queue, oldest first.
func (h *ModerationHandler) GetPending(c *gin.Context) {
	entries, err := h.service.Pending()
	if err != nil {
		log.Printf("Failed to list pending entries: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending entries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ApproveEntry approves a single entry, optionally featuring it in the same
// transition. The owner notification is dispatched after the fact and is
// never awaited.
func (h *ModerationHandler) ApproveEntry(c *gin.Context) {
	entryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry id"})
		return
	}

	actor := c.GetString("reviewer_username")
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Reviewer not authenticated"})
		return
	}

	var input struct {
		Featured bool `json:"featured"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	entry, err := h.service.Approve(entryID, actor, input.Featured)
	if err != nil {
		writeModerationError(c, err)
		return
	}

	go h.dispatcher.EntryApproved(*entry)

	c.JSON(http.StatusOK, gin.H{
		"message": "Entry approved",
		"entry":   entry,
	})
}

// RejectEntry rejects a single pending entry with a mandatory reason.
func (h *ModerationHandler) RejectEntry(c *gin.Context) {
	entryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry id"})
		return
	}

	actor := c.GetString("reviewer_username")
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Reviewer not authenticated"})
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.service.Reject(entryID, actor, input.Reason)
	if err != nil {
		writeModerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Entry rejected",
		"entry":   entry,
	})
}

// BulkApprove approves a batch of entries as one unit and fans out one
// notification per approved entry after the commit.
func (h *ModerationHandler) BulkApprove(c *gin.Context) {
	actor := c.GetString("reviewer_username")
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Reviewer not authenticated"})
		return
	}

	var input struct {
		IDs []int `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.service.BulkApprove(input.IDs, actor)
	if err != nil {
		writeModerationError(c, err)
		return
	}

	for _, entry := range entries {
		go h.dispatcher.EntryApproved(entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Entries approved",
		"entries": entries,
	})
}

// writeModerationError maps the moderation error taxonomy onto HTTP.
// Conflict bodies carry the prior actor's details so the client never needs
// a follow-up read to explain the failure.
func writeModerationError(c *gin.Context, err error) {
	var validationErr *moderation.ValidationError
	var conflictErr *moderation.ConflictError
	var bulkConflictErr *moderation.BulkConflictError

	switch {
	case errors.As(err, &validationErr):
		body := gin.H{"error": validationErr.Message}
		if len(validationErr.MissingIDs) > 0 {
			body["missing_ids"] = validationErr.MissingIDs
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, moderation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
	case errors.As(err, &conflictErr):
		body := gin.H{
			"error":  conflictErr.Error(),
			"status": conflictErr.Status,
			"actor":  conflictErr.Actor,
			"at":     conflictErr.At,
		}
		if conflictErr.Reason != "" {
			body["reason"] = conflictErr.Reason
		}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &bulkConflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Some entries are no longer pending",
			"entry_ids": bulkConflictErr.EntryIDs,
		})
	default:
		log.Printf("Moderation storage error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// writeVotingError maps the voting error taxonomy onto HTTP.
func writeVotingError(c *gin.Context, err error) {
	var validationErr *voting.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, voting.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
	case errors.Is(err, voting.ErrNotEligible):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Entry is not open for voting"})
	default:
		log.Printf("Voting storage error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
