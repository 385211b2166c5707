package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/makershowcase/backend/internal/identity"
	"github.com/makershowcase/backend/internal/models"
	"github.com/makershowcase/backend/internal/ranking"
	"github.com/makershowcase/backend/internal/voting"
)

type EntryHandler struct {
	db       *gorm.DB
	ledger   *voting.Ledger
	engine   *ranking.Engine
	resolver *identity.Resolver
}

func NewEntryHandler(db *gorm.DB, resolver *identity.Resolver) *EntryHandler {
	return &EntryHandler{
		db:       db,
		ledger:   voting.NewLedger(db),
		engine:   ranking.NewEngine(db),
		resolver: resolver,
	}
}

// CreateEntry accepts a new showcase submission. Entries always start
// PENDING; only a reviewer can make them visible.
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var input models.CreateEntryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	entry := models.Entry{
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		AuthorName:  input.AuthorName,
		AuthorEmail: input.AuthorEmail,
		AuthorPhone: input.AuthorPhone,
		Status:      models.StatusPending,
	}

	if err := h.db.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create entry"})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetEntries returns the ranked listing of approved entries plus the podium.
// Listing and podium come from the same ranking pass, so they can never
// disagree about the order for one request.
func (h *EntryHandler) GetEntries(c *gin.Context) {
	ranked, err := h.engine.Compute()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rank entries"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	titleFilter := c.Query("title")

	listing := h.engine.List(ranked, page, pageSize, titleFilter)

	c.JSON(http.StatusOK, gin.H{
		"entries": listing.Entries,
		"meta":    listing.Meta,
		"podium":  h.engine.Podium(ranked),
	})
}

// GetEntry returns a single entry with its live tally and, when approved,
// its current global rank.
func (h *EntryHandler) GetEntry(c *gin.Context) {
	entryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry id"})
		return
	}

	var entry models.Entry
	if err := h.db.First(&entry, entryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	tally, err := h.ledger.Tally(entry.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to tally votes"})
		return
	}

	response := gin.H{
		"entry": entry,
		"tally": tally,
	}
	if entry.Status == models.StatusApproved {
		ranked, err := h.engine.Compute()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rank entries"})
			return
		}
		if re, ok := ranking.RankOf(ranked, entry.ID); ok {
			response["rank"] = re.Rank
		}
	}

	c.JSON(http.StatusOK, response)
}

// VoteEntry casts or switches the caller's single vote. The voter identity
// comes from the request origin, never from a session.
func (h *EntryHandler) VoteEntry(c *gin.Context) {
	entryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry id"})
		return
	}

	voterIdentity := h.resolver.FromRequest(c.Request)

	result, err := h.ledger.CastOrSwitch(voterIdentity, entryID)
	if err != nil {
		writeVotingError(c, err)
		return
	}

	message := "Vote recorded"
	if result.Switched {
		message = "Vote switched"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"result":  result,
	})
}
