package handlers

import (
	"os"

	"gorm.io/gorm"

	"github.com/makershowcase/backend/internal/identity"
	"github.com/makershowcase/backend/internal/notify"
)

// Handler combines all handler types
type Handler struct {
	Auth       *AuthHandler
	Entry      *EntryHandler
	Moderation *ModerationHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB) *Handler {
	resolver := identity.NewResolver(os.Getenv("IDENTITY_LOOKUP_URL"))
	dispatcher := notify.NewDispatcherFromEnv()

	return &Handler{
		Auth:       NewAuthHandler(db),
		Entry:      NewEntryHandler(db, resolver),
		Moderation: NewModerationHandler(db, dispatcher),
	}
}
