package ranking

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/makershowcase/backend/internal/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	PodiumSize      = 3
)

// RankedEntry is an approved entry with its live tally and 1-based global
// rank. Rank is derived on every read and never stored.
type RankedEntry struct {
	models.Entry
	Tally int64 `json:"tally"`
	Rank  int   `json:"rank" gorm:"-"`
}

// PageMeta describes one page of the ranked listing.
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Page is one page of ranked entries plus its metadata.
type Page struct {
	Entries []RankedEntry `json:"entries"`
	Meta    PageMeta      `json:"meta"`
}

// Engine computes the global ranking over approved entries.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Compute runs one ranking pass: tally every approved entry, order by tally
// descending with entry id ascending as the tie-break, and assign 1-based
// ranks. Every read view for a request must derive from a single Compute
// call so listing and podium can never disagree.
func (e *Engine) Compute() ([]RankedEntry, error) {
	var ranked []RankedEntry
	err := e.db.Model(&models.Entry{}).
		Select("entries.*, COUNT(votes.id) AS tally").
		Joins("LEFT JOIN votes ON votes.entry_id = entries.id").
		Where("entries.status = ?", models.StatusApproved).
		Group("entries.id").
		Order("tally DESC, entries.id ASC").
		Find(&ranked).Error
	if err != nil {
		return nil, fmt.Errorf("compute ranking: %w", err)
	}

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// List filters a ranking pass by title substring (case-insensitive) and
// paginates it. Ranks stay global: filtering narrows the listing but never
// renumbers the entries it keeps.
func (e *Engine) List(ranked []RankedEntry, page, pageSize int, titleFilter string) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	filtered := ranked
	if titleFilter != "" {
		needle := strings.ToLower(titleFilter)
		filtered = make([]RankedEntry, 0, len(ranked))
		for _, re := range ranked {
			if strings.Contains(strings.ToLower(re.Title), needle) {
				filtered = append(filtered, re)
			}
		}
	}

	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := filtered[start:end]
	if items == nil {
		items = []RankedEntry{}
	}

	return Page{
		Entries: items,
		Meta: PageMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}
}

// Podium returns the first three entries of a ranking pass.
func (e *Engine) Podium(ranked []RankedEntry) []RankedEntry {
	if len(ranked) > PodiumSize {
		return ranked[:PodiumSize]
	}
	return ranked
}

// RankOf finds an entry's position in a ranking pass; 0 means unranked.
func RankOf(ranked []RankedEntry, entryID int) (RankedEntry, bool) {
	for _, re := range ranked {
		if re.ID == entryID {
			return re, true
		}
	}
	return RankedEntry{}, false
}
