package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/siddu-catalog/internal/model"
)

// MovieStore is the data source behind every catalog operation.  All
// methods may block on I/O and must be treated as possibly concurrent
// with each other; there is no transaction spanning several calls.
type MovieStore interface {
	// List returns every stored movie in a stable order.
	List(ctx context.Context) ([]model.Movie, error)
	// GetByID returns ErrMovieNotFound when id is unknown.
	GetByID(ctx context.Context, id string) (*model.Movie, error)
	// Add assigns a fresh id and timestamps and fills documented defaults.
	Add(ctx context.Context, draft model.Movie) (*model.Movie, error)
	// AddAll adds every draft or none of them.
	AddAll(ctx context.Context, drafts []model.Movie) ([]model.Movie, error)
	// Update replaces the stored record with the same id and refreshes
	// UpdatedAt.  It returns ErrMovieNotFound without side effects when the
	// id is unknown.
	Update(ctx context.Context, m model.Movie) (*model.Movie, error)
	// Remove deletes permanently.  Removing an unknown id is a no-op.
	Remove(ctx context.Context, id string) error
}

// Placeholder artwork used when a draft carries none.
const (
	PlaceholderPoster   = "/placeholder.svg?height=300&width=200"
	PlaceholderBackdrop = "/placeholder.svg?height=200&width=350"
)

// NewMovieID returns a fresh opaque movie identifier.
func NewMovieID() string { return uuid.NewString() }

// ApplyDefaults fills the fields a draft may omit.  now supplies the
// fallback release date.
func ApplyDefaults(m *model.Movie, now time.Time) {
	m.Title = strings.TrimSpace(m.Title)
	if m.OriginalTitle == "" {
		m.OriginalTitle = m.Title
	}
	if m.Poster == "" {
		m.Poster = PlaceholderPoster
	}
	if m.Backdrop == "" {
		m.Backdrop = PlaceholderBackdrop
	}
	if m.ReleaseDate == "" {
		m.ReleaseDate = now.UTC().Format("2006-01-02")
	}
	if m.Status == "" {
		m.Status = model.StatusDraft
	}
	if m.Certification == "" {
		m.Certification = "Unrated"
	}
	if m.ImportedFrom == "" {
		m.ImportedFrom = "Manual"
	}
	if m.Runtime < 0 {
		m.Runtime = 0
	}
	m.NormalizeLists()
}
