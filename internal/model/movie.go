package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the lifecycle state of a movie in the catalog.  It is the
// single source of truth for publication: IsPublished and IsArchived are
// derived from it and never stored.
type Status string

const (
	StatusDraft          Status = "draft"
	StatusReleased       Status = "released"
	StatusArchived       Status = "archived"
	StatusUpcoming       Status = "upcoming"
	StatusInProduction   Status = "in-production"
	StatusPostProduction Status = "post-production"
)

// AllStatuses lists every status accepted by validation and filters.
var AllStatuses = []Status{
	StatusUpcoming,
	StatusReleased,
	StatusArchived,
	StatusDraft,
	StatusInProduction,
	StatusPostProduction,
}

// ParseStatus normalizes s and reports whether it names a known status.
func ParseStatus(s string) (Status, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Genre is one of the fixed genre tags of the catalog.
type Genre string

// AllGenres is the closed set of genre tags.
var AllGenres = []Genre{
	"Action", "Adventure", "Animation", "Biography", "Comedy", "Crime",
	"Documentary", "Drama", "Family", "Fantasy", "History", "Horror",
	"Music", "Mystery", "Romance", "Sci-Fi", "Sport", "Thriller", "War",
	"Western", "TV Movie",
}

// ParseGenre matches s case-insensitively against AllGenres and returns the
// canonical spelling.
func ParseGenre(s string) (Genre, bool) {
	s = strings.TrimSpace(s)
	for _, g := range AllGenres {
		if strings.EqualFold(string(g), s) {
			return g, true
		}
	}
	return "", false
}

// CastMember is a credited performer.
type CastMember struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Image     string `json:"image,omitempty"`
	Order     int    `json:"order"`
}

// CrewMember is a credited crew member.
type CrewMember struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Image      string `json:"image,omitempty"`
}

// StreamingLink points at one platform offering the movie in one region.
type StreamingLink struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Region   string `json:"region"`
	URL      string `json:"url"`
	Type     string `json:"type"`    // subscription | rent | buy
	Price    string `json:"price,omitempty"`
	Quality  string `json:"quality"` // SD | HD | 4K
	Verified bool   `json:"verified"`
}

// ReleaseDateInfo is a regional release of a given type.
type ReleaseDateInfo struct {
	ID     string `json:"id,omitempty"`
	Region string `json:"region"`
	Date   string `json:"date"` // YYYY-MM-DD
	Type   string `json:"type"` // Theatrical | Digital | Physical | Festival | Premiere
}

// Award is an award won or nominated for.
type Award struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Year     int    `json:"year"`
	Category string `json:"category"`
	Status   string `json:"status"` // Winner | Nominee
}

// Movie is the unit entity of the catalog.
//
// Fields:
//
//	ID             – opaque identifier assigned by the store, immutable.
//	ReleaseDate    – primary release date as YYYY-MM-DD.
//	Runtime        – minutes, never negative.
//	Status         – lifecycle state; publication flags derive from it.
//	SidduScore     – platform rating, 0 when unrated.
//	Budget         – nil when unknown.
//	BoxOffice      – nil when unknown.
//	ImportedFrom   – TMDB, OMDB, JSON or Manual.
//	CreatedAt      – set by the store on creation.
//	UpdatedAt      – refreshed by the store on every mutation.
type Movie struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	OriginalTitle       string            `json:"originalTitle"`
	Synopsis            string            `json:"synopsis"`
	Tagline             string            `json:"tagline,omitempty"`
	Poster              string            `json:"poster,omitempty"`
	Backdrop            string            `json:"backdrop,omitempty"`
	TrailerURL          string            `json:"trailerUrl,omitempty"`
	Genres              []Genre           `json:"genres"`
	ReleaseDate         string            `json:"releaseDate"`
	Runtime             int               `json:"runtime"`
	Status              Status            `json:"status"`
	SidduScore          float64           `json:"sidduScore"`
	Certification       string            `json:"certification"`
	Languages           []string          `json:"languages"`
	Budget              *float64          `json:"budget,omitempty"`
	BoxOffice           *float64          `json:"boxOffice,omitempty"`
	Keywords            []string          `json:"keywords"`
	ProductionCompanies []string          `json:"productionCompanies"`
	CountriesOfOrigin   []string          `json:"countriesOfOrigin"`
	GalleryImages       []string          `json:"galleryImages"`
	Cast                []CastMember      `json:"cast"`
	Crew                []CrewMember      `json:"crew"`
	Awards              []Award           `json:"awards"`
	StreamingLinks      []StreamingLink   `json:"streamingLinks"`
	ReleaseDates        []ReleaseDateInfo `json:"releaseDates"`
	ImportedFrom        string            `json:"importedFrom"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// IsPublished reports whether the movie is visible on the public site.
func (m Movie) IsPublished() bool { return m.Status == StatusReleased }

// IsArchived reports whether the movie has been archived.
func (m Movie) IsArchived() bool { return m.Status == StatusArchived }

// HasGenre reports whether g is one of the movie's genres.
func (m Movie) HasGenre(g Genre) bool {
	for _, mg := range m.Genres {
		if mg == g {
			return true
		}
	}
	return false
}

// MarshalJSON emits the stored fields plus the derived isPublished and
// isArchived flags.
func (m Movie) MarshalJSON() ([]byte, error) {
	type plain Movie
	return json.Marshal(struct {
		plain
		IsPublished bool `json:"isPublished"`
		IsArchived  bool `json:"isArchived"`
	}{plain(m), m.IsPublished(), m.IsArchived()})
}

// Clone returns a deep copy so callers can mutate the result without
// touching the original's slices or pointers.
func (m Movie) Clone() Movie {
	c := m
	c.Genres = cloneSlice(m.Genres)
	c.Languages = cloneSlice(m.Languages)
	c.Keywords = cloneSlice(m.Keywords)
	c.ProductionCompanies = cloneSlice(m.ProductionCompanies)
	c.CountriesOfOrigin = cloneSlice(m.CountriesOfOrigin)
	c.GalleryImages = cloneSlice(m.GalleryImages)
	c.Cast = cloneSlice(m.Cast)
	c.Crew = cloneSlice(m.Crew)
	c.Awards = cloneSlice(m.Awards)
	c.StreamingLinks = cloneSlice(m.StreamingLinks)
	c.ReleaseDates = cloneSlice(m.ReleaseDates)
	if m.Budget != nil {
		b := *m.Budget
		c.Budget = &b
	}
	if m.BoxOffice != nil {
		b := *m.BoxOffice
		c.BoxOffice = &b
	}
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// NormalizeLists replaces nil list fields with empty slices so JSON output
// always carries arrays rather than null.
func (m *Movie) NormalizeLists() {
	if m.Genres == nil {
		m.Genres = []Genre{}
	}
	if m.Languages == nil {
		m.Languages = []string{}
	}
	if m.Keywords == nil {
		m.Keywords = []string{}
	}
	if m.ProductionCompanies == nil {
		m.ProductionCompanies = []string{}
	}
	if m.CountriesOfOrigin == nil {
		m.CountriesOfOrigin = []string{}
	}
	if m.GalleryImages == nil {
		m.GalleryImages = []string{}
	}
	if m.Cast == nil {
		m.Cast = []CastMember{}
	}
	if m.Crew == nil {
		m.Crew = []CrewMember{}
	}
	if m.Awards == nil {
		m.Awards = []Award{}
	}
	if m.StreamingLinks == nil {
		m.StreamingLinks = []StreamingLink{}
	}
	if m.ReleaseDates == nil {
		m.ReleaseDates = []ReleaseDateInfo{}
	}
}
