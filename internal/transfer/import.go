// Package transfer converts between the catalog and its JSON exchange
// formats: bulk import payloads, drafts picked from external movie APIs,
// and export files.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/siddu-catalog/internal/model"
)

// ValidationError rejects a whole import.  Message is shown to the user
// verbatim; Found carries the offending item when there is one.
type ValidationError struct {
	Index   int
	Field   string
	Message string
	Found   json.RawMessage
}

func (e *ValidationError) Error() string { return e.Message }

func itemError(i int, field, format string, args ...any) *ValidationError {
	return &ValidationError{Index: i, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Import sources recorded in Movie.ImportedFrom.
const (
	SourceJSON   = "JSON"
	SourceTMDB   = "TMDB"
	SourceOMDB   = "OMDB"
	SourceManual = "Manual"
	SourceAPI    = "API"
)

// ImportSource labels a batch of drafts by their common ImportedFrom, or
// SourceAPI when the batch mixes TMDB and OMDB picks.
func ImportSource(drafts []model.Movie) string {
	if len(drafts) == 0 {
		return SourceAPI
	}
	src := drafts[0].ImportedFrom
	for _, d := range drafts[1:] {
		if d.ImportedFrom != src {
			return SourceAPI
		}
	}
	return src
}

// ParseImport validates a `{"movies": [...]}` payload and returns one
// draft per item.  Either every item is valid or nothing is returned.
func ParseImport(raw []byte) ([]model.Movie, error) {
	if !json.Valid(raw) {
		return nil, &ValidationError{Index: -1, Message: "Invalid JSON format. Please check your data and try again."}
	}
	var (
		root  map[string]json.RawMessage
		items []json.RawMessage
	)
	err := json.Unmarshal(raw, &root)
	list, ok := root["movies"]
	if err != nil || !ok || json.Unmarshal(list, &items) != nil || items == nil {
		return nil, &ValidationError{Index: -1, Field: "movies",
			Message: "Invalid JSON: The root element must be an object with a 'movies' property that is an array."}
	}
	if len(items) == 0 {
		return nil, &ValidationError{Index: -1, Field: "movies",
			Message: "Invalid JSON: The 'movies' array is empty. Add at least one movie to import."}
	}

	drafts := make([]model.Movie, 0, len(items))
	for i, item := range items {
		d, err := parseItem(i, item)
		if err != nil {
			err.Found = bytes.TrimSpace(item)
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

func parseItem(i int, item json.RawMessage) (model.Movie, *ValidationError) {
	var fields map[string]any
	if err := json.Unmarshal(item, &fields); err != nil {
		return model.Movie{}, itemError(i, "", "Invalid JSON: Item at index %d is not an object.", i)
	}
	for _, field := range []string{"title", "releaseDate"} {
		if s, _ := fields[field].(string); strings.TrimSpace(s) == "" {
			return model.Movie{}, itemError(i, field, "Invalid JSON: Item at index %d is missing '%s'.", i, field)
		}
	}

	var m model.Movie
	if err := json.Unmarshal(item, &m); err != nil {
		return model.Movie{}, itemError(i, "", "Invalid JSON: Item at index %d has a malformed field: %v.", i, err)
	}
	if m.Status == "" {
		m.Status = model.StatusDraft
	} else {
		st, ok := model.ParseStatus(string(m.Status))
		if !ok {
			return model.Movie{}, itemError(i, "status", "Invalid JSON: Item at index %d has unknown status '%s'.", i, m.Status)
		}
		m.Status = st
	}
	for gi, g := range m.Genres {
		canon, ok := model.ParseGenre(string(g))
		if !ok {
			return model.Movie{}, itemError(i, "genres", "Invalid JSON: Item at index %d has unknown genre '%s'.", i, g)
		}
		m.Genres[gi] = canon
	}
	if m.Runtime < 0 {
		return model.Movie{}, itemError(i, "runtime", "Invalid JSON: Item at index %d has a negative runtime.", i)
	}
	if verr := CheckMovie(&m); verr != nil {
		return model.Movie{}, itemError(i, verr.Field, "Invalid JSON: Item at index %d has an invalid '%s': %s.", i, verr.Field, verr.Message)
	}

	m.ID = ""
	m.CreatedAt = time.Time{}
	m.UpdatedAt = time.Time{}
	m.ImportedFrom = SourceJSON
	return m, nil
}

// APIItem is a search hit picked from an external movie database.
type APIItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Year      string `json:"year"`
	PosterURL string `json:"posterUrl,omitempty"`
	Source    string `json:"source"`
}

// Artwork used for API imports without a poster.
const (
	APIPosterFallback   = "/abstract-movie-poster.png"
	APIBackdropFallback = "/movie-backdrop.png"
)

// DraftsFromAPI turns external search hits into draft movies.
func DraftsFromAPI(items []APIItem, now time.Time) ([]model.Movie, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Index: -1, Field: "movies", Message: "Select at least one movie to import."}
	}
	out := make([]model.Movie, 0, len(items))
	for i, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			return nil, itemError(i, "title", "Item at index %d is missing 'title'.", i)
		}
		src := strings.ToUpper(strings.TrimSpace(it.Source))
		if src != SourceTMDB && src != SourceOMDB {
			return nil, itemError(i, "source", "Item at index %d has unsupported source '%s'.", i, it.Source)
		}
		date := now.UTC().Format("2006-01-02")
		if y := strings.TrimSpace(it.Year); y != "" {
			if _, err := time.Parse("2006", y); err != nil {
				return nil, itemError(i, "year", "Item at index %d has invalid year '%s'.", i, it.Year)
			}
			date = y + "-01-01"
		}
		poster := it.PosterURL
		if poster == "" {
			poster = APIPosterFallback
		}
		out = append(out, model.Movie{
			Title:         title,
			OriginalTitle: title,
			Poster:        poster,
			Backdrop:      APIBackdropFallback,
			ReleaseDate:   date,
			Status:        model.StatusDraft,
			Genres:        []model.Genre{},
			Synopsis:      "Imported from " + src,
			Runtime:       120,
			Languages:     []string{"English"},
			Certification: "Unrated",
			ReleaseDates:  []model.ReleaseDateInfo{{Region: "US", Date: date, Type: "Theatrical"}},
			ImportedFrom:  src,
		})
	}
	return out, nil
}

// TemplateFileName is the download name of SampleTemplate.
const TemplateFileName = "sample-movies-template.json"

// SampleTemplate returns an indented payload that ParseImport accepts.
func SampleTemplate() []byte {
	tpl := map[string]any{
		"movies": []map[string]any{{
			"title":       "Movie Title",
			"synopsis":    "Brief description of the movie",
			"releaseDate": "2024-01-01",
			"runtime":     120,
			"genres":      []string{"Action", "Thriller"},
			"cast":        []map[string]any{{"name": "Actor Name", "character": "Character Name"}},
			"crew":        []map[string]any{{"name": "Director Name", "role": "Director"}},
			"sidduScore":  8.5,
			"status":      "released",
		}},
	}
	b, _ := json.MarshalIndent(tpl, "", "  ")
	return b
}
