package transfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/siddu-catalog/internal/model"
)

func fieldError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Index: -1, Field: field, Message: fmt.Sprintf(format, args...)}
}

// CheckMovie validates a record about to be stored, whether it was typed
// in, edited or imported, and canonicalises its status and genres.
func CheckMovie(m *model.Movie) *ValidationError {
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return fieldError("title", "title is required")
	}
	if m.ReleaseDate != "" {
		if _, err := time.Parse("2006-01-02", m.ReleaseDate); err != nil {
			return fieldError("releaseDate", "releaseDate must be YYYY-MM-DD, got %q", m.ReleaseDate)
		}
	}
	if m.Status != "" {
		st, ok := model.ParseStatus(string(m.Status))
		if !ok {
			return fieldError("status", "unknown status %q", m.Status)
		}
		m.Status = st
	}
	for i, g := range m.Genres {
		canon, ok := model.ParseGenre(string(g))
		if !ok {
			return fieldError("genres", "unknown genre %q", g)
		}
		m.Genres[i] = canon
	}
	if m.Runtime < 0 {
		return fieldError("runtime", "runtime must not be negative")
	}
	if m.SidduScore < 0 || m.SidduScore > 10 {
		return fieldError("sidduScore", "sidduScore must be between 0 and 10")
	}
	if m.Budget != nil && *m.Budget < 0 {
		return fieldError("budget", "budget must not be negative")
	}
	if m.BoxOffice != nil && *m.BoxOffice < 0 {
		return fieldError("boxOffice", "boxOffice must not be negative")
	}
	return nil
}
