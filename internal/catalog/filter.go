// Package catalog holds the admin movie workspace: the Filter, Sort and
// Paginate stages that derive a page from the store, the selection set,
// and the batch action state machine.  The stages are pure; they never
// mutate their input and always return a fresh slice.
package catalog

import (
	"fmt"
	"strings"

	"github.com/iliyamo/siddu-catalog/internal/model"
)

// All is the sentinel filter value meaning "no constraint".
const All = "all"

// FilterState is the set of constraints applied by Filter.  Empty strings
// and "all" both mean the constraint is inactive.
type FilterState struct {
	Search string `json:"search"`
	Genre  string `json:"genre"`
	Status string `json:"status"`
	Year   string `json:"year"`
}

func active(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, All)
}

// Normalize canonicalises genre and status spelling and rejects values
// outside the closed sets.
func (f FilterState) Normalize() (FilterState, error) {
	out := FilterState{
		Search: strings.TrimSpace(f.Search),
		Genre:  All,
		Status: All,
		Year:   All,
	}
	if active(f.Genre) {
		g, ok := model.ParseGenre(f.Genre)
		if !ok {
			return FilterState{}, fmt.Errorf("%w: unknown genre %q", ErrInvalidFilter, f.Genre)
		}
		out.Genre = string(g)
	}
	if active(f.Status) {
		s, ok := model.ParseStatus(f.Status)
		if !ok {
			return FilterState{}, fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, f.Status)
		}
		out.Status = string(s)
	}
	if active(f.Year) {
		out.Year = strings.TrimSpace(f.Year)
	}
	return out, nil
}

// Filter returns the records matching every active constraint in st.
// The title search is a case-insensitive substring match and the year is
// matched as a prefix of the release date string.
func Filter(records []model.Movie, st FilterState) []model.Movie {
	search := strings.ToLower(strings.TrimSpace(st.Search))
	out := make([]model.Movie, 0, len(records))
	for _, m := range records {
		if search != "" && !strings.Contains(strings.ToLower(m.Title), search) {
			continue
		}
		if active(st.Genre) && !m.HasGenre(model.Genre(st.Genre)) {
			continue
		}
		if active(st.Status) && string(m.Status) != st.Status {
			continue
		}
		if active(st.Year) && (m.ReleaseDate == "" || !strings.HasPrefix(m.ReleaseDate, strings.TrimSpace(st.Year))) {
			continue
		}
		out = append(out, m)
	}
	return out
}
