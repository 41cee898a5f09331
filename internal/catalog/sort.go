package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/siddu-catalog/internal/model"
)

// SortField names a sortable movie attribute using its JSON spelling.
type SortField string

const (
	FieldSidduScore    SortField = "sidduScore"
	FieldRuntime       SortField = "runtime"
	FieldBudget        SortField = "budget"
	FieldBoxOffice     SortField = "boxOffice"
	FieldReleaseDate   SortField = "releaseDate"
	FieldCreatedAt     SortField = "createdAt"
	FieldUpdatedAt     SortField = "updatedAt"
	FieldTitle         SortField = "title"
	FieldOriginalTitle SortField = "originalTitle"
	FieldStatus        SortField = "status"
	FieldCertification SortField = "certification"
	FieldImportedFrom  SortField = "importedFrom"
	FieldSynopsis      SortField = "synopsis"
	FieldTagline       SortField = "tagline"
)

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type fieldKind int

const (
	kindNumeric fieldKind = iota
	kindDate
	kindString
)

var sortFields = map[SortField]fieldKind{
	FieldSidduScore:    kindNumeric,
	FieldRuntime:       kindNumeric,
	FieldBudget:        kindNumeric,
	FieldBoxOffice:     kindNumeric,
	FieldReleaseDate:   kindDate,
	FieldCreatedAt:     kindDate,
	FieldUpdatedAt:     kindDate,
	FieldTitle:         kindString,
	FieldOriginalTitle: kindString,
	FieldStatus:        kindString,
	FieldCertification: kindString,
	FieldImportedFrom:  kindString,
	FieldSynopsis:      kindString,
	FieldTagline:       kindString,
}

// ParseSortField validates s against the sortable fields.
func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.TrimSpace(s))
	if _, ok := sortFields[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSortField, s)
	}
	return f, nil
}

// ParseDirection accepts "asc" or "desc" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// SortState is the active sort key and order.
type SortState struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort lists the newest releases first.
var DefaultSort = SortState{Field: FieldReleaseDate, Direction: Desc}

// Toggle returns the state after the user picks field: the same field
// flips direction, a different field starts ascending.
func (s SortState) Toggle(field SortField) SortState {
	if s.Field == field {
		if s.Direction == Asc {
			return SortState{Field: field, Direction: Desc}
		}
		return SortState{Field: field, Direction: Asc}
	}
	return SortState{Field: field, Direction: Asc}
}

// Sort returns a stably sorted copy of records.  Unknown fields leave the
// order unchanged.
func Sort(records []model.Movie, st SortState) []model.Movie {
	out := append(make([]model.Movie, 0, len(records)), records...)
	kind, ok := sortFields[st.Field]
	if !ok {
		return out
	}
	desc := st.Direction == Desc
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j], st.Field, kind)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compare(a, b model.Movie, f SortField, kind fieldKind) int {
	switch kind {
	case kindNumeric:
		return cmpFloat(numericValue(a, f), numericValue(b, f))
	case kindDate:
		return dateValue(a, f).Compare(dateValue(b, f))
	default:
		return strings.Compare(strings.ToLower(stringValue(a, f)), strings.ToLower(stringValue(b, f)))
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func numericValue(m model.Movie, f SortField) float64 {
	deref := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	switch f {
	case FieldSidduScore:
		return m.SidduScore
	case FieldRuntime:
		return float64(m.Runtime)
	case FieldBudget:
		return deref(m.Budget)
	case FieldBoxOffice:
		return deref(m.BoxOffice)
	}
	return 0
}

// dateValue returns the zero time for blank or unparsable release dates
// so they sort as the oldest entries.
func dateValue(m model.Movie, f SortField) time.Time {
	switch f {
	case FieldCreatedAt:
		return m.CreatedAt
	case FieldUpdatedAt:
		return m.UpdatedAt
	}
	if t, err := time.Parse("2006-01-02", m.ReleaseDate); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, m.ReleaseDate); err == nil {
		return t
	}
	return time.Time{}
}

func stringValue(m model.Movie, f SortField) string {
	switch f {
	case FieldTitle:
		return m.Title
	case FieldOriginalTitle:
		return m.OriginalTitle
	case FieldStatus:
		return string(m.Status)
	case FieldCertification:
		return m.Certification
	case FieldImportedFrom:
		return m.ImportedFrom
	case FieldSynopsis:
		return m.Synopsis
	case FieldTagline:
		return m.Tagline
	}
	return ""
}
