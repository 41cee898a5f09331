package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/siddu-catalog/internal/model"
)

func fp(v float64) *float64 { return &v }

func TestSort_NumericTreatsMissingAsZero(t *testing.T) {
	a := movie("a", "A")
	a.Budget = fp(50)
	b := movie("b", "B")
	c := movie("c", "C")
	c.Budget = fp(-1)

	got := Sort([]model.Movie{a, b, c}, SortState{Field: FieldBudget, Direction: Asc})
	assert.Equal(t, []string{"c", "b", "a"}, ids(got))

	got = Sort([]model.Movie{a, b, c}, SortState{Field: FieldBudget, Direction: Desc})
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}

func TestSort_StringIsCaseInsensitive(t *testing.T) {
	a := movie("a", "banana")
	b := movie("b", "Apple")
	c := movie("c", "cherry")
	got := Sort([]model.Movie{a, b, c}, SortState{Field: FieldTitle, Direction: Asc})
	assert.Equal(t, []string{"b", "a", "c"}, ids(got))
}

func TestSort_DatesAndUnparsable(t *testing.T) {
	a := movie("a", "A")
	a.ReleaseDate = "2021-05-01"
	b := movie("b", "B")
	b.ReleaseDate = "not a date"
	c := movie("c", "C")
	c.ReleaseDate = "2023-01-09"

	got := Sort([]model.Movie{a, b, c}, DefaultSort)
	assert.Equal(t, []string{"c", "a", "b"}, ids(got))
}

func TestSort_StableForEqualKeys(t *testing.T) {
	in := []model.Movie{movie("1", "x"), movie("2", "X"), movie("3", "x"), movie("4", "a")}
	got := Sort(in, SortState{Field: FieldTitle, Direction: Asc})
	assert.Equal(t, []string{"4", "1", "2", "3"}, ids(got))

	got = Sort(in, SortState{Field: FieldTitle, Direction: Desc})
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(got))
}

func TestSort_FixedPoint(t *testing.T) {
	in := catalogOf25()
	for i := range in {
		in[i].SidduScore = float64(i % 4)
		in[i].Runtime = 90 + i%3
	}
	for field := range sortFields {
		for _, dir := range []Direction{Asc, Desc} {
			st := SortState{Field: field, Direction: dir}
			once := Sort(in, st)
			assert.Equal(t, ids(once), ids(Sort(once, st)), "%s %s", field, dir)
		}
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	in := []model.Movie{movie("b", "B"), movie("a", "A")}
	_ = Sort(in, SortState{Field: FieldTitle, Direction: Asc})
	assert.Equal(t, []string{"b", "a"}, ids(in))
}

func TestSortState_Toggle(t *testing.T) {
	st := DefaultSort.Toggle(FieldReleaseDate)
	assert.Equal(t, SortState{Field: FieldReleaseDate, Direction: Asc}, st)
	st = st.Toggle(FieldReleaseDate)
	assert.Equal(t, SortState{Field: FieldReleaseDate, Direction: Desc}, st)
	st = st.Toggle(FieldTitle)
	assert.Equal(t, SortState{Field: FieldTitle, Direction: Asc}, st)
}

func TestParseSortField(t *testing.T) {
	f, err := ParseSortField("boxOffice")
	require.NoError(t, err)
	assert.Equal(t, FieldBoxOffice, f)

	_, err = ParseSortField("genres")
	assert.ErrorIs(t, err, ErrUnknownSortField)

	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}
