package catalog

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/siddu-catalog/internal/model"
	"github.com/iliyamo/siddu-catalog/internal/repository"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func movie(id, title string, genres ...model.Genre) model.Movie {
	return model.Movie{
		ID:          id,
		Title:       title,
		Genres:      genres,
		Status:      model.StatusDraft,
		ReleaseDate: "2023-06-01",
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
}

// catalogOf25 returns 25 movies, 12 of which are tagged Action.
func catalogOf25() []model.Movie {
	out := make([]model.Movie, 0, 25)
	for i := 0; i < 25; i++ {
		g := model.Genre("Drama")
		if i < 12 {
			g = "Action"
		}
		m := movie(fmt.Sprintf("m%02d", i), fmt.Sprintf("Movie %02d", i), g)
		m.ReleaseDate = fmt.Sprintf("20%02d-03-15", i)
		out = append(out, m)
	}
	return out
}

func newStore(t *testing.T, movies ...model.Movie) *repository.MemoryMovieStore {
	t.Helper()
	s := repository.NewMemoryMovieStore(movies...)
	clock := baseTime.Add(time.Hour)
	s.Now = func() time.Time { clock = clock.Add(time.Second); return clock }
	return s
}

func ids(movies []model.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.ID
	}
	return out
}

func TestFilter_GenreAction(t *testing.T) {
	got := Filter(catalogOf25(), FilterState{Genre: "Action"})
	assert.Len(t, got, 12)
	for _, m := range got {
		assert.True(t, m.HasGenre("Action"))
	}
}

func TestFilter_NoConstraintsReturnsCopy(t *testing.T) {
	in := catalogOf25()
	for _, st := range []FilterState{{}, {Genre: All, Status: All, Year: All}} {
		got := Filter(in, st)
		require.Equal(t, ids(in), ids(got))
		got[0].Title = "changed"
		assert.Equal(t, "Movie 00", in[0].Title)
	}
}

func TestFilter_SearchMatchesTitleOnly(t *testing.T) {
	a := movie("a", "The Dark Harbor")
	b := movie("b", "Sunrise")
	b.Synopsis = "a dark tale"
	got := Filter([]model.Movie{a, b}, FilterState{Search: "DARK"})
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestFilter_StatusExact(t *testing.T) {
	a := movie("a", "A")
	b := movie("b", "B")
	b.Status = model.StatusReleased
	got := Filter([]model.Movie{a, b}, FilterState{Status: "released"})
	assert.Equal(t, []string{"b"}, ids(got))
}

func TestFilter_YearIsStringPrefix(t *testing.T) {
	a := movie("a", "A")
	a.ReleaseDate = "2023-01-01"
	b := movie("b", "B")
	b.ReleaseDate = "2024-01-01"
	c := movie("c", "C")
	c.ReleaseDate = ""

	assert.Equal(t, []string{"a"}, ids(Filter([]model.Movie{a, b, c}, FilterState{Year: "2023"})))
	assert.Equal(t, []string{"a", "b"}, ids(Filter([]model.Movie{a, b, c}, FilterState{Year: "202"})))
}

func TestFilter_ConstraintsCombineWithAnd(t *testing.T) {
	a := movie("a", "Night Run", "Action")
	a.Status = model.StatusReleased
	b := movie("b", "Night Fall", "Action")
	c := movie("c", "Night Owl", "Drama")
	c.Status = model.StatusReleased

	got := Filter([]model.Movie{a, b, c}, FilterState{Search: "night", Genre: "Action", Status: "released", Year: "2023"})
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestFilter_Idempotent(t *testing.T) {
	in := catalogOf25()
	in[3].Status = model.StatusReleased
	in[20].Status = model.StatusArchived
	states := []FilterState{
		{},
		{Search: "movie 1"},
		{Genre: "Action"},
		{Genre: "Drama", Status: "draft"},
		{Year: "2010"},
		{Search: "0", Genre: "Action", Status: "released", Year: "20"},
	}
	for _, st := range states {
		once := Filter(in, st)
		twice := Filter(once, st)
		assert.Equal(t, ids(once), ids(twice), "state %+v", st)
	}
}

func TestFilterState_Normalize(t *testing.T) {
	f, err := FilterState{Search: "  x ", Genre: "sci-fi", Status: "RELEASED", Year: ""}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, FilterState{Search: "x", Genre: "Sci-Fi", Status: "released", Year: All}, f)

	_, err = FilterState{Genre: "Cooking"}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.True(t, IsValidation(err))

	_, err = FilterState{Status: "lost"}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
