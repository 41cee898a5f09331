package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/siddu-catalog/internal/model"
)

func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestMemoryMovieStore_AddAppliesDefaults(t *testing.T) {
	s := NewMemoryMovieStore()
	s.Now = fixedClock(time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))

	m, err := s.Add(context.Background(), model.Movie{Title: "  Dune  "})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Dune", m.Title)
	assert.Equal(t, "Dune", m.OriginalTitle)
	assert.Equal(t, "Unrated", m.Certification)
	assert.Equal(t, model.StatusDraft, m.Status)
	assert.Equal(t, "Manual", m.ImportedFrom)
	assert.Equal(t, "2025-03-04", m.ReleaseDate)
	assert.Equal(t, PlaceholderPoster, m.Poster)
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"cast":[]`)
	assert.Contains(t, string(b), `"galleryImages":[]`)
	assert.Contains(t, string(b), `"isPublished":false`)
}

func TestMemoryMovieStore_ReadsAreCopies(t *testing.T) {
	s := NewMemoryMovieStore(SeedMovies()...)
	ctx := context.Background()

	m, err := s.GetByID(ctx, "1")
	require.NoError(t, err)
	m.Genres[0] = "Horror"
	m.Title = "mutated"

	again, err := s.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, model.Genre("Action"), again.Genres[0])
	assert.Equal(t, "Placeholder Movie Alpha", again.Title)
}

func TestMemoryMovieStore_UpdateKeepsCreatedAt(t *testing.T) {
	s := NewMemoryMovieStore(SeedMovies()...)
	s.Now = fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	m, err := s.GetByID(ctx, "2")
	require.NoError(t, err)
	created := m.CreatedAt
	m.Status = model.StatusReleased
	m.CreatedAt = time.Time{}

	got, err := s.Update(ctx, *m)
	require.NoError(t, err)
	assert.Equal(t, created, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(created))
	assert.True(t, got.IsPublished())

	_, err = s.Update(ctx, model.Movie{ID: "nope"})
	assert.ErrorIs(t, err, ErrMovieNotFound)
	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(SeedMovies()))
}

func TestMemoryMovieStore_RemoveUnknownIsNoop(t *testing.T) {
	s := NewMemoryMovieStore(SeedMovies()...)
	ctx := context.Background()

	require.NoError(t, s.Remove(ctx, "does-not-exist"))
	require.NoError(t, s.Remove(ctx, "1"))
	_, err := s.GetByID(ctx, "1")
	assert.ErrorIs(t, err, ErrMovieNotFound)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", all[0].ID)
}

func TestMemoryMovieStore_AddAllIsAtomic(t *testing.T) {
	s := NewMemoryMovieStore(model.Movie{ID: "dup", Title: "Existing"})
	calls := 0
	s.NewID = func() string {
		calls++
		if calls == 2 {
			return "dup"
		}
		return "fresh"
	}

	_, err := s.AddAll(context.Background(), []model.Movie{{Title: "One"}, {Title: "Two"}})
	assert.ErrorIs(t, err, ErrConflict)
	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryMovieStore_LatencyHonoursContext(t *testing.T) {
	s := NewMemoryMovieStore()
	s.Latency = time.Second
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
