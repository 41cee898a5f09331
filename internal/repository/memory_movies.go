package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/siddu-catalog/internal/model"
)

// MemoryMovieStore keeps the catalog in process memory.  It is used for
// development and tests.  Records are deep-copied on the way in and out so
// callers can never mutate stored state except through Update.
type MemoryMovieStore struct {
	mu    sync.RWMutex
	byID  map[string]model.Movie
	order []string

	// Now and NewID are replaceable for deterministic tests.
	Now   func() time.Time
	NewID func() string
	// Latency, when positive, delays every call to mimic a network hop.
	Latency time.Duration
}

// NewMemoryMovieStore returns a store preloaded with seed records.  Seed
// records keep their ids and timestamps.
func NewMemoryMovieStore(seed ...model.Movie) *MemoryMovieStore {
	s := &MemoryMovieStore{
		byID:  make(map[string]model.Movie, len(seed)),
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: NewMovieID,
	}
	for _, m := range seed {
		c := m.Clone()
		c.NormalizeLists()
		s.byID[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	return s
}

func (s *MemoryMovieStore) wait(ctx context.Context) error {
	if s.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// List returns every movie in insertion order.
func (s *MemoryMovieStore) List(ctx context.Context) ([]model.Movie, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Movie, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out, nil
}

// GetByID fetches one movie.
func (s *MemoryMovieStore) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	c := m.Clone()
	return &c, nil
}

// Add stores a new movie built from draft.
func (s *MemoryMovieStore) Add(ctx context.Context, draft model.Movie) (*model.Movie, error) {
	out, err := s.AddAll(ctx, []model.Movie{draft})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// AddAll stores every draft under a single lock so readers observe either
// none or all of them.
func (s *MemoryMovieStore) AddAll(ctx context.Context, drafts []model.Movie) ([]model.Movie, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	out := make([]model.Movie, 0, len(drafts))
	for _, d := range drafts {
		m := d.Clone()
		ApplyDefaults(&m, now)
		m.ID = s.NewID()
		if _, exists := s.byID[m.ID]; exists {
			return nil, ErrConflict
		}
		m.CreatedAt = now
		m.UpdatedAt = now
		out = append(out, m)
	}
	for _, m := range out {
		s.byID[m.ID] = m.Clone()
		s.order = append(s.order, m.ID)
	}
	return out, nil
}

// Update replaces the stored record, keeping its creation time.
func (s *MemoryMovieStore) Update(ctx context.Context, m model.Movie) (*model.Movie, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[m.ID]
	if !ok {
		return nil, ErrMovieNotFound
	}
	next := m.Clone()
	next.NormalizeLists()
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = s.Now()
	if next.UpdatedAt.Before(next.CreatedAt) {
		next.UpdatedAt = next.CreatedAt
	}
	s.byID[m.ID] = next
	out := next.Clone()
	return &out, nil
}

// Remove deletes a movie; unknown ids are ignored.
func (s *MemoryMovieStore) Remove(ctx context.Context, id string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return nil
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
