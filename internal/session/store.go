// Package session persists each admin's catalog workspace between
// requests and serialises the operations one admin triggers, so a double
// submitted delete or batch cannot run twice.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/siddu-catalog/internal/catalog"
)

// ErrBusy is returned by Acquire while another operation for the same user
// is still in flight.
var ErrBusy = errors.New("another operation is in progress")

// Store loads and saves workspace state keyed by user.
type Store interface {
	// Load returns the saved state, or a fresh one when nothing is stored.
	Load(ctx context.Context, userKey string) (catalog.State, error)
	Save(ctx context.Context, userKey string, st catalog.State) error
	// Acquire takes the per-user operation lock.  The returned func
	// releases it and is safe to call more than once.
	Acquire(ctx context.Context, userKey string) (func(), error)
}

type memEntry struct {
	state   catalog.State
	expires time.Time
}

// MemoryStore keeps workspaces in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]memEntry
	locks    map[string]struct{}
	ttl      time.Duration
	pageSize int
	now      func() time.Time
}

// NewMemoryStore returns a store whose entries expire ttl after their last
// save.  pageSize seeds fresh workspaces.
func NewMemoryStore(ttl time.Duration, pageSize int) *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]memEntry),
		locks:    make(map[string]struct{}),
		ttl:      ttl,
		pageSize: pageSize,
		now:      time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, userKey string) (catalog.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userKey]
	if !ok || (s.ttl > 0 && s.now().After(e.expires)) {
		delete(s.entries, userKey)
		return catalog.NewState(s.pageSize), nil
	}
	return copyState(e.state), nil
}

func (s *MemoryStore) Save(_ context.Context, userKey string, st catalog.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userKey] = memEntry{state: copyState(st), expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Acquire(_ context.Context, userKey string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.locks[userKey]; held {
		return nil, ErrBusy
	}
	s.locks[userKey] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.locks, userKey)
			s.mu.Unlock()
		})
	}, nil
}

// copyState detaches the selection and pending batch from the caller.
func copyState(st catalog.State) catalog.State {
	out := st
	out.Selection = catalog.NewSelection(st.Selection.IDs()...)
	if st.Batch.Pending != nil {
		p := *st.Batch.Pending
		p.IDs = append([]string(nil), p.IDs...)
		out.Batch.Pending = &p
	}
	return out
}
