// Package memory is an in-process ledger repository. Nothing survives a
// restart; it backs DATA_BACKEND=memory and the test suites.
package memory

import (
	"context"
	"slices"
	"sync"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

type Store struct {
	mu       sync.Mutex
	entries  []core.Entry
	cats     []string
	total    core.Money
	writeErr error
	writes   int
}

var _ ledger.Repository = (*Store)(nil)

// New returns a repository pre-filled with cats and entries. A nil cats is a
// fresh store and gets core.DefaultCategories; a non-nil empty slice stays
// empty.
func New(cats []string, entries ...core.Entry) *Store {
	if cats == nil {
		cats = core.DefaultCategories
	}
	return &Store{
		cats:    slices.Clone(cats),
		entries: slices.Clone(entries),
		total:   core.Sum(entries),
	}
}

// FailWrites makes every following write return err until called with nil.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Writes reports how many writes were applied.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) Load(_ context.Context) (ledger.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.State{
		Entries:    slices.Clone(s.entries),
		Categories: slices.Clone(s.cats),
		Total:      s.total,
	}, nil
}

func (s *Store) AppendEntry(_ context.Context, e core.Entry, total core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.entries = append(s.entries, e)
	s.total = total
	s.writes++
	return nil
}

func (s *Store) ReplaceEntries(_ context.Context, entries []core.Entry, total core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.entries = slices.Clone(entries)
	s.total = total
	s.writes++
	return nil
}

func (s *Store) SaveCategories(_ context.Context, categories []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.cats = slices.Clone(categories)
	s.writes++
	return nil
}
