// Package ledger owns the shared expense ledger: entries, categories and the
// running total. Every mutation runs in one critical section that includes
// the repository write, and in-memory state is only replaced after the write
// succeeded, so a failed write leaves the ledger exactly as it was.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"ledgerbot/internal/core"
)

type (
	// State is a point-in-time copy of the ledger.
	State struct {
		Entries    []core.Entry
		Categories []string
		Total      core.Money
	}

	// Result describes an entry touched by a mutation and the total after it.
	Result struct {
		Entry core.Entry
		Total core.Money
	}

	// Repository persists the ledger. Each write call must apply fully or not
	// at all.
	Repository interface {
		// Ping checks that the backing store is reachable without reading
		// or writing ledger data.
		Ping(ctx context.Context) error
		Load(ctx context.Context) (State, error)
		AppendEntry(ctx context.Context, e core.Entry, total core.Money) error
		ReplaceEntries(ctx context.Context, entries []core.Entry, total core.Money) error
		SaveCategories(ctx context.Context, categories []string) error
	}
)

type Store struct {
	mu   sync.Mutex
	repo Repository
	now  func() time.Time

	entries    []core.Entry
	categories []string
	total      core.Money
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the clock used for date labels.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads the ledger from repo. The total is rebuilt from the stored
// entries. Seeding default categories is up to the repository, which seeds
// only a store that never held a category list, so a list the users emptied
// stays empty.
func Open(ctx context.Context, repo Repository, opts ...Option) (*Store, error) {
	s := &Store{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	st, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load ledger: %w", core.ErrStorage, err)
	}

	s.entries = slices.Clone(st.Entries)
	s.categories = dedupe(st.Categories)
	s.total = core.Sum(s.entries)
	if s.total != st.Total {
		slog.WarnContext(ctx, "Stored total differs from entries, using rebuilt total",
			"component", "ledger",
			"stored_total", st.Total.String(),
			"rebuilt_total", s.total.String())
	}

	slog.InfoContext(ctx, "Ledger opened",
		"component", "ledger",
		"entries", len(s.entries),
		"categories", len(s.categories),
		"total", s.total.String())
	return s, nil
}

// AddEntry appends an expense dated today and adds it to the total.
func (s *Store) AddEntry(ctx context.Context, category string, amount core.Money) (Result, error) {
	category, err := core.ValidateCategory(category)
	if err != nil {
		return Result{}, err
	}
	if err := amount.Validate(); err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := core.NewEntry(core.DateLabel(s.now()), category, amount)
	total := s.total.Add(core.ExtractAmount(e.Line()))
	if err := s.repo.AppendEntry(ctx, e, total); err != nil {
		return Result{}, fmt.Errorf("%w: append entry: %w", core.ErrStorage, err)
	}

	s.entries = append(s.entries, e)
	s.total = total

	slog.InfoContext(ctx, "Entry added",
		"component", "ledger",
		"category", category,
		"amount", amount.String(),
		"total", total.String())
	return Result{Entry: e, Total: total}, nil
}

// ListEntries returns a copy of the entries in insertion order.
func (s *Store) ListEntries(_ context.Context) []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// DeleteEntry removes the entry at the 1-based index and rebuilds the total.
func (s *Store) DeleteEntry(ctx context.Context, index int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return Result{}, err
	}

	removed := s.entries[index-1]
	next := slices.Delete(slices.Clone(s.entries), index-1, index)
	if err := s.replace(ctx, next); err != nil {
		return Result{}, err
	}

	slog.InfoContext(ctx, "Entry deleted",
		"component", "ledger",
		"index", index,
		"line", removed.Line(),
		"total", s.total.String())
	return Result{Entry: removed, Total: s.total}, nil
}

// EditEntry replaces the amount of the entry at the 1-based index, keeping
// its date and category, and rebuilds the total.
func (s *Store) EditEntry(ctx context.Context, index int, amount core.Money) (Result, error) {
	if err := amount.Validate(); err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return Result{}, err
	}

	next := slices.Clone(s.entries)
	next[index-1] = next[index-1].WithAmount(amount, core.DateLabel(s.now()))
	if err := s.replace(ctx, next); err != nil {
		return Result{}, err
	}

	edited := s.entries[index-1]
	slog.InfoContext(ctx, "Entry edited",
		"component", "ledger",
		"index", index,
		"line", edited.Line(),
		"total", s.total.String())
	return Result{Entry: edited, Total: s.total}, nil
}

// Reset clears every entry and zeroes the total. Categories are kept.
// It returns the total that was settled.
func (s *Store) Reset(ctx context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paid := s.total
	if err := s.replace(ctx, nil); err != nil {
		return core.Money{}, err
	}

	slog.InfoContext(ctx, "Ledger reset", "component", "ledger", "paid", paid.String())
	return paid, nil
}

// AddCategory appends name unless an identical name already exists.
func (s *Store) AddCategory(ctx context.Context, name string) error {
	name, err := core.ValidateCategory(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.categories, name) {
		slog.DebugContext(ctx, "Category already present", "component", "ledger", "category", name)
		return nil
	}

	next := append(slices.Clone(s.categories), name)
	if err := s.repo.SaveCategories(ctx, next); err != nil {
		return fmt.Errorf("%w: save categories: %w", core.ErrStorage, err)
	}
	s.categories = next

	slog.InfoContext(ctx, "Category added", "component", "ledger", "category", name)
	return nil
}

// DeleteCategory removes name from the selectable categories. Entries that
// reference it are left alone.
func (s *Store) DeleteCategory(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.categories, name)
	if i < 0 {
		return nil
	}

	next := slices.Delete(slices.Clone(s.categories), i, i+1)
	if err := s.repo.SaveCategories(ctx, next); err != nil {
		return fmt.Errorf("%w: save categories: %w", core.ErrStorage, err)
	}
	s.categories = next

	slog.InfoContext(ctx, "Category deleted", "component", "ledger", "category", name)
	return nil
}

// Categories returns a copy of the selectable categories.
func (s *Store) Categories(_ context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories)
}

func (s *Store) Total(_ context.Context) core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Snapshot returns a consistent copy of the whole ledger.
func (s *Store) Snapshot(_ context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Entries:    slices.Clone(s.entries),
		Categories: slices.Clone(s.categories),
		Total:      s.total,
	}
}

// replace persists next with a total rebuilt from scratch, then swaps it in.
// Callers hold s.mu.
func (s *Store) replace(ctx context.Context, next []core.Entry) error {
	total := core.Sum(next)
	if err := s.repo.ReplaceEntries(ctx, next, total); err != nil {
		return fmt.Errorf("%w: replace entries: %w", core.ErrStorage, err)
	}
	s.entries = next
	s.total = total
	return nil
}

func (s *Store) checkIndex(index int) error {
	if index < 1 || index > len(s.entries) {
		return fmt.Errorf("%w: %d not in [1, %d]", core.ErrIndexOutOfRange, index, len(s.entries))
	}
	return nil
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
