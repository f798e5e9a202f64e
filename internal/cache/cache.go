package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache defines a generic keyed cache
type Cache[K comparable, V any] interface {
	// Get retrieves a value and refreshes its expiry
	Get(key K) (V, bool)

	// Set stores a value
	Set(key K, data V)

	// Delete removes a key
	Delete(key K)

	// Size returns the current number of items
	Size() int
}

// Cleaner is implemented by caches that can drop expired items
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically cleans every registered cache
type Manager struct {
	caches []Cleaner
}

func NewManager() *Manager {
	return &Manager{}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// Run cleans registered caches every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanOnce(); n > 0 {
				slog.DebugContext(ctx, "Cache cleanup completed", "component", "cache", "removed", n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// CleanOnce runs a single cleanup pass and returns how many items were removed.
func (m *Manager) CleanOnce() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}
