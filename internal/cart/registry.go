package cart

import (
	"sync"
	"time"

	"github.com/harvestlane/storefront-gateway/internal/upstream"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
)

// Registry hands out one cart store per browser session. Stores are created
// lazily and keep their local state across requests, which is what lets a
// guest's optimistic removals survive until the session ends. A store lives
// until logout drops it or a sweep finds it idle past the configured TTL.
type Registry struct {
	api  upstream.Caller
	logg *logger.Logger
	now  func() time.Time

	mu     sync.Mutex
	stores map[string]*sessionEntry
}

type sessionEntry struct {
	store    *Store
	lastSeen time.Time
}

// NewRegistry builds an empty registry backed by the given client.
func NewRegistry(api upstream.Caller, logg *logger.Logger) *Registry {
	return &Registry{
		api:    api,
		logg:   logg,
		now:    time.Now,
		stores: map[string]*sessionEntry{},
	}
}

// ForSession returns the session's store, creating it on first use, and
// records the token the current request carried. Each call refreshes the
// session's idle clock.
func (r *Registry) ForSession(sessionID, token string) *Store {
	r.mu.Lock()
	entry, ok := r.stores[sessionID]
	if !ok {
		entry = &sessionEntry{store: NewStore(r.api, r.logg)}
		r.stores[sessionID] = entry
	}
	entry.lastSeen = r.now()
	store := entry.store
	r.mu.Unlock()

	store.SetToken(token)
	return store
}

// Drop discards a session's store, e.g. on logout.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, sessionID)
}

// Sweep discards stores no request has touched within maxIdle and reports
// how many were removed. Anonymous sessions never log out, so this is what
// bounds the registry's footprint.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for sessionID, entry := range r.stores {
		if entry.lastSeen.Before(cutoff) {
			delete(r.stores, sessionID)
			removed++
		}
	}
	return removed
}

// Len reports how many session stores are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
