package cart

import (
	"context"
	"strings"
	"sync"

	"github.com/harvestlane/storefront-gateway/internal/upstream"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
	"github.com/shopspring/decimal"
)

// DefaultVariantLabel is substituted when a caller supplies a blank variant.
const DefaultVariantLabel = "default"

// Store holds the cart for one browser session and reconciles local
// optimistic mutations with the server-confirmed cart. The backend is the
// single source of truth; a full re-fetch after every persisted mutation is
// the only consistency mechanism. All methods are safe for concurrent use.
type Store struct {
	api  upstream.Caller
	logg *logger.Logger

	mu      sync.Mutex
	token   string
	items   []Item
	subs    map[int]chan Snapshot
	nextSub int
}

// NewStore builds a cart store with the injected backend client.
func NewStore(api upstream.Caller, logg *logger.Logger) *Store {
	return &Store{
		api:  api,
		logg: logg,
		subs: map[int]chan Snapshot{},
	}
}

// SetToken records the session token the next backend call should carry.
// Tokens change mid-session on login and logout.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token returns the current session token. Empty after a fetch observed a 401.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Subscribe registers a change listener. The returned channel carries the
// latest snapshot; stale intermediate snapshots are dropped rather than
// blocking mutators. The cancel func must be called when done.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
	return ch, cancel
}

// Fetch loads the authoritative cart from the backend. Without a token the
// cart resets to empty. A 401 drops the stale token and empties the cart
// without propagating; any other failure is logged and the cart emptied
// defensively. Fetch never errors: initial-load failures degrade to an empty
// cart rather than failing the page.
func (s *Store) Fetch(ctx context.Context) Snapshot {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return s.replace(nil)
	}

	var payload cartPayload
	if err := s.api.Get(ctx, "/cart", nil, token, &payload); err != nil {
		if pkgerrors.IsUnauthorized(err) {
			s.mu.Lock()
			s.token = ""
			s.mu.Unlock()
		} else if s.logg != nil {
			s.logg.Error(ctx, "cart.fetch_failed", err)
		}
		return s.replace(nil)
	}

	return s.replace(payload.Items)
}

// AddItem sends the addition to the backend, then re-fetches the full cart so
// subtotals and line dedup stay server-authoritative. Without a token it is a
// silent no-op and issues no network call; the UI owns the login redirect.
func (s *Store) AddItem(ctx context.Context, productID, variantLabel string, quantity int) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return nil
	}

	label := strings.TrimSpace(variantLabel)
	if label == "" {
		label = DefaultVariantLabel
	}
	if quantity <= 0 {
		quantity = 1
	}

	payload := addItemPayload{
		ProductID:    productID,
		VariantLabel: label,
		Quantity:     quantity,
	}
	if err := s.api.Post(ctx, "/cart", token, payload, nil); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "cart.add_failed", err)
		}
		return err
	}

	s.Fetch(ctx)
	return nil
}

// RemoveItem applies the removal optimistically before the backend round
// trip, so the line disappears immediately regardless of latency. Without a
// token the local removal is the only effect. On backend failure the line is
// restored at its original position; on success a re-fetch confirms sync.
func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	token := s.token
	idx := -1
	var removed Item
	for i, item := range s.items {
		if item.ID == itemID {
			idx = i
			removed = item
			break
		}
	}
	if idx >= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	if token == "" {
		return nil
	}

	if err := s.api.Delete(ctx, "/cart/"+itemID, token, nil); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "cart.remove_failed", err)
		}
		if idx >= 0 {
			s.mu.Lock()
			if idx > len(s.items) {
				idx = len(s.items)
			}
			s.items = append(s.items[:idx], append([]Item{removed}, s.items[idx:]...)...)
			snap = s.snapshotLocked()
			s.mu.Unlock()
			s.notify(snap)
		}
		return err
	}

	s.Fetch(ctx)
	return nil
}

// IncreaseItem bumps a line's quantity by one locally, without persisting.
// The change survives only until the next fetch overwrites it.
func (s *Store) IncreaseItem(itemID string) {
	s.adjust(itemID, 1)
}

// DecreaseItem lowers a line's quantity by one locally; reaching zero removes
// the line. Like IncreaseItem this never calls the backend.
func (s *Store) DecreaseItem(itemID string) {
	s.adjust(itemID, -1)
}

func (s *Store) adjust(itemID string, delta int) {
	s.mu.Lock()
	changed := false
	next := s.items[:0]
	for _, item := range s.items {
		if item.ID == itemID {
			item.Quantity += delta
			if item.Quantity <= 0 {
				changed = true
				continue
			}
			item.Subtotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			changed = true
		}
		next = append(next, item)
	}
	s.items = next
	snap := s.snapshotLocked()
	s.mu.Unlock()
	if changed {
		s.notify(snap)
	}
}

// Items returns a copy of the current cart lines.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// Count is the badge value: the sum of quantities across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countOf(s.items)
}

// Snapshot returns the current immutable view.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) replace(items []Item) Snapshot {
	s.mu.Lock()
	s.items = append([]Item(nil), items...)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return snap
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items: append([]Item(nil), s.items...),
		Count: countOf(s.items),
	}
}

func (s *Store) notify(snap Snapshot) {
	s.mu.Lock()
	channels := make([]chan Snapshot, 0, len(s.subs))
	for _, ch := range s.subs {
		channels = append(channels, ch)
	}
	s.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func countOf(items []Item) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
