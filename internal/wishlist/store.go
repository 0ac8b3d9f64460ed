package wishlist

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/harvestlane/storefront-gateway/internal/upstream"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
)

// ErrLoginRequired is returned when a mutation needs an authenticated
// session; the API layer maps it to a login prompt.
var ErrLoginRequired = pkgerrors.New(pkgerrors.CodeUnauthorized, "login required to modify wishlist")

// productID accepts both bare id strings and populated product objects, which
// the backend mixes freely in the wishlist payload.
type productID string

func (p *productID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = productID(s)
		return nil
	}
	var obj struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = productID(obj.ID)
	return nil
}

type wishlistPayload struct {
	Products []productID `json:"products"`
}

type addPayload struct {
	ProductID string `json:"productId"`
}

// Store holds the wishlist for one browser session: a flat set of product
// ids. Unlike the cart, mutations are confirmed-then-applied: local state
// changes only after the backend call succeeds.
type Store struct {
	api  upstream.Caller
	logg *logger.Logger

	mu    sync.Mutex
	token string
	ids   []string
}

// NewStore builds a wishlist store with the injected backend client.
func NewStore(api upstream.Caller, logg *logger.Logger) *Store {
	return &Store{api: api, logg: logg}
}

// SetToken records the session token the next backend call should carry.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Fetch loads the wishlist, normalizing populated product objects to bare
// ids. Without a token it is a no-op; failures are logged and leave the
// current state untouched.
func (s *Store) Fetch(ctx context.Context) []string {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return s.ProductIDs()
	}

	var payload wishlistPayload
	if err := s.api.Get(ctx, "/wishlist", nil, token, &payload); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "wishlist.fetch_failed", err)
		}
		return s.ProductIDs()
	}

	ids := make([]string, 0, len(payload.Products))
	for _, p := range payload.Products {
		id := strings.TrimSpace(string(p))
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}

	s.mu.Lock()
	s.ids = ids
	s.mu.Unlock()
	return s.ProductIDs()
}

// Add sends the product to the backend wishlist and records it locally only
// once the call succeeds. Without a token it returns ErrLoginRequired and
// issues no network call.
func (s *Store) Add(ctx context.Context, productID string) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return ErrLoginRequired
	}

	if err := s.api.Post(ctx, "/wishlist/add", token, addPayload{ProductID: productID}, nil); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "wishlist.add_failed", err)
		}
		return err
	}

	s.mu.Lock()
	if !containsLocked(s.ids, productID) {
		s.ids = append(s.ids, productID)
	}
	s.mu.Unlock()
	return nil
}

// Remove deletes the product from the backend wishlist, dropping it locally
// only after success. Without a token it is a silent no-op.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return nil
	}

	if err := s.api.Delete(ctx, "/wishlist/"+productID, token, nil); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "wishlist.remove_failed", err)
		}
		return err
	}

	s.mu.Lock()
	next := s.ids[:0]
	for _, id := range s.ids {
		if id != productID {
			next = append(next, id)
		}
	}
	s.ids = next
	s.mu.Unlock()
	return nil
}

// Contains is a pure membership test.
func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return containsLocked(s.ids, productID)
}

// ProductIDs returns a copy of the current id set.
func (s *Store) ProductIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

func containsLocked(ids []string, target string) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
