package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/harvestlane/storefront-gateway/pkg/redis"
)

const (
	slotBuyNow = "buy-now"
	slotCart   = "cart"
)

// ErrNoHandoff is returned when a session reaches checkout with nothing
// staged.
var ErrNoHandoff = errors.New("no staged checkout selection")

// BuyNowSelection is a single product staged for immediate checkout from the
// product page, bypassing the cart.
type BuyNowSelection struct {
	ProductID    string `json:"productId"`
	VariantLabel string `json:"variantLabel"`
	Quantity     int    `json:"quantity"`
}

// handoffStore is the redis surface the handoff needs.
type handoffStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	HandoffKey(sessionID, slot string) string
}

// Handoff stages checkout state between pages: the buy-now selection and the
// serialized cart snapshot. Entries are per-session and expire on their own,
// matching the page-scoped lifetime of the data.
type Handoff struct {
	store handoffStore
	ttl   time.Duration
}

// NewHandoff builds the staging store with the configured entry TTL.
func NewHandoff(store handoffStore, ttl time.Duration) *Handoff {
	return &Handoff{store: store, ttl: ttl}
}

// StageBuyNow records a product-page selection for the checkout page.
func (h *Handoff) StageBuyNow(ctx context.Context, sessionID string, sel BuyNowSelection) error {
	if sel.Quantity <= 0 {
		sel.Quantity = 1
	}
	raw, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	return h.store.Set(ctx, h.store.HandoffKey(sessionID, slotBuyNow), string(raw), h.ttl)
}

// BuyNow returns the staged selection, or ErrNoHandoff.
func (h *Handoff) BuyNow(ctx context.Context, sessionID string) (BuyNowSelection, error) {
	raw, err := h.store.Get(ctx, h.store.HandoffKey(sessionID, slotBuyNow))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return BuyNowSelection{}, ErrNoHandoff
		}
		return BuyNowSelection{}, err
	}
	var sel BuyNowSelection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		return BuyNowSelection{}, ErrNoHandoff
	}
	return sel, nil
}

// StageCart records the serialized cart lines for the checkout page.
func (h *Handoff) StageCart(ctx context.Context, sessionID string, lines []OrderLine) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return h.store.Set(ctx, h.store.HandoffKey(sessionID, slotCart), string(raw), h.ttl)
}

// Cart returns the staged cart lines, or ErrNoHandoff.
func (h *Handoff) Cart(ctx context.Context, sessionID string) ([]OrderLine, error) {
	raw, err := h.store.Get(ctx, h.store.HandoffKey(sessionID, slotCart))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrNoHandoff
		}
		return nil, err
	}
	var lines []OrderLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, ErrNoHandoff
	}
	return lines, nil
}

// Clear drops all staged state once the order is placed.
func (h *Handoff) Clear(ctx context.Context, sessionID string) error {
	return h.store.Del(ctx,
		h.store.HandoffKey(sessionID, slotBuyNow),
		h.store.HandoffKey(sessionID, slotCart),
	)
}
