package cart

import "github.com/shopspring/decimal"

// ProductRef is the populated product reference embedded in a cart line by
// the backend.
type ProductRef struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Images []string `json:"images,omitempty"`
}

// Item is one line of the cart. Price is captured at add time; Subtotal is
// server-authoritative after a fetch and recomputed locally on quantity-only
// adjustments.
type Item struct {
	ID           string          `json:"_id"`
	Product      ProductRef      `json:"productId"`
	VariantLabel string          `json:"variantLabel"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Image        string          `json:"image,omitempty"`
}

// cartPayload mirrors the backend's GET /cart response shape.
type cartPayload struct {
	Items []Item `json:"items"`
}

// addItemPayload mirrors the backend's POST /cart request shape.
type addItemPayload struct {
	ProductID    string `json:"productId"`
	VariantLabel string `json:"variantLabel"`
	Quantity     int    `json:"quantity"`
}

// Snapshot is an immutable view of the cart emitted to subscribers and
// rendered by the API layer.
type Snapshot struct {
	Items []Item `json:"items"`
	Count int    `json:"count"`
}
