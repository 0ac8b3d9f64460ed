package catalog

import "github.com/shopspring/decimal"

// Variant is one purchasable size/pack of a product.
type Variant struct {
	ID    string          `json:"_id" validate:"required"`
	Label string          `json:"label" validate:"required"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" validate:"gte=0"`
}

// Product mirrors the backend's product document.
type Product struct {
	ID           string    `json:"_id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	Brand        string    `json:"brand"`
	Description  string    `json:"description"`
	Images       []string  `json:"images"`
	CategoryID   string    `json:"category"`
	Rating       float64   `json:"rating" validate:"gte=0,lte=5"`
	NumReviews   int       `json:"numReviews" validate:"gte=0"`
	GSTIncluded  bool      `json:"gstIncluded"`
	CourierExtra bool      `json:"courierExtra"`
	Variants     []Variant `json:"variants" validate:"dive"`
}

// Category is a browseable product grouping, addressed by slug.
type Category struct {
	ID          string `json:"_id"`
	Slug        string `json:"slug" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}

// Offer is a promotional banner entry.
type Offer struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	IsActive    bool   `json:"isActive"`
}
