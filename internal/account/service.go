package account

import (
	"context"

	"github.com/harvestlane/storefront-gateway/internal/upstream"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
	"github.com/shopspring/decimal"
)

// User is the account profile record.
type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// OrderProduct is one line of a placed order; the backend populates the
// product document inline.
type OrderProduct struct {
	Product      OrderProductRef `json:"productId"`
	Quantity     int             `json:"quantity"`
	VariantLabel string          `json:"variantLabel,omitempty"`
}

// OrderProductRef is the populated product inside an order line.
type OrderProductRef struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Brand  string   `json:"brand"`
	Images []string `json:"images"`
}

// ShippingInfo is the delivery address attached to an order.
type ShippingInfo struct {
	ShippingAddress      string `json:"shippingAddress"`
	Phone                string `json:"phone"`
	City                 string `json:"city"`
	State                string `json:"state"`
	Pincode              string `json:"pincode"`
	DeliveryInstructions string `json:"deliveryInstructions,omitempty"`
}

// PaymentInfo records how an order was paid.
type PaymentInfo struct {
	PaymentMethod string `json:"paymentMethod,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	IsPaid        bool   `json:"isPaid,omitempty"`
}

// Order is a placed order as the backend returns it.
type Order struct {
	ID           string          `json:"_id"`
	Products     []OrderProduct  `json:"products"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Status       string          `json:"status"`
	CreatedAt    string          `json:"createdAt"`
	ShippingInfo ShippingInfo    `json:"shippingInfo"`
	CouponCode   string          `json:"couponCode,omitempty"`
	OrderNotes   string          `json:"orderNotes,omitempty"`
	PaymentInfo  *PaymentInfo    `json:"paymentInfo,omitempty"`
}

// Service reads profile and order history for the logged-in user.
type Service struct {
	api  upstream.Caller
	logg *logger.Logger
}

// NewService wires the account reader.
func NewService(api upstream.Caller, logg *logger.Logger) *Service {
	return &Service{api: api, logg: logg}
}

// Profile returns the current user's account record.
func (s *Service) Profile(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	var user User
	if err := s.api.Get(ctx, "/user/profile", nil, token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Orders returns the user's order history. The backend keys order history by
// user id, so Profile has to resolve first.
func (s *Service) Orders(ctx context.Context, token, userID string) ([]Order, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	var orders []Order
	if err := s.api.Get(ctx, "/order/user/"+userID, nil, token, &orders); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "account.orders_failed", err)
		}
		return nil, err
	}
	return orders, nil
}
