package checkout

import (
	"context"

	"github.com/harvestlane/storefront-gateway/internal/upstream"
	"github.com/harvestlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
	"github.com/shopspring/decimal"
)

// ShippingForm is the delivery address the buyer fills in at checkout.
// Validation is synchronous; field errors render inline.
type ShippingForm struct {
	ShippingAddress      string `json:"shippingAddress" validate:"required"`
	Phone                string `json:"phone" validate:"required,len=10,numeric"`
	City                 string `json:"city" validate:"required"`
	State                string `json:"state" validate:"required"`
	Pincode              string `json:"pincode" validate:"required"`
	DeliveryInstructions string `json:"deliveryInstructions,omitempty"`
}

// OrderLine is one product selection inside an order draft.
type OrderLine struct {
	ProductID    string `json:"productId" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,gt=0"`
	VariantLabel string `json:"variantLabel"`
}

// OrderDraft is the order as submitted for payment: either the cart snapshot
// or a single buy-now selection.
type OrderDraft struct {
	UserID       string       `json:"userId" validate:"required"`
	Products     []OrderLine  `json:"products" validate:"required,min=1,dive"`
	ShippingInfo ShippingForm `json:"shippingInfo"`
	CouponCode   string       `json:"couponCode,omitempty"`
	OrderNotes   string       `json:"orderNotes,omitempty"`
}

// PaymentIntent is the backend's response to an initiated UPI payment.
type PaymentIntent struct {
	QRURL           string `json:"qrUrl"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// PaymentInfo confirms how the intent was settled.
type PaymentInfo struct {
	PaymentMethod string `json:"paymentMethod"`
	TransactionID string `json:"transactionId"`
	IsPaid        bool   `json:"isPaid"`
}

// ConfirmInput finalizes an order once the intent is paid.
type ConfirmInput struct {
	OrderDraft
	PaymentInfo PaymentInfo `json:"paymentInfo"`
}

// GatewayOrder is the hosted-widget order handle for the card flow.
type GatewayOrder struct {
	GatewayOrderID string          `json:"razorpayOrderId"`
	Amount         decimal.Decimal `json:"amount"`
	Key            string          `json:"key"`
}

// VerifyInput ties the widget's payment result back to the order.
type VerifyInput struct {
	OrderID          string `json:"orderId" validate:"required"`
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	GatewaySignature string `json:"razorpay_signature"`
}

// Service drives both payment flows against the backend: the UPI intent flow
// (initiate, then confirm once paid) and the hosted-widget card flow
// (create, then verify the widget's signature).
type Service struct {
	api  upstream.Caller
	cfg  config.CheckoutConfig
	logg *logger.Logger
}

// NewService wires checkout with the injected backend client.
func NewService(api upstream.Caller, cfg config.CheckoutConfig, logg *logger.Logger) *Service {
	return &Service{api: api, cfg: cfg, logg: logg}
}

// PublicKey is the widget key echoed to the client.
func (s *Service) PublicKey() string {
	return s.cfg.PublicKey
}

// UseLegacy reports whether the checkout surface should offer the widget
// flow instead of the UPI intent flow.
func (s *Service) UseLegacy() bool {
	return s.cfg.UseLegacy
}

// InitiatePayment submits the order draft and returns the UPI QR + intent id.
func (s *Service) InitiatePayment(ctx context.Context, token string, draft OrderDraft) (PaymentIntent, error) {
	if token == "" {
		return PaymentIntent{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required to place an order")
	}
	var intent PaymentIntent
	if err := s.api.Post(ctx, "/order/initiate-payment", token, draft, &intent); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "checkout.initiate_payment_failed", err)
		}
		return PaymentIntent{}, err
	}
	if intent.PaymentIntentID == "" {
		return PaymentIntent{}, pkgerrors.New(pkgerrors.CodeDependency, "backend returned no payment intent")
	}
	return intent, nil
}

// ConfirmOrder finalizes a paid intent.
func (s *Service) ConfirmOrder(ctx context.Context, token, paymentIntentID string, in ConfirmInput) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "login required to place an order")
	}
	if paymentIntentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}
	if err := s.api.Post(ctx, "/order/confirm/"+paymentIntentID, token, in, nil); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "checkout.confirm_failed", err)
		}
		return err
	}
	return nil
}

// CreatePayment opens a hosted-widget order for an existing unpaid order,
// used to retry payment from the account page.
func (s *Service) CreatePayment(ctx context.Context, token, orderID string, amount decimal.Decimal) (GatewayOrder, error) {
	if token == "" {
		return GatewayOrder{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	body := map[string]any{"orderId": orderID, "amount": amount}
	var order GatewayOrder
	if err := s.api.Post(ctx, "/order/create-payment", token, body, &order); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "checkout.create_payment_failed", err)
		}
		return GatewayOrder{}, err
	}
	if order.Key == "" {
		order.Key = s.cfg.PublicKey
	}
	return order, nil
}

// VerifyPayment reports the widget result so the backend can mark the order
// paid.
func (s *Service) VerifyPayment(ctx context.Context, token string, in VerifyInput) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	if err := s.api.Post(ctx, "/order/verify-payment", token, in, nil); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "checkout.verify_payment_failed", err)
		}
		return err
	}
	return nil
}
