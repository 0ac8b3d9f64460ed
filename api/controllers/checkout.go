package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/harvestlane/storefront-gateway/api/middleware"
	"github.com/harvestlane/storefront-gateway/api/responses"
	"github.com/harvestlane/storefront-gateway/api/validators"
	"github.com/harvestlane/storefront-gateway/internal/account"
	"github.com/harvestlane/storefront-gateway/internal/cart"
	"github.com/harvestlane/storefront-gateway/internal/checkout"
	"github.com/harvestlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
)

type stageBuyNowPayload struct {
	ProductID    string `json:"productId" validate:"required"`
	VariantLabel string `json:"variantLabel"`
	Quantity     int    `json:"quantity"`
}

type placeOrderPayload struct {
	ShippingInfo checkout.ShippingForm `json:"shippingInfo"`
	CouponCode   string                `json:"couponCode"`
	OrderNotes   string                `json:"orderNotes"`
}

type confirmOrderPayload struct {
	placeOrderPayload
	PaymentInfo checkout.PaymentInfo `json:"paymentInfo"`
}

// CheckoutConfig echoes the widget public key and flow selection to the
// client.
func CheckoutConfig(svc *checkout.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"publicKey": svc.PublicKey(),
			"useLegacy": svc.UseLegacy(),
		})
	}
}

// CheckoutStageBuyNow records a product-page selection for the checkout
// page, replacing whatever was staged before.
func CheckoutStageBuyNow(handoff *checkout.Handoff, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in stageBuyNowPayload
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sel := checkout.BuyNowSelection{
			ProductID:    in.ProductID,
			VariantLabel: in.VariantLabel,
			Quantity:     in.Quantity,
		}
		if err := handoff.StageBuyNow(ctx, middleware.SessionIDFromContext(ctx), sel); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "staging selection failed"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "staged"})
	}
}

// CheckoutStageCart snapshots the session's current cart for the checkout
// page.
func CheckoutStageCart(handoff *checkout.Handoff, carts *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid := middleware.SessionIDFromContext(ctx)

		store := carts.ForSession(sid, middleware.TokenFromContext(ctx))
		items := store.Items()
		if len(items) == 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"))
			return
		}

		lines := make([]checkout.OrderLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, checkout.OrderLine{
				ProductID:    item.Product.ID,
				Quantity:     item.Quantity,
				VariantLabel: item.VariantLabel,
			})
		}

		if err := handoff.StageCart(ctx, sid, lines); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "staging cart failed"))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "staged", "lines": lines})
	}
}

// stagedLines resolves what the session is buying: the staged cart wins,
// then the buy-now selection.
func stagedLines(ctx context.Context, handoff *checkout.Handoff, sid string) ([]checkout.OrderLine, error) {
	lines, err := handoff.Cart(ctx, sid)
	if err == nil && len(lines) > 0 {
		return lines, nil
	}
	if err != nil && !errors.Is(err, checkout.ErrNoHandoff) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading staged cart failed")
	}

	sel, err := handoff.BuyNow(ctx, sid)
	if err != nil {
		if errors.Is(err, checkout.ErrNoHandoff) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing staged for checkout")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading staged selection failed")
	}
	return []checkout.OrderLine{{
		ProductID:    sel.ProductID,
		Quantity:     sel.Quantity,
		VariantLabel: sel.VariantLabel,
	}}, nil
}

// CheckoutInitiate builds the order draft from the staged selection and
// opens a payment intent.
func CheckoutInitiate(svc *checkout.Service, handoff *checkout.Handoff, accounts *account.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		token := middleware.TokenFromContext(ctx)

		var in placeOrderPayload
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := accounts.Profile(ctx, token)
		if err != nil {
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}

		lines, err := stagedLines(ctx, handoff, middleware.SessionIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		intent, err := svc.InitiatePayment(ctx, token, checkout.OrderDraft{
			UserID:       user.ID,
			Products:     lines,
			ShippingInfo: in.ShippingInfo,
			CouponCode:   in.CouponCode,
			OrderNotes:   in.OrderNotes,
		})
		if err != nil {
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}

		responses.WriteSuccess(w, intent)
	}
}

// CheckoutConfirm finalizes a paid intent and clears the staged state.
func CheckoutConfirm(svc *checkout.Service, handoff *checkout.Handoff, accounts *account.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		token := middleware.TokenFromContext(ctx)
		sid := middleware.SessionIDFromContext(ctx)

		var in confirmOrderPayload
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := accounts.Profile(ctx, token)
		if err != nil {
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}

		lines, err := stagedLines(ctx, handoff, sid)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		confirm := checkout.ConfirmInput{
			OrderDraft: checkout.OrderDraft{
				UserID:       user.ID,
				Products:     lines,
				ShippingInfo: in.ShippingInfo,
				CouponCode:   in.CouponCode,
				OrderNotes:   in.OrderNotes,
			},
			PaymentInfo: in.PaymentInfo,
		}
		if err := svc.ConfirmOrder(ctx, token, chi.URLParam(r, "paymentIntentId"), confirm); err != nil {
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}

		if err := handoff.Clear(ctx, sid); err != nil && logg != nil {
			logg.Warn(ctx, "checkout.handoff_clear_failed: "+err.Error())
		}

		responses.WriteSuccess(w, map[string]string{"status": "order_placed"})
	}
}

type createPaymentPayload struct {
	OrderID string          `json:"orderId" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"required"`
}

// CheckoutCreatePayment opens a hosted-widget order to retry payment on an
// existing order.
func CheckoutCreatePayment(svc *checkout.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in createPaymentPayload
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.CreatePayment(ctx, middleware.TokenFromContext(ctx), in.OrderID, in.Amount)
		if err != nil {
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// CheckoutVerifyPayment reports the widget's payment result.
func CheckoutVerifyPayment(svc *checkout.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in checkout.VerifyInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.VerifyPayment(ctx, middleware.TokenFromContext(ctx), in); err != nil {
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "payment_verified"})
	}
}
