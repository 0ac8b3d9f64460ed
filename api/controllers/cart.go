package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harvestlane/storefront-gateway/api/middleware"
	"github.com/harvestlane/storefront-gateway/api/responses"
	"github.com/harvestlane/storefront-gateway/api/validators"
	"github.com/harvestlane/storefront-gateway/internal/cart"
	"github.com/harvestlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
)

type addCartItemPayload struct {
	ProductID    string `json:"productId" validate:"required"`
	VariantLabel string `json:"variantLabel"`
	Quantity     int    `json:"quantity"`
}

func sessionCart(r *http.Request, reg *cart.Registry) *cart.Store {
	ctx := r.Context()
	return reg.ForSession(middleware.SessionIDFromContext(ctx), middleware.TokenFromContext(ctx))
}

// CartFetch returns the session's cart. A rejected token is swallowed: the
// cookie is dropped and an empty cart returned, with no login redirect.
func CartFetch(reg *cart.Registry, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		hadToken := middleware.TokenFromContext(ctx) != ""
		store := sessionCart(r, reg)
		snap := store.Fetch(ctx)

		if hadToken && store.Token() == "" {
			middleware.ClearTokenCookie(w, cfg.Session)
		}

		responses.WriteSuccess(w, snap)
	}
}

// CartAdd adds a line and returns the resynced cart. Without a token this is
// a silent no-op, matching the storefront's guest behavior.
func CartAdd(reg *cart.Registry, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in addCartItemPayload
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		store := sessionCart(r, reg)
		if err := store.AddItem(ctx, in.ProductID, in.VariantLabel, in.Quantity); err != nil {
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}

		responses.WriteSuccess(w, store.Snapshot())
	}
}

// CartRemove drops a line optimistically; a backend failure restores it and
// reports the error.
func CartRemove(reg *cart.Registry, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		itemID := chi.URLParam(r, "itemId")
		if itemID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id is required"))
			return
		}

		store := sessionCart(r, reg)
		if err := store.RemoveItem(ctx, itemID); err != nil {
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}

		responses.WriteSuccess(w, store.Snapshot())
	}
}

// CartIncrease bumps a line's quantity locally; nothing is persisted until
// the next add or order.
func CartIncrease(reg *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := sessionCart(r, reg)
		store.IncreaseItem(chi.URLParam(r, "itemId"))
		responses.WriteSuccess(w, store.Snapshot())
	}
}

// CartDecrease lowers a line's quantity locally, removing it at zero.
func CartDecrease(reg *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := sessionCart(r, reg)
		store.DecreaseItem(chi.URLParam(r, "itemId"))
		responses.WriteSuccess(w, store.Snapshot())
	}
}
