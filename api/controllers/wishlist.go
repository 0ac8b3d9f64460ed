package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harvestlane/storefront-gateway/api/middleware"
	"github.com/harvestlane/storefront-gateway/api/responses"
	"github.com/harvestlane/storefront-gateway/api/validators"
	"github.com/harvestlane/storefront-gateway/internal/wishlist"
	"github.com/harvestlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
)

type addWishlistItemPayload struct {
	ProductID string `json:"productId" validate:"required"`
}

func sessionWishlist(r *http.Request, reg *wishlist.Registry) *wishlist.Store {
	ctx := r.Context()
	return reg.ForSession(middleware.SessionIDFromContext(ctx), middleware.TokenFromContext(ctx))
}

// WishlistFetch returns the session's liked product ids.
func WishlistFetch(reg *wishlist.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := sessionWishlist(r, reg)
		responses.WriteSuccess(w, map[string]any{"products": store.Fetch(ctx)})
	}
}

// WishlistAdd likes a product. An unauthenticated add maps to a login
// prompt, not a session clear, since there is no cookie to drop.
func WishlistAdd(reg *wishlist.Registry, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in addWishlistItemPayload
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		store := sessionWishlist(r, reg)
		if err := store.Add(ctx, in.ProductID); err != nil {
			if errors.Is(err, wishlist.ErrLoginRequired) {
				responses.WriteErrorRedirect(ctx, logg, w, err, cfg.App.LoginPath)
				return
			}
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": store.ProductIDs()})
	}
}

// WishlistRemove unlikes a product.
func WishlistRemove(reg *wishlist.Registry, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		store := sessionWishlist(r, reg)
		if err := store.Remove(ctx, productID); err != nil {
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": store.ProductIDs()})
	}
}
