package controllers

import (
	"net/http"

	"github.com/harvestlane/storefront-gateway/api/middleware"
	"github.com/harvestlane/storefront-gateway/api/responses"
	"github.com/harvestlane/storefront-gateway/internal/account"
	"github.com/harvestlane/storefront-gateway/pkg/config"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
)

// AccountProfile returns the logged-in user's record.
func AccountProfile(svc *account.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		user, err := svc.Profile(ctx, middleware.TokenFromContext(ctx))
		if err != nil {
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// AccountOrders returns the user's order history. The profile lookup runs
// first because the backend keys order history by user id.
func AccountOrders(svc *account.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		token := middleware.TokenFromContext(ctx)

		user, err := svc.Profile(ctx, token)
		if err != nil {
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}

		orders, err := svc.Orders(ctx, token, user.ID)
		if err != nil {
			writeSessionError(ctx, cfg, logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}
