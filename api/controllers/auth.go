package controllers

import (
	"net/http"

	"github.com/harvestlane/storefront-gateway/api/middleware"
	"github.com/harvestlane/storefront-gateway/api/responses"
	"github.com/harvestlane/storefront-gateway/api/validators"
	"github.com/harvestlane/storefront-gateway/internal/auth"
	"github.com/harvestlane/storefront-gateway/internal/cart"
	"github.com/harvestlane/storefront-gateway/internal/wishlist"
	"github.com/harvestlane/storefront-gateway/pkg/config"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
)

// AuthRequestOTP starts a phone login. Validation errors render inline; a
// stale token never interrupts this flow, so errors go out unwrapped.
func AuthRequestOTP(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in auth.RequestOTPInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		in.Phone = validators.SanitizeString(in.Phone, 10)

		if err := svc.RequestOTP(ctx, in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "otp_sent"})
	}
}

// AuthVerifyOTP exchanges the code for a backend token and stores it in the
// session cookie.
func AuthVerifyOTP(svc *auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in auth.VerifyOTPInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.VerifyOTP(ctx, in)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		middleware.SetTokenCookie(w, cfg.Session, result.Token)

		responses.WriteSuccess(w, map[string]any{
			"isProfileComplete": result.IsProfileComplete,
		})
	}
}

// AuthCompleteProfile fills in the account details for a fresh login.
func AuthCompleteProfile(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in auth.ProfileInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.CompleteProfile(ctx, middleware.TokenFromContext(ctx), in); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "profile_complete"})
	}
}

// AuthLogout clears the token cookie and discards the session's stores.
func AuthLogout(cfg *config.Config, carts *cart.Registry, wishes *wishlist.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		middleware.ClearTokenCookie(w, cfg.Session)

		if sid := middleware.SessionIDFromContext(ctx); sid != "" {
			if carts != nil {
				carts.Drop(sid)
			}
			if wishes != nil {
				wishes.Drop(sid)
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
