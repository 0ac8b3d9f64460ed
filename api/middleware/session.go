package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/harvestlane/storefront-gateway/pkg/config"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
)

// Session identifies the browser: it issues the sid cookie on first contact
// and surfaces the backend token cookie, putting both on the request context.
// The sid outlives login/logout so guest cart state survives either.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(cfg.SIDCookie); err == nil {
				sid = c.Value
			}
			if sid == "" {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.SIDCookie,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.SecureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			token := ""
			if c, err := r.Cookie(cfg.TokenCookie); err == nil {
				token = c.Value
			}

			ctx := WithSessionID(r.Context(), sid)
			ctx = WithToken(ctx, token)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sid)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetTokenCookie stores the backend session token after a successful OTP
// verification.
func SetTokenCookie(w http.ResponseWriter, cfg config.SessionConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearTokenCookie drops the backend session token, used on logout and when
// the backend rejects the token.
func ClearTokenCookie(w http.ResponseWriter, cfg config.SessionConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
