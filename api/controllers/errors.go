package controllers

import (
	"context"
	"net/http"

	"github.com/harvestlane/storefront-gateway/api/middleware"
	"github.com/harvestlane/storefront-gateway/api/responses"
	"github.com/harvestlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
)

// writeSessionError is the shared error path for authenticated surfaces: a
// rejected token clears the cookie and carries a login redirect hint. Auth
// controllers bypass it so OTP failures never bounce the user mid-login.
func writeSessionError(ctx context.Context, cfg *config.Config, logg *logger.Logger, w http.ResponseWriter, err error) {
	if pkgerrors.IsUnauthorized(err) {
		middleware.ClearTokenCookie(w, cfg.Session)
		responses.WriteErrorRedirect(ctx, logg, w, err, cfg.App.LoginPath)
		return
	}
	responses.WriteError(ctx, logg, w, err)
}
