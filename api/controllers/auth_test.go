package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harvestlane/storefront-gateway/internal/auth"
	"github.com/harvestlane/storefront-gateway/internal/cart"
	"github.com/harvestlane/storefront-gateway/internal/wishlist"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/types"
)

func TestAuthRequestOTPInlineValidationNoCookieClear(t *testing.T) {
	t.Parallel()

	svc := auth.NewService(&stubCaller{}, nil)

	req := sessionRequest(t, http.MethodPost, "/auth/request-otp", `{"phone":"123"}`, "sid-1", "")
	rec := httptest.NewRecorder()
	AuthRequestOTP(svc, nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rec.Result().Cookies())

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)
	require.Empty(t, envelope.Error.Redirect, "otp failures must not redirect")
}

func TestAuthVerifyOTPSetsTokenCookie(t *testing.T) {
	t.Parallel()

	api := &stubCaller{postFn: func(path, token string, body, out any) error {
		result := out.(*auth.VerifyResult)
		result.Token = "tok-123"
		result.IsProfileComplete = true
		return nil
	}}
	svc := auth.NewService(api, nil)
	cfg := testConfig()
	cfg.Session.TokenTTL = 168 * time.Hour

	req := sessionRequest(t, http.MethodPost, "/auth/verify-otp", `{"phone":"9876543210","otp":"4242"}`, "sid-1", "")
	rec := httptest.NewRecorder()
	AuthVerifyOTP(svc, cfg, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var tokenCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	require.Equal(t, "tok-123", tokenCookie.Value)
	require.Equal(t, 7*24*60*60, tokenCookie.MaxAge)

	var envelope types.SuccessEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data := envelope.Data.(map[string]any)
	require.Equal(t, true, data["isProfileComplete"])
}

func TestAuthVerifyOTPWrongCodeNoCookie(t *testing.T) {
	t.Parallel()

	api := &stubCaller{postFn: func(path, token string, body, out any) error {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid otp")
	}}
	svc := auth.NewService(api, nil)

	req := sessionRequest(t, http.MethodPost, "/auth/verify-otp", `{"phone":"9876543210","otp":"0000"}`, "sid-1", "")
	rec := httptest.NewRecorder()
	AuthVerifyOTP(svc, testConfig(), nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rec.Result().Cookies())
}

func TestAuthLogoutClearsCookieAndDropsStores(t *testing.T) {
	t.Parallel()

	carts := cart.NewRegistry(&stubCaller{}, nil)
	wishes := wishlist.NewRegistry(&stubCaller{}, nil)
	store := carts.ForSession("sid-1", "tok")

	req := sessionRequest(t, http.MethodPost, "/auth/logout", "", "sid-1", "tok")
	rec := httptest.NewRecorder()
	AuthLogout(testConfig(), carts, wishes, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, clearedCookie(rec, "token"))
	require.NotSame(t, store, carts.ForSession("sid-1", ""), "logout must discard the session's cart store")
}
