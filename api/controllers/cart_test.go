package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harvestlane/storefront-gateway/internal/cart"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/types"
)

func TestCartFetchRejectedTokenClearsCookieWithoutRedirect(t *testing.T) {
	t.Parallel()

	api := &stubCaller{getFn: func(path string, query url.Values, token string, out any) error {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "expired")
	}}
	reg := cart.NewRegistry(api, nil)
	cfg := testConfig()

	req := sessionRequest(t, http.MethodGet, "/cart", "", "sid-1", "stale-token")
	rec := httptest.NewRecorder()
	CartFetch(reg, cfg, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "a swallowed 401 must still return the empty cart")
	require.True(t, clearedCookie(rec, "token"), "stale token cookie must be dropped")

	var envelope types.SuccessEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	snap := envelope.Data.(map[string]any)
	require.Empty(t, snap["items"])
}

func TestCartFetchGuestReturnsEmptyCartNoCookieChange(t *testing.T) {
	t.Parallel()

	api := &stubCaller{}
	reg := cart.NewRegistry(api, nil)

	req := sessionRequest(t, http.MethodGet, "/cart", "", "sid-1", "")
	rec := httptest.NewRecorder()
	CartFetch(reg, testConfig(), nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Result().Cookies())
	require.Empty(t, api.calls, "guest fetch must not touch the backend")
}

func TestCartAddValidatesBody(t *testing.T) {
	t.Parallel()

	reg := cart.NewRegistry(&stubCaller{}, nil)

	req := sessionRequest(t, http.MethodPost, "/cart", `{"quantity":1}`, "sid-1", "tok")
	rec := httptest.NewRecorder()
	CartAdd(reg, testConfig(), nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)
}

func TestCartAddResyncsAndReturnsSnapshot(t *testing.T) {
	t.Parallel()

	api := &stubCaller{getFn: func(path string, query url.Values, token string, out any) error {
		return json.Unmarshal([]byte(`{"items":[{"_id":"i1","productId":{"_id":"p1","name":"Honey"},"variantLabel":"500g","quantity":2,"price":450,"subtotal":900}]}`), out)
	}}
	reg := cart.NewRegistry(api, nil)

	req := sessionRequest(t, http.MethodPost, "/cart", `{"productId":"p1","variantLabel":"500g","quantity":2}`, "sid-1", "tok")
	rec := httptest.NewRecorder()
	CartAdd(reg, testConfig(), nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"POST /cart", "GET /cart"}, api.calls)

	var envelope types.SuccessEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	snap := envelope.Data.(map[string]any)
	require.EqualValues(t, 2, snap["count"])
}
