package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/harvestlane/storefront-gateway/api/middleware"
	"github.com/harvestlane/storefront-gateway/pkg/config"
)

type stubCaller struct {
	getFn    func(path string, query url.Values, token string, out any) error
	postFn   func(path, token string, body, out any) error
	putFn    func(path, token string, body, out any) error
	deleteFn func(path, token string, out any) error

	calls []string
}

func (s *stubCaller) Get(ctx context.Context, path string, query url.Values, token string, out any) error {
	s.calls = append(s.calls, "GET "+path)
	if s.getFn != nil {
		return s.getFn(path, query, token, out)
	}
	return nil
}

func (s *stubCaller) Post(ctx context.Context, path, token string, body, out any) error {
	s.calls = append(s.calls, "POST "+path)
	if s.postFn != nil {
		return s.postFn(path, token, body, out)
	}
	return nil
}

func (s *stubCaller) Put(ctx context.Context, path, token string, body, out any) error {
	s.calls = append(s.calls, "PUT "+path)
	if s.putFn != nil {
		return s.putFn(path, token, body, out)
	}
	return nil
}

func (s *stubCaller) Delete(ctx context.Context, path, token string, out any) error {
	s.calls = append(s.calls, "DELETE "+path)
	if s.deleteFn != nil {
		return s.deleteFn(path, token, out)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Env:       "dev",
			Port:      "8080",
			LoginPath: "/auth/login",
		},
		Session: config.SessionConfig{
			TokenCookie: "token",
			SIDCookie:   "storefront_sid",
		},
	}
}

// sessionRequest builds a request carrying the session context the
// middleware would have attached.
func sessionRequest(t *testing.T, method, target, body, sid, token string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	ctx := middleware.WithSessionID(req.Context(), sid)
	ctx = middleware.WithToken(ctx, token)
	return req.WithContext(ctx)
}

func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func clearedCookie(rec *httptest.ResponseRecorder, name string) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge < 0 {
			return true
		}
	}
	return false
}
