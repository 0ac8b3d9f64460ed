package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/harvestlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.UpstreamConfig{BaseURL: srv.URL}, nil, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestGetAttachesBearerTokenAndDecodes(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"turmeric"}`))
	})

	var out struct {
		Name string `json:"name"`
	}
	if err := client.Get(context.Background(), "/product/p1", nil, "tok-123", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if out.Name != "turmeric" {
		t.Fatalf("unexpected payload %+v", out)
	}
}

func TestGetOmitsAuthorizationWithoutToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	if err := client.Get(context.Background(), "/product", nil, "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no authorization header, got %q", gotAuth)
	}
}

func TestGetEncodesQuery(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	})

	query := url.Values{"q": {"black pepper"}}
	var out []any
	if err := client.Get(context.Background(), "/product/search", query, "", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "q=black+pepper" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func TestUnauthorizedMapsToTypedError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	})

	err := client.Get(context.Background(), "/cart", nil, "stale", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !pkgerrors.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized code, got %v", err)
	}

	d := pkgerrors.Dump(err)
	if d.UpstreamStatus != http.StatusUnauthorized {
		t.Fatalf("expected raw status in dump, got %+v", d)
	}
	if d.UpstreamRoute != "/cart" {
		t.Fatalf("unexpected route %q", d.UpstreamRoute)
	}
}

func TestDomainCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeForbidden},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusConflict, pkgerrors.CodeConflict},
		{http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusUnprocessableEntity, pkgerrors.CodeValidation},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
		{http.StatusBadGateway, pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		if got := domainCodeForStatus(tt.status); got != tt.code {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.code, got)
		}
	}
}

func TestPostSendsJSONBody(t *testing.T) {
	var gotContentType, gotBody string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusCreated)
	})

	payload := map[string]any{"productId": "p1", "quantity": 2}
	if err := client.Post(context.Background(), "/cart", "tok", payload, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	if gotBody == "" || gotBody[0] != '{' {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestRouteLabelBoundsCardinality(t *testing.T) {
	tests := map[string]string{
		"/cart":                     "/cart",
		"/cart/abc123":              "/cart/abc123",
		"/product/category/spices":  "/product/category",
		"/order/user/5f1/extra/bit": "/order/user",
		"":                          "/",
	}
	for in, want := range tests {
		if got := routeLabel(in); got != want {
			t.Fatalf("routeLabel(%q)=%q want %q", in, got, want)
		}
	}
}

func TestTransportErrorMapsToDependency(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	err := client.Get(context.Background(), "/product", nil, "", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency code, got %v", err)
	}
}
