package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harvestlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
	"github.com/harvestlane/storefront-gateway/pkg/metrics"
)

const maxBodyBytes = 1 << 20

var errBaseURLRequired = errors.New("upstream base url is required")

// Client issues REST calls against the commerce backend with centralized
// bearer auth, logging, metrics, and error mapping. It carries no retry
// policy; failures surface to the caller as typed errors.
type Client struct {
	baseURL string
	httpc   *http.Client
	logg    *logger.Logger
	metrics *metrics.UpstreamMetrics
}

// Caller is the surface consumed by the domain services and stores.
type Caller interface {
	Get(ctx context.Context, path string, query url.Values, token string, out any) error
	Post(ctx context.Context, path, token string, body, out any) error
	Put(ctx context.Context, path, token string, body, out any) error
	Delete(ctx context.Context, path, token string, out any) error
}

// NewClient validates the config and builds the backend client.
func NewClient(cfg config.UpstreamConfig, logg *logger.Logger, m *metrics.UpstreamMetrics) (*Client, error) {
	base := cfg.NormalizedBaseURL()
	if base == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: base,
		httpc:   &http.Client{Timeout: timeout},
		logg:    logg,
		metrics: m,
	}, nil
}

// StatusError captures the raw non-2xx response for diagnostics.
type StatusError struct {
	Status int
	Method string
	Route  string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s %s: status %d", e.Method, e.Route, e.Status)
}

func (e *StatusError) UpstreamStatus() int   { return e.Status }
func (e *StatusError) UpstreamRoute() string { return e.Route }
func (e *StatusError) UpstreamBody() string  { return e.Body }

// Get issues a GET and decodes the JSON body into out when non-nil.
func (c *Client) Get(ctx context.Context, path string, query url.Values, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, query, token, nil, out)
}

// Post issues a JSON POST.
func (c *Client) Post(ctx context.Context, path, token string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, token, body, out)
}

// Put issues a JSON PUT.
func (c *Client) Put(ctx context.Context, path, token string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, token, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, token, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	route := routeLabel(path)

	target := c.baseURL + ensureLeadingSlash(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	c.metrics.ObserveDuration(route, method, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(route, method, "transport")
		if c.logg != nil {
			lctx := c.logg.WithUpstreamRoute(ctx, route)
			c.logg.Error(lctx, "upstream.transport_error", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call backend")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.IncFailure(route, method, "read")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read backend response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.metrics.IncFailure(route, method, strconv.Itoa(resp.StatusCode))
		statusErr := &StatusError{
			Status: resp.StatusCode,
			Method: method,
			Route:  route,
			Body:   truncate(string(payload), 512),
		}
		return pkgerrors.Wrap(domainCodeForStatus(resp.StatusCode), statusErr, "backend request failed")
	}

	c.metrics.IncSuccess(route, method)

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode backend response")
		}
	}
	return nil
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	}
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		return pkgerrors.CodeValidation
	}
	return pkgerrors.CodeDependency
}

// routeLabel keeps metric cardinality bounded by dropping path parameters
// beyond the first two segments.
func routeLabel(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}
	segments := strings.Split(trimmed, "/")
	if len(segments) > 2 {
		segments = segments[:2]
	}
	return "/" + strings.Join(segments, "/")
}

func ensureLeadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
