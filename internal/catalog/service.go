package catalog

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/harvestlane/storefront-gateway/internal/upstream"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
)

var validate = validator.New()

// Cache is the subset of the redis client the catalog needs for read-through
// caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// Service serves catalog reads from the backend, caching responses in Redis.
// Catalog endpoints are public; no token is attached.
type Service struct {
	api   upstream.Caller
	cache Cache
	ttl   time.Duration
	logg  *logger.Logger
}

// NewService wires the catalog reader. Cache may be nil, which disables
// caching entirely.
func NewService(api upstream.Caller, cache Cache, ttl time.Duration, logg *logger.Logger) *Service {
	return &Service{api: api, cache: cache, ttl: ttl, logg: logg}
}

// Products lists the catalog, optionally capped to the first limit entries.
// A limit of 0 means the full catalog.
func (s *Service) Products(ctx context.Context, limit int) ([]Product, error) {
	keyParts := []string{"product", "all"}
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": []string{strconv.Itoa(limit)}}
		keyParts = append(keyParts, "limit", strconv.Itoa(limit))
	}

	var products []Product
	if err := s.cached(ctx, keyParts, "/product", query, &products); err != nil {
		return nil, err
	}
	if err := checkProducts(products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product returns one product by id.
func (s *Service) Product(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := s.cached(ctx, []string{"product", id}, "/product/"+id, nil, &product); err != nil {
		return nil, err
	}
	if err := checkRecord(product, "product"); err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductsByCategory lists the products under a category slug.
func (s *Service) ProductsByCategory(ctx context.Context, slug string) ([]Product, error) {
	var products []Product
	if err := s.cached(ctx, []string{"product", "category", slug}, "/product/category/"+url.PathEscape(slug), nil, &products); err != nil {
		return nil, err
	}
	if err := checkProducts(products); err != nil {
		return nil, err
	}
	return products, nil
}

// Search runs a catalog search. Results are query-specific and short-lived,
// so they bypass the cache.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	q := url.Values{}
	q.Set("q", query)
	var products []Product
	if err := s.api.Get(ctx, "/product/search", q, "", &products); err != nil {
		return nil, err
	}
	if err := checkProducts(products); err != nil {
		return nil, err
	}
	return products, nil
}

// Categories lists all categories.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.cached(ctx, []string{"categories", "all"}, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	for _, category := range categories {
		if err := checkRecord(category, "category"); err != nil {
			return nil, err
		}
	}
	return categories, nil
}

// Category returns one category by id.
func (s *Service) Category(ctx context.Context, id string) (*Category, error) {
	var category Category
	if err := s.cached(ctx, []string{"categories", id}, "/categories/"+id, nil, &category); err != nil {
		return nil, err
	}
	if err := checkRecord(category, "category"); err != nil {
		return nil, err
	}
	return &category, nil
}

// Offers lists the promotional banners.
func (s *Service) Offers(ctx context.Context) ([]Offer, error) {
	var offers []Offer
	if err := s.cached(ctx, []string{"offer", "all"}, "/offer", nil, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// checkRecord rejects malformed backend documents before they reach a page.
// A record that fails its own schema is a backend fault, not a client one.
func checkRecord(v any, what string) error {
	if err := validate.Struct(v); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backend returned an invalid "+what+" record").
			WithDetails(map[string]any{"record": what})
	}
	return nil
}

func checkProducts(products []Product) error {
	for _, product := range products {
		if err := checkRecord(product, "product"); err != nil {
			return err
		}
	}
	return nil
}

// cached resolves a read through the cache: hits deserialize straight from
// Redis, misses go upstream and the response is stored best-effort. Cache
// failures never fail the read.
func (s *Service) cached(ctx context.Context, keyParts []string, path string, query url.Values, out any) error {
	if s.cache == nil {
		return s.api.Get(ctx, path, query, "", out)
	}

	key := s.cache.CacheKey(keyParts...)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		if err := json.Unmarshal([]byte(raw), out); err == nil {
			return nil
		}
		// Corrupt entry; fall through to the backend and overwrite it.
	}

	if err := s.api.Get(ctx, path, query, "", out); err != nil {
		return err
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "catalog.cache_write_failed: "+err.Error())
	}
	return nil
}
