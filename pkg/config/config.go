package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Session  SessionConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Upstream.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	LoginPath    string `envconfig:"STOREFRONT_LOGIN_PATH" default:"/auth/login"`

	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig locates the commerce backend every request is proxied to.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_UPSTREAM_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"STOREFRONT_UPSTREAM_TIMEOUT" default:"15s"`
}

func (u UpstreamConfig) validate() error {
	base := strings.TrimSpace(u.BaseURL)
	if base == "" {
		return fmt.Errorf("STOREFRONT_UPSTREAM_BASE_URL is required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("upstream base url must be http(s): %q", base)
	}
	return nil
}

// NormalizedBaseURL strips a trailing slash so paths can be joined naively.
func (u UpstreamConfig) NormalizedBaseURL() string {
	return strings.TrimRight(strings.TrimSpace(u.BaseURL), "/")
}

type SessionConfig struct {
	TokenCookie  string        `envconfig:"STOREFRONT_SESSION_TOKEN_COOKIE" default:"token"`
	SIDCookie    string        `envconfig:"STOREFRONT_SESSION_SID_COOKIE" default:"storefront_sid"`
	TokenTTL     time.Duration `envconfig:"STOREFRONT_SESSION_TOKEN_TTL" default:"168h"`
	SecureCookie bool          `envconfig:"STOREFRONT_SESSION_SECURE_COOKIE" default:"false"`

	// In-process cart/wishlist stores idle longer than IdleTTL are reclaimed
	// by a background sweep.
	IdleTTL    time.Duration `envconfig:"STOREFRONT_SESSION_IDLE_TTL" default:"1h"`
	SweepEvery time.Duration `envconfig:"STOREFRONT_SESSION_SWEEP_EVERY" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"STOREFRONT_CATALOG_CACHE_TTL" default:"5m"`
}

// CheckoutConfig wires the hosted payment widget. The public key is safe to
// echo to browsers; the secret side lives in the backend.
type CheckoutConfig struct {
	PublicKey  string        `envconfig:"STOREFRONT_CHECKOUT_PUBLIC_KEY"`
	HandoffTTL time.Duration `envconfig:"STOREFRONT_CHECKOUT_HANDOFF_TTL" default:"30m"`
	UseLegacy  bool          `envconfig:"STOREFRONT_CHECKOUT_USE_LEGACY" default:"false"`
}
