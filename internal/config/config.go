package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr string

	StoreAPIURL   string
	StoreAPIToken string
	// ProxyEnabled serves /proxy, forwarding to StoreAPIURL with the token added server-side.
	ProxyEnabled bool

	OrderTimeout        time.Duration
	CatalogFetchTimeout time.Duration
	CatalogTTL          time.Duration
	SessionIdleTimeout  time.Duration

	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	Currency              currency.Unit

	RedisURL    string
	DatabaseURL string

	LogLevel  string
	LogFormat string
	GinMode   string
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("godotenv.Load: %w", err)
	}

	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	r := reader{getenv: getenv}

	cfg := Config{
		Addr:                  r.string("STOREFRONT_ADDR", ":8080"),
		StoreAPIURL:           r.string("STORE_API_URL", ""),
		StoreAPIToken:         r.string("STORE_API_TOKEN", ""),
		ProxyEnabled:          r.bool("PROXY_ENABLED", false),
		OrderTimeout:          r.duration("ORDER_TIMEOUT", 15*time.Second),
		CatalogFetchTimeout:   r.duration("CATALOG_FETCH_TIMEOUT", 15*time.Second),
		CatalogTTL:            r.duration("CATALOG_TTL", 10*time.Minute),
		SessionIdleTimeout:    r.duration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		DeliveryFee:           r.decimal("DELIVERY_FEE", decimal.NewFromInt(200)),
		FreeDeliveryThreshold: r.decimal("FREE_DELIVERY_THRESHOLD", decimal.NewFromInt(2000)),
		Currency:              r.currency("SHOP_CURRENCY", currency.RUB),
		RedisURL:              r.string("REDIS_URL", ""),
		DatabaseURL:           r.string("DATABASE_URL", ""),
		LogLevel:              r.string("LOG_LEVEL", "info"),
		LogFormat:             r.string("LOG_FORMAT", "json"),
		GinMode:               r.string("GIN_MODE", "release"),
	}

	if cfg.StoreAPIURL == "" {
		r.errs = append(r.errs, fmt.Errorf("STORE_API_URL is required"))
	}
	if cfg.DeliveryFee.IsNegative() {
		r.errs = append(r.errs, fmt.Errorf("DELIVERY_FEE must not be negative"))
	}
	if cfg.FreeDeliveryThreshold.IsNegative() {
		r.errs = append(r.errs, fmt.Errorf("FREE_DELIVERY_THRESHOLD must not be negative"))
	}
	if !slices.Contains(ginModes, cfg.GinMode) {
		r.errs = append(r.errs, fmt.Errorf("GIN_MODE[%s] must be one of %v", cfg.GinMode, ginModes))
	}

	if err := errors.Join(r.errs...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

var ginModes = []string{"debug", "release", "test"}

type reader struct {
	getenv func(string) string
	errs   []error
}

func (r *reader) string(key, def string) string {
	if v := r.getenv(key); v != "" {
		return v
	}
	return def
}

func (r *reader) bool(key string, def bool) bool {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s[%s] is not a bool: %w", key, v, err))
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s[%s] is not a duration: %w", key, v, err))
		return def
	}
	if d <= 0 {
		r.errs = append(r.errs, fmt.Errorf("%s[%s] must be positive", key, v))
		return def
	}
	return d
}

func (r *reader) decimal(key string, def decimal.Decimal) decimal.Decimal {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s[%s] is not a number: %w", key, v, err))
		return def
	}
	return d
}

func (r *reader) currency(key string, def currency.Unit) currency.Unit {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	u, err := currency.ParseISO(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s[%s] is not a valid currency: %w", key, v, err))
		return def
	}
	return u
}
