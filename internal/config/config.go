package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string
	UpstreamTimeout time.Duration

	// Upstream base URLs. All three default to the marketplace API gateway.
	IdentityURL string
	TradeURL    string
	CatalogURL  string

	CORSAllowOrigins []string

	LogLevel  string
	LogFormat string

	// Checkout
	ShippingFee              decimal.Decimal
	PaymentMethods           []string
	VerifyListingsAtCheckout bool

	ListingPageSize      int
	SessionSweepInterval time.Duration
}

// fileConfig mirrors the YAML layout of configs/storefront.yaml.
type fileConfig struct {
	Server struct {
		Port            string   `yaml:"port"`
		CORSAllowOrigin []string `yaml:"cors_allow_origins"`
	} `yaml:"server"`
	Upstreams struct {
		APIBaseURL  string `yaml:"api_base_url"`
		IdentityURL string `yaml:"identity_url"`
		TradeURL    string `yaml:"trade_url"`
		CatalogURL  string `yaml:"catalog_url"`
		Timeout     string `yaml:"timeout"`
	} `yaml:"upstreams"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	Checkout struct {
		ShippingFee    string   `yaml:"shipping_fee"`
		PaymentMethods []string `yaml:"payment_methods"`
		VerifyListings *bool    `yaml:"verify_listings"`
	} `yaml:"checkout"`
	Listings struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"listings"`
	Sessions struct {
		SweepInterval string `yaml:"sweep_interval"`
	} `yaml:"sessions"`
}

const defaultAPIBaseURL = "http://localhost:8888"

func defaults() Config {
	return Config{
		Port:                 "8080",
		UpstreamTimeout:      10 * time.Second,
		IdentityURL:          defaultAPIBaseURL,
		TradeURL:             defaultAPIBaseURL,
		CatalogURL:           defaultAPIBaseURL,
		CORSAllowOrigins:     []string{"*"},
		LogLevel:             "info",
		LogFormat:            "json",
		ShippingFee:          decimal.RequireFromString("5.00"),
		PaymentMethods:       []string{"COD", "BANK_TRANSFER", "MOMO"},
		ListingPageSize:      12,
		SessionSweepInterval: time.Minute,
	}
}

// Load resolves configuration as defaults, then the YAML file at path (if it
// exists), then environment variables.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := applyFile(&cfg, raw); err != nil {
				return Config{}, err
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, raw []byte) error {
	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if f.Server.Port != "" {
		cfg.Port = f.Server.Port
	}
	if len(f.Server.CORSAllowOrigin) > 0 {
		cfg.CORSAllowOrigins = f.Server.CORSAllowOrigin
	}
	if f.Upstreams.APIBaseURL != "" {
		cfg.IdentityURL = f.Upstreams.APIBaseURL
		cfg.TradeURL = f.Upstreams.APIBaseURL
		cfg.CatalogURL = f.Upstreams.APIBaseURL
	}
	if f.Upstreams.IdentityURL != "" {
		cfg.IdentityURL = f.Upstreams.IdentityURL
	}
	if f.Upstreams.TradeURL != "" {
		cfg.TradeURL = f.Upstreams.TradeURL
	}
	if f.Upstreams.CatalogURL != "" {
		cfg.CatalogURL = f.Upstreams.CatalogURL
	}
	if f.Upstreams.Timeout != "" {
		d, err := time.ParseDuration(f.Upstreams.Timeout)
		if err != nil {
			return fmt.Errorf("upstreams.timeout: %w", err)
		}
		cfg.UpstreamTimeout = d
	}
	if f.Logging.Level != "" {
		cfg.LogLevel = f.Logging.Level
	}
	if f.Logging.Format != "" {
		cfg.LogFormat = f.Logging.Format
	}
	if f.Checkout.ShippingFee != "" {
		fee, err := decimal.NewFromString(f.Checkout.ShippingFee)
		if err != nil {
			return fmt.Errorf("checkout.shipping_fee: %w", err)
		}
		cfg.ShippingFee = fee
	}
	if len(f.Checkout.PaymentMethods) > 0 {
		cfg.PaymentMethods = f.Checkout.PaymentMethods
	}
	if f.Checkout.VerifyListings != nil {
		cfg.VerifyListingsAtCheckout = *f.Checkout.VerifyListings
	}
	if f.Listings.PageSize > 0 {
		cfg.ListingPageSize = f.Listings.PageSize
	}
	if f.Sessions.SweepInterval != "" {
		d, err := time.ParseDuration(f.Sessions.SweepInterval)
		if err != nil {
			return fmt.Errorf("sessions.sweep_interval: %w", err)
		}
		cfg.SessionSweepInterval = d
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = getenv("PORT", cfg.Port)

	if base := getenv("API_BASE_URL", ""); base != "" {
		cfg.IdentityURL = base
		cfg.TradeURL = base
		cfg.CatalogURL = base
	}
	cfg.IdentityURL = getenv("IDENTITY_URL", cfg.IdentityURL)
	cfg.TradeURL = getenv("TRADE_URL", cfg.TradeURL)
	cfg.CatalogURL = getenv("CATALOG_URL", cfg.CatalogURL)

	if v := getenv("UPSTREAM_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("UPSTREAM_TIMEOUT: %w", err)
		}
		cfg.UpstreamTimeout = d
	}
	if v := getenv("CORS_ALLOW_ORIGINS", ""); v != "" {
		cfg.CORSAllowOrigins = splitCSV(v)
	}

	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("LOG_FORMAT", cfg.LogFormat)

	if v := getenv("SHIPPING_FEE", ""); v != "" {
		fee, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("SHIPPING_FEE: %w", err)
		}
		cfg.ShippingFee = fee
	}
	if v := getenv("PAYMENT_METHODS", ""); v != "" {
		cfg.PaymentMethods = splitCSV(v)
	}
	if v := getenv("VERIFY_LISTINGS_AT_CHECKOUT", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("VERIFY_LISTINGS_AT_CHECKOUT: %w", err)
		}
		cfg.VerifyListingsAtCheckout = b
	}
	if v := getenv("LISTING_PAGE_SIZE", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LISTING_PAGE_SIZE: %w", err)
		}
		cfg.ListingPageSize = n
	}
	if v := getenv("SESSION_SWEEP_INTERVAL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_SWEEP_INTERVAL: %w", err)
		}
		cfg.SessionSweepInterval = d
	}
	return nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("port must not be empty")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("upstream timeout must be > 0")
	}
	if c.ShippingFee.IsNegative() {
		return errors.New("shipping fee must not be negative")
	}
	if len(c.PaymentMethods) == 0 {
		return errors.New("at least one payment method is required")
	}
	if c.ListingPageSize < 1 || c.ListingPageSize > 100 {
		return fmt.Errorf("listing page size must be within 1..100, got %d", c.ListingPageSize)
	}
	if c.SessionSweepInterval <= 0 {
		return errors.New("session sweep interval must be > 0")
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
