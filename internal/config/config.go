// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	PaymentProviderBackend = "backend"
	PaymentProviderStripe  = "stripe"

	CheckoutModeDirect   = "direct"
	CheckoutModeWorkflow = "workflow"

	// MaxBackendTimeout is the exclusive upper bound on BACKEND_TIMEOUT
	MaxBackendTimeout = 10 * time.Second
)

type Config struct {
	Port           string
	BackendURL     string
	BackendTimeout time.Duration
	// BackendToken authenticates the worker to the backend
	BackendToken string

	TemporalHost string
	DatabaseURL  string
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
	ServiceName  string

	PaymentProvider string
	StripeSecretKey string
	Currency        string
	CheckoutMode    string
	// PaymentTimeout bounds a request that opens or captures a payment
	PaymentTimeout time.Duration

	CacheTTL      time.Duration
	SessionTTL    time.Duration
	SecureCookies bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getenv("API_PORT", "8080"),
		BackendURL:      getenv("BACKEND_URL", "http://localhost:3000/api"),
		BackendToken:    getenv("BACKEND_TOKEN", ""),
		TemporalHost:    getenv("TEMPORAL_HOST", "localhost:7233"),
		DatabaseURL:     getenv("DATABASE_URL", ""),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		KafkaBrokers:    splitCSV(getenv("KAFKA_BROKERS", "")),
		KafkaTopic:      getenv("KAFKA_TOPIC", "rental.events"),
		ServiceName:     getenv("SERVICE_NAME", "rental-api"),
		PaymentProvider: strings.ToLower(getenv("PAYMENT_PROVIDER", PaymentProviderBackend)),
		StripeSecretKey: getenv("STRIPE_SECRET_KEY", ""),
		Currency:        strings.ToUpper(getenv("CURRENCY", "USD")),
		CheckoutMode:    strings.ToLower(getenv("CHECKOUT_MODE", CheckoutModeDirect)),
	}

	var err error
	if cfg.BackendTimeout, err = getDuration("BACKEND_TIMEOUT", 8*time.Second); err != nil {
		return nil, err
	}
	if cfg.PaymentTimeout, err = getDuration("PAYMENT_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SecureCookies, err = strconv.ParseBool(getenv("SECURE_COOKIES", "false")); err != nil {
		return nil, fmt.Errorf("invalid SECURE_COOKIES: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BackendTimeout <= 0 || c.BackendTimeout >= MaxBackendTimeout {
		return fmt.Errorf("BACKEND_TIMEOUT must be between 0 and %s, got %s", MaxBackendTimeout, c.BackendTimeout)
	}
	if c.PaymentTimeout < 2*c.BackendTimeout {
		return fmt.Errorf("PAYMENT_TIMEOUT must be at least twice BACKEND_TIMEOUT, got %s", c.PaymentTimeout)
	}
	switch c.PaymentProvider {
	case PaymentProviderBackend:
	case PaymentProviderStripe:
		if c.StripeSecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required when PAYMENT_PROVIDER=stripe")
		}
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.PaymentProvider)
	}
	if c.CheckoutMode != CheckoutModeDirect && c.CheckoutMode != CheckoutModeWorkflow {
		return fmt.Errorf("unknown CHECKOUT_MODE %q", c.CheckoutMode)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
