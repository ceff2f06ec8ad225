package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// Signing secrets shorter than this are trivially brute-forceable for HS256.
	minSecretLen = 32

	defaultAddr       = ":8080"
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Config holds the validated process configuration. It is constructed once in
// main and passed by value into the packages that need it; nothing reads the
// environment after startup.
type Config struct {
	Addr string

	// PostgresDSN is optional: the API falls back to in-memory stores when it
	// is empty, which keeps local development and smoke tests standalone.
	PostgresDSN string

	// AccessSecret and RefreshSecret sign the two token families. They must be
	// independent: a leaked access secret must not allow forging refresh
	// tokens, and vice versa.
	AccessSecret  string
	RefreshSecret string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	RateBurst  int
	RatePerSec int

	// ActiveRecheck makes every authenticated request re-verify that the
	// account is still active, trading a store round-trip per request for
	// immediate revocation on deactivation.
	ActiveRecheck bool
}

// Load reads configuration from the environment and validates it. Any
// violation of the security preconditions (missing, short, or shared signing
// secrets) is a startup error: the process must refuse to run rather than
// serve with a weakened token scheme.
func Load() (Config, error) {
	cfg := Config{
		Addr:          envOr("HR_ADDR", defaultAddr),
		PostgresDSN:   strings.TrimSpace(os.Getenv("HR_PG_DSN")),
		AccessSecret:  strings.TrimSpace(os.Getenv("HR_ACCESS_SECRET")),
		RefreshSecret: strings.TrimSpace(os.Getenv("HR_REFRESH_SECRET")),
		AccessTTL:     defaultAccessTTL,
		RefreshTTL:    defaultRefreshTTL,
		RateBurst:     20,
		RatePerSec:    10,
	}

	if v := os.Getenv("HR_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("config: invalid HR_ACCESS_TTL %q", v)
		}
		cfg.AccessTTL = d
	}
	if v := os.Getenv("HR_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("config: invalid HR_REFRESH_TTL %q", v)
		}
		cfg.RefreshTTL = d
	}
	if v := os.Getenv("HR_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: invalid HR_RATE_BURST %q", v)
		}
		cfg.RateBurst = n
	}
	if v := os.Getenv("HR_RATE_PER_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: invalid HR_RATE_PER_SEC %q", v)
		}
		cfg.RatePerSec = n
	}
	if v := os.Getenv("HR_ACTIVE_RECHECK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid HR_ACTIVE_RECHECK %q", v)
		}
		cfg.ActiveRecheck = b
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the security preconditions on an already constructed Config.
func (c Config) Validate() error {
	if c.AccessSecret == "" {
		return errors.New("config: HR_ACCESS_SECRET is required")
	}
	if c.RefreshSecret == "" {
		return errors.New("config: HR_REFRESH_SECRET is required")
	}
	if len(c.AccessSecret) < minSecretLen {
		return fmt.Errorf("config: HR_ACCESS_SECRET must be at least %d characters", minSecretLen)
	}
	if len(c.RefreshSecret) < minSecretLen {
		return fmt.Errorf("config: HR_REFRESH_SECRET must be at least %d characters", minSecretLen)
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("config: access and refresh secrets must differ")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
