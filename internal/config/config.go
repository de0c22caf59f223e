package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Revenue API. APIBaseURLServer is only read by the server; PublicAPIBaseURL is
	// the address also advertised to browsers.
	APIBaseURLServer string
	PublicAPIBaseURL string
	APITimeout       time.Duration

	// DataBackend selects the data source: "api" (default) or "memory" for a
	// generated in-process dataset seeded from SeedDir.
	DataBackend string
	SeedDir     string

	// Sessions
	SessionTTL time.Duration
	SessionMax int

	// Rate limiting for form posts
	RateLimitPerMinute int

	// Extra CIDRs allowed to set X-Forwarded-For, comma separated
	TrustedProxies []string

	// Rendering
	ChartHeight int

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		APIBaseURLServer: getEnv("API_BASE_URL", ""),
		PublicAPIBaseURL: getEnv("PUBLIC_API_BASE_URL", ""),
		APITimeout:       getEnvDuration("API_TIMEOUT", 10*time.Second),

		DataBackend: strings.ToLower(getEnv("DATA_BACKEND", "api")),
		SeedDir:     getEnv("SEED_DIR", "data"),

		SessionTTL: getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionMax: getEnvInt("SESSION_MAX", 1000),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),

		ChartHeight: getEnvInt("CHART_HEIGHT", 400),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// APIBaseURL returns the base URL of the revenue API, preferring the server-only
// value over the public one. An empty result means neither is configured.
func (c *Config) APIBaseURL() string {
	if c.APIBaseURLServer != "" {
		return strings.TrimRight(c.APIBaseURLServer, "/")
	}
	return strings.TrimRight(c.PublicAPIBaseURL, "/")
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the configuration and returns an error if invalid.
// A missing API base URL is not an error here: the page reports it on every load.
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	for _, u := range []struct{ name, raw string }{
		{"API_BASE_URL", c.APIBaseURLServer},
		{"PUBLIC_API_BASE_URL", c.PublicAPIBaseURL},
	} {
		if u.raw == "" {
			continue
		}
		if parsedURL, err := url.Parse(u.raw); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': %v", u.name, u.raw, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid %s scheme '%s': must be 'http' or 'https'", u.name, parsedURL.Scheme))
		}
	}

	if c.DataBackend != "api" && c.DataBackend != "memory" {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be 'api' or 'memory'", c.DataBackend))
	}

	if c.APITimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must not be negative", c.APITimeout))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid session max %d: must be at least 1", c.SessionMax))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR", cidr))
		}
	}

	if c.ChartHeight < 100 || c.ChartHeight > 2000 {
		errors = append(errors, fmt.Sprintf("invalid chart height %d: must be between 100 and 2000", c.ChartHeight))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
