package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete panel configuration, loadable from environment
// variables (PANEL_ prefix), flags, or YAML config files.
type Config struct {
	Addr     string `default:"0.0.0.0:8080" usage:"panel listen address"`
	StoreURL string `usage:"order store base URL (PANEL_STORE_URL)" flag:"store-url"`

	// StoreToken is the service credential used for background polling;
	// interactive requests forward the caller's own bearer token instead.
	StoreToken string `usage:"service token for background store polling" flag:"store-token"`

	// DatabaseURL enables the print journal when set.
	DatabaseURL string `usage:"PostgreSQL URL for the print journal (optional)" flag:"database-url"`

	// JWTSecret enables local token verification; when empty, role checks
	// go to the store's auth endpoint.
	JWTSecret string `usage:"shared HMAC secret for bearer tokens" flag:"jwt-secret"`

	PollInterval    time.Duration `default:"15s" usage:"order watcher poll interval" flag:"poll-interval"`
	PrintQueueDepth int           `default:"64"  usage:"print journal queue depth" flag:"print-queue-depth"`

	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"300" usage:"max requests per window"`
	Window time.Duration `default:"1m"  usage:"rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "PANEL",
		Files:     []string{"config.yaml", "/etc/kitchen-panel/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.StoreURL == "" {
		return nil, errors.New("order store URL is required: set PANEL_STORE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) onto the PANEL_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
