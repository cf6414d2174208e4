package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/corey/sahayak/internal/adapters/bbolt"
	"github.com/corey/sahayak/internal/adapters/web"
	"github.com/corey/sahayak/internal/ports"
	"github.com/joho/godotenv"
)

// Environment variables read by LoadConfig.
const (
	EnvHome         = "SAHAYAK_HOME"
	EnvCSV          = "SAHAYAK_CSV"
	EnvCacheTTL     = "SAHAYAK_CACHE_TTL"
	EnvHTTPAddr     = "SAHAYAK_HTTP_ADDR"
	EnvLogLevel     = "SAHAYAK_LOG_LEVEL"
	EnvDefaultState = "SAHAYAK_DEFAULT_STATE"
	EnvSearchLimit  = "SAHAYAK_SEARCH_LIMIT"
	EnvLang         = "SAHAYAK_LANG"
	EnvCORSOrigins  = "SAHAYAK_CORS_ORIGINS"
)

// envFiles are tried in order; the first one that exists is loaded.
var envFiles = []string{".env", "../.env"}

// Config holds initialization parameters for the App.
type Config struct {
	Home         string        // data directory (default: $HOME/.sahayak)
	CSVPath      string        // corpus CSV; empty serves only what the cache holds
	CacheTTL     time.Duration // corpus snapshot freshness; <= 0 never expires
	HTTPAddr     string        // API listen address
	LogLevel     string
	DefaultState string   // state used when neither a request nor saved settings name one
	SearchLimit  int      // hits returned when a request sets no limit
	Lang         string   // display language, "en" or "hi"
	CORSOrigins  []string // nil uses the web package defaults
}

// LoadConfig loads an optional .env file, then reads SAHAYAK_* variables
// over the defaults. Values already in the environment win over .env.
func LoadConfig() (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			break
		}
	}
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Home:         getenv(EnvHome),
		CSVPath:      getenv(EnvCSV),
		HTTPAddr:     getenv(EnvHTTPAddr),
		LogLevel:     getenv(EnvLogLevel),
		DefaultState: strings.ToLower(strings.TrimSpace(getenv(EnvDefaultState))),
		Lang:         getenv(EnvLang),
	}

	if v := getenv(EnvCacheTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvCacheTTL, err)
		}
		cfg.CacheTTL = ttl
	} else {
		cfg.CacheTTL = bbolt.DefaultTTL
	}

	if v := getenv(EnvSearchLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvSearchLimit, err)
		}
		if n <= 0 {
			return Config{}, fmt.Errorf("%s: must be positive, got %d", EnvSearchLimit, n)
		}
		cfg.SearchLimit = n
	}

	if v := getenv(EnvCORSOrigins); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if cfg.Lang != "" && cfg.Lang != "en" && cfg.Lang != "hi" {
		return Config{}, fmt.Errorf("%s: unsupported language %q", EnvLang, cfg.Lang)
	}

	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults fills unset fields. CacheTTL is left alone: zero is a valid
// "never expire" setting.
func (c *Config) applyDefaults() error {
	if c.Home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		c.Home = filepath.Join(userHome, ".sahayak")
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = web.DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SearchLimit == 0 {
		c.SearchLimit = ports.DefaultSearchLimit
	}
	if c.Lang == "" {
		c.Lang = "en"
	}
	return nil
}
