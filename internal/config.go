package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends selectable through configuration
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// DefaultAPIURL is the backend origin used when nothing else is configured
const DefaultAPIURL = "http://localhost:8000"

// Config holds the client configuration
type Config struct {
	APIURL         string        `yaml:"api_url"`
	StateDir       string        `yaml:"-"`
	StoreBackend   string        `yaml:"store"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	TopK           int           `yaml:"top_k"`
}

// Overrides carries values set explicitly on the command line
type Overrides struct {
	APIURL       string
	StateDir     string
	StoreBackend string
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		APIURL:       DefaultAPIURL,
		StoreBackend: StoreFile,
		TopK:         DefaultTopK,
	}
}

// Paths returns the state layout for this configuration
func (c *Config) Paths() StatePaths {
	return StatePathsFor(c.StateDir)
}

// ConfigFilePath returns the optional yaml config location
func (c *Config) ConfigFilePath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// LoadConfig resolves configuration from defaults, config.yaml, .env and
// the environment, then command-line overrides, in increasing precedence.
func LoadConfig(o Overrides) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		LogDebug("No .env file loaded: %v", err)
	}

	cfg := DefaultConfig()

	stateDir := firstNonEmpty(o.StateDir, os.Getenv("OPENUP_STATE_DIR"))
	if stateDir == "" {
		paths, err := DetectStatePaths()
		if err != nil {
			return nil, err
		}
		stateDir = paths.StateDir
	}
	cfg.StateDir = stateDir

	if err := cfg.loadFile(cfg.ConfigFilePath()); err != nil {
		return nil, err
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if o.APIURL != "" {
		cfg.APIURL = o.APIURL
	}
	if o.StoreBackend != "" {
		cfg.StoreBackend = o.StoreBackend
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	LogDebug("Loaded config from %s", path)
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("OPENUP_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("OPENUP_STORE"); v != "" {
		c.StoreBackend = v
	}
	if v := os.Getenv("OPENUP_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid OPENUP_REQUEST_TIMEOUT %q: %w", v, err)
		}
		c.RequestTimeout = d
	}
	if v := os.Getenv("OPENUP_TOP_K"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid OPENUP_TOP_K %q: %w", v, err)
		}
		c.TopK = n
	}
	return nil
}

// Validate rejects configurations the client cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api url %q", c.APIURL)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")

	switch c.StoreBackend {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unsupported store backend: %s (supported: %s, %s, %s)", c.StoreBackend, StoreFile, StoreSQLite, StoreMemory)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
