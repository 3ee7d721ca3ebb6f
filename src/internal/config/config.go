package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"bookjournal/src/internal/catalog"
	"bookjournal/src/internal/journal"
	"bookjournal/src/internal/publisher"
	"bookjournal/src/internal/search"
)

// DefaultPath is where the CLI looks for its config file.
const DefaultPath = "bookjournal.yaml"

// Config holds all bookjournal settings.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Search  SearchConfig  `yaml:"search"`
	Journal JournalConfig `yaml:"journal"`
	Log     LogConfig     `yaml:"log"`
}

// CatalogConfig selects and authenticates the book catalog.
type CatalogConfig struct {
	Provider string `yaml:"provider"` // rakuten, google
	BaseURL  string `yaml:"base_url,omitempty"`
	AppID    string `yaml:"app_id,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	Hits     int    `yaml:"hits"`
	Timeout  string `yaml:"timeout"`

	// OpenBD enables the openBD ISBN fallback when adding journal entries.
	OpenBD    bool   `yaml:"openbd"`
	OpenBDURL string `yaml:"openbd_url,omitempty"`
}

// SearchConfig tunes the enrichment pipeline.
type SearchConfig struct {
	MaxRelated int      `yaml:"max_related"`
	QueryMatch string   `yaml:"query_match"` // fold, exact
	Publishers []string `yaml:"publishers"`
	StopWords  []string `yaml:"stop_words,omitempty"`
}

// JournalConfig locates the local journal database.
type JournalConfig struct {
	DBPath string `yaml:"db_path"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Provider: catalog.ProviderRakuten,
			Hits:     30,
			Timeout:  "10s",
			OpenBD:   true,
		},
		Search: SearchConfig{
			MaxRelated: search.MaxRelated,
			QueryMatch: string(search.MatchFold),
			Publishers: append([]string(nil), publisher.DefaultAcademic...),
		},
		Journal: JournalConfig{DBPath: journal.DefaultPath},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BOOKJOURNAL_PROVIDER"); v != "" {
		c.Catalog.Provider = v
	}
	if v := os.Getenv("RAKUTEN_APP_ID"); v != "" {
		c.Catalog.AppID = v
	}
	if v := os.Getenv("GOOGLE_BOOKS_API_KEY"); v != "" {
		c.Catalog.APIKey = v
	}
	if v := os.Getenv("BOOKJOURNAL_DB"); v != "" {
		c.Journal.DBPath = v
	}
	if v := os.Getenv("BOOKJOURNAL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// ValidProviders lists the supported catalogs.
var ValidProviders = []string{catalog.ProviderRakuten, catalog.ProviderGoogle}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	p := strings.ToLower(strings.TrimSpace(c.Catalog.Provider))
	valid := p == ""
	for _, vp := range ValidProviders {
		if p == vp {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("invalid catalog provider: %s (valid: %v)", c.Catalog.Provider, ValidProviders)
	}
	switch search.MatchMode(c.Search.QueryMatch) {
	case search.MatchFold, search.MatchExact, "":
	default:
		return fmt.Errorf("invalid query_match: %s (valid: fold, exact)", c.Search.QueryMatch)
	}
	if c.Search.MaxRelated < 1 || c.Search.MaxRelated > search.MaxRelated {
		return fmt.Errorf("max_related must be between 1 and %d, got %d", search.MaxRelated, c.Search.MaxRelated)
	}
	if c.Catalog.Timeout != "" {
		if _, err := time.ParseDuration(c.Catalog.Timeout); err != nil {
			return fmt.Errorf("invalid catalog timeout %q: %w", c.Catalog.Timeout, err)
		}
	}
	return nil
}

// GetTimeout returns the catalog HTTP timeout, defaulting to 10s.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Catalog.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// CatalogOptions converts the catalog section for catalog.New.
func (c *Config) CatalogOptions() catalog.Options {
	return catalog.Options{
		Provider: strings.ToLower(strings.TrimSpace(c.Catalog.Provider)),
		BaseURL:  c.Catalog.BaseURL,
		AppID:    c.Catalog.AppID,
		APIKey:   c.Catalog.APIKey,
		Hits:     c.Catalog.Hits,
		Timeout:  c.GetTimeout(),
	}
}
