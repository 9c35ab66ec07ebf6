package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Providers understood by the reasoning-model factory.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config holds application configuration.
type Config struct {
	// DataDir is the root of the static notes tree (one subdirectory per folder).
	// Relative paths are resolved against the base directory. Empty means <base>/notes.
	DataDir string `json:"data_dir,omitempty"`

	// Provider selects the reasoning model backend: "anthropic" or "openai".
	Provider string `json:"provider,omitempty"`

	// Model is the provider-specific model name.
	Model string `json:"model,omitempty"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways, proxies).
	BaseURL string `json:"base_url,omitempty"`

	// MaxTokens caps each model response.
	MaxTokens int `json:"max_tokens,omitempty"`

	// MaxRounds bounds the number of model calls per command.
	MaxRounds int `json:"max_rounds,omitempty"`

	// ModelTimeoutSeconds bounds a single model call.
	ModelTimeoutSeconds int `json:"model_timeout_seconds,omitempty"`

	// ModelMaxRetries retries rate-limited or 5xx model calls. 0 disables retries.
	ModelMaxRetries int `json:"model_max_retries,omitempty"`

	// DefaultUser is the user id used by the CLI and MCP surfaces,
	// which have no authentication of their own.
	DefaultUser string `json:"default_user,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// WebSearch configures the external lookup used by the web_search tool.
	WebSearch WebSearchConfig `json:"web_search"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of tool names to exclude from the registry.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// WebSearchConfig holds settings for the instant-answer lookup.
type WebSearchConfig struct {
	Endpoint          string  `json:"endpoint,omitempty"`
	TimeoutSeconds    int     `json:"timeout_seconds,omitempty"`
	MaxRetries        int     `json:"max_retries,omitempty"` // negative disables retries
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:            ProviderAnthropic,
		Model:               "claude-sonnet-4-20250514",
		MaxTokens:           4096,
		MaxRounds:           10,
		ModelTimeoutSeconds: 120,
		DefaultUser:         "local",
		LogLevel:            "info",
		WebSearch: WebSearchConfig{
			Endpoint:          "https://api.duckduckgo.com/",
			TimeoutSeconds:    10,
			MaxRetries:        2,
			RequestsPerSecond: 1,
		},
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.orden.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithProject loads configuration from both the global base directory and
// the nearest project .orden/config.json found walking upward from startDir.
// Project config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithProject(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	project, err := loadFileRaw(FindProjectConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), project), nil
}

// FindProjectConfig walks upward from startDir to find the nearest .orden/config.json.
// Returns the path if found, or empty string if not found.
func FindProjectConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".orden", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ResolveDataDir returns the absolute static notes directory for baseDir.
func (c *Config) ResolveDataDir(baseDir string) string {
	switch {
	case c.DataDir == "":
		return filepath.Join(baseDir, "notes")
	case filepath.IsAbs(c.DataDir):
		return c.DataDir
	default:
		return filepath.Join(baseDir, c.DataDir)
	}
}

// APIKeyEnv returns the environment variable holding the provider credential.
func (c *Config) APIKeyEnv() string {
	if c.Provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

// APIKey returns the provider credential from the environment, or "" if unset.
func (c *Config) APIKey() string {
	return strings.TrimSpace(os.Getenv(c.APIKeyEnv()))
}

// ModelTimeout returns the per-call model timeout.
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.ModelTimeoutSeconds) * time.Second
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.DataDir = pick(overlay.DataDir, base.DataDir)
	result.Provider = pick(overlay.Provider, base.Provider)
	result.Model = pick(overlay.Model, base.Model)
	result.BaseURL = pick(overlay.BaseURL, base.BaseURL)
	result.MaxTokens = pick(overlay.MaxTokens, base.MaxTokens)
	result.MaxRounds = pick(overlay.MaxRounds, base.MaxRounds)
	result.ModelTimeoutSeconds = pick(overlay.ModelTimeoutSeconds, base.ModelTimeoutSeconds)
	result.ModelMaxRetries = pick(overlay.ModelMaxRetries, base.ModelMaxRetries)
	result.DefaultUser = pick(overlay.DefaultUser, base.DefaultUser)
	result.LogLevel = pick(overlay.LogLevel, base.LogLevel)
	result.DBMaxOpenConns = pick(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pick(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.WebSearch = WebSearchConfig{
		Endpoint:          pick(overlay.WebSearch.Endpoint, base.WebSearch.Endpoint),
		TimeoutSeconds:    pick(overlay.WebSearch.TimeoutSeconds, base.WebSearch.TimeoutSeconds),
		MaxRetries:        pick(overlay.WebSearch.MaxRetries, base.WebSearch.MaxRetries),
		RequestsPerSecond: pick(overlay.WebSearch.RequestsPerSecond, base.WebSearch.RequestsPerSecond),
	}

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// pick returns overlay unless it is the zero value.
func pick[T comparable](overlay, base T) T {
	var zero T
	if overlay != zero {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
