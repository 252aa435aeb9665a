// ABOUTME: Configuration management for sectiondiff with YAML or TOML config loading.
// ABOUTME: Handles embedding, comparison, fetch, search, and log settings plus env overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/2389-research/sectiondiff/internal/align"
	"github.com/2389-research/sectiondiff/internal/compare"
	"github.com/2389-research/sectiondiff/internal/embeddings"
	"github.com/2389-research/sectiondiff/internal/fetch"
	"github.com/2389-research/sectiondiff/internal/logging"
)

// Environment variables that override file settings.
const (
	EnvEmbeddingURL    = "SECTIONDIFF_EMBEDDING_URL"
	EnvEmbeddingAPIKey = "SECTIONDIFF_EMBEDDING_API_KEY"
	EnvEmbeddingModel  = "SECTIONDIFF_EMBEDDING_MODEL"
	EnvSearchAPIKey    = "SERPAPI_API_KEY"
)

// Defaults target a local Ollama server exposing an OpenAI-compatible API.
const (
	DefaultEmbeddingURL   = "http://localhost:11434/v1"
	DefaultEmbeddingModel = "all-minilm"
	DefaultCacheTTL       = 60
	DefaultCacheCapacity  = 10000
)

// Config stores sectiondiff configuration loaded from ~/.config/sectiondiff/config.yaml.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding" toml:"embedding"`
	Compare   CompareConfig   `yaml:"compare" toml:"compare"`
	Fetch     FetchConfig     `yaml:"fetch" toml:"fetch"`
	Search    SearchConfig    `yaml:"search" toml:"search"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// EmbeddingConfig selects and tunes the embedding backend.
type EmbeddingConfig struct {
	Backend         string     `yaml:"backend" toml:"backend"`
	BaseURL         string     `yaml:"base_url" toml:"base_url"`
	APIKey          string     `yaml:"api_key,omitempty" toml:"api_key"`
	Model           string     `yaml:"model" toml:"model"`
	Dimension       int        `yaml:"dimension,omitempty" toml:"dimension"`
	BatchSize       int        `yaml:"batch_size" toml:"batch_size"`
	TimeoutSeconds  int        `yaml:"timeout_seconds" toml:"timeout_seconds"`
	CacheTTLMinutes int        `yaml:"cache_ttl_minutes" toml:"cache_ttl_minutes"`
	CacheCapacity   int        `yaml:"cache_capacity" toml:"cache_capacity"`
	ONNX            ONNXConfig `yaml:"onnx,omitempty" toml:"onnx"`
}

// ONNXConfig holds paths for the in-process model.
type ONNXConfig struct {
	LibraryPath      string `yaml:"library_path,omitempty" toml:"library_path"`
	ModelPath        string `yaml:"model_path,omitempty" toml:"model_path"`
	TokenizerPath    string `yaml:"tokenizer_path,omitempty" toml:"tokenizer_path"`
	MaxSeqLen        int    `yaml:"max_seq_len,omitempty" toml:"max_seq_len"`
	SkipTokenTypeIDs bool   `yaml:"skip_token_type_ids,omitempty" toml:"skip_token_type_ids"`
}

// CompareConfig holds alignment defaults. A nil Threshold follows the normalization setting.
type CompareConfig struct {
	Threshold *float64 `yaml:"threshold,omitempty" toml:"threshold"`
	Normalize bool     `yaml:"normalize" toml:"normalize"`
	Stopwords []string `yaml:"stopwords,omitempty" toml:"stopwords"`
	OneToOne  bool     `yaml:"one_to_one" toml:"one_to_one"`
}

// FetchConfig tunes document retrieval.
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent,omitempty" toml:"user_agent"`
	MaxBytes       int64  `yaml:"max_bytes" toml:"max_bytes"`
}

// SearchConfig holds SerpAPI settings.
type SearchConfig struct {
	APIKey   string `yaml:"api_key,omitempty" toml:"api_key"`
	Endpoint string `yaml:"endpoint,omitempty" toml:"endpoint"`
}

// LogConfig sets the zap level and encoding.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	e := &c.Embedding
	if e.Backend == "" {
		e.Backend = embeddings.BackendHTTP
	}
	if e.Backend == embeddings.BackendHTTP {
		if e.BaseURL == "" {
			e.BaseURL = DefaultEmbeddingURL
		}
		if e.Model == "" {
			e.Model = DefaultEmbeddingModel
		}
	}
	if e.BatchSize <= 0 {
		e.BatchSize = embeddings.DefaultBatchSize
	}
	if e.TimeoutSeconds <= 0 {
		e.TimeoutSeconds = 30
	}
	if e.CacheTTLMinutes == 0 {
		e.CacheTTLMinutes = DefaultCacheTTL
	}
	if e.CacheCapacity == 0 {
		e.CacheCapacity = DefaultCacheCapacity
	}
	if e.ONNX.MaxSeqLen <= 0 {
		e.ONNX.MaxSeqLen = embeddings.DefaultMaxSeqLen
	}

	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = int(fetch.DefaultTimeout / time.Second)
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = fetch.DefaultMaxBytes
	}
	if c.Log.Level == "" {
		c.Log.Level = logging.Info
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	switch c.Embedding.Backend {
	case embeddings.BackendHTTP:
		if c.Embedding.BaseURL == "" {
			errs = append(errs, errors.New("embedding.base_url is required for the http backend"))
		}
	case embeddings.BackendONNX:
		if c.Embedding.ONNX.ModelPath == "" || c.Embedding.ONNX.TokenizerPath == "" {
			errs = append(errs, errors.New("embedding.onnx.model_path and tokenizer_path are required for the onnx backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown embedding.backend %q", c.Embedding.Backend))
	}
	if c.Compare.Threshold != nil {
		if err := align.ValidateThreshold(*c.Compare.Threshold); err != nil {
			errs = append(errs, fmt.Errorf("compare.threshold: %w", err))
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// HasSearch returns true if URL discovery is configured.
func (c *Config) HasSearch() bool {
	return c.Search.APIKey != ""
}

// EmbeddingOptions converts the embedding section into provider options.
func (c *Config) EmbeddingOptions() (embeddings.Options, error) {
	e := c.Embedding
	modelPath, err := ExpandPath(e.ONNX.ModelPath)
	if err != nil {
		return embeddings.Options{}, err
	}
	tokenizerPath, err := ExpandPath(e.ONNX.TokenizerPath)
	if err != nil {
		return embeddings.Options{}, err
	}
	libraryPath, err := ExpandPath(e.ONNX.LibraryPath)
	if err != nil {
		return embeddings.Options{}, err
	}

	var capacity uint64
	if e.CacheCapacity > 0 {
		capacity = uint64(e.CacheCapacity)
	}
	var ttl time.Duration
	if e.CacheTTLMinutes > 0 {
		ttl = time.Duration(e.CacheTTLMinutes) * time.Minute
	}

	return embeddings.Options{
		Backend:       e.Backend,
		BaseURL:       e.BaseURL,
		APIKey:        e.APIKey,
		Model:         e.Model,
		Dimension:     e.Dimension,
		BatchSize:     e.BatchSize,
		Timeout:       time.Duration(e.TimeoutSeconds) * time.Second,
		CacheTTL:      ttl,
		CacheCapacity: capacity,
		ONNX: embeddings.ONNXOptions{
			SharedLibrary: libraryPath,
			ModelPath:     modelPath,
			TokenizerPath: tokenizerPath,
			ModelID:       e.Model,
			Dimension:     e.Dimension,
			MaxSeqLen:     e.ONNX.MaxSeqLen,
			TokenTypeIDs:  !e.ONNX.SkipTokenTypeIDs,
		},
	}, nil
}

// FetchOptions converts the fetch section.
func (c *Config) FetchOptions() fetch.Options {
	return fetch.Options{
		Timeout:   time.Duration(c.Fetch.TimeoutSeconds) * time.Second,
		UserAgent: c.Fetch.UserAgent,
		MaxBytes:  c.Fetch.MaxBytes,
	}
}

// CompareOptions converts the compare section into per-comparison defaults.
func (c *Config) CompareOptions() compare.Options {
	mode := align.ModeGreedy
	if c.Compare.OneToOne {
		mode = align.ModeOneToOne
	}
	opts := compare.Options{
		Mode:      mode,
		Normalize: c.Compare.Normalize,
		Stopwords: append([]string(nil), c.Compare.Stopwords...),
	}
	if c.Compare.Threshold != nil {
		t := *c.Compare.Threshold
		opts.Threshold = &t
	}
	return opts
}

// GetConfigDir returns the sectiondiff config directory, honoring XDG_CONFIG_HOME.
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "sectiondiff"), nil
}

// GetConfigPath returns the YAML config file path.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config.yaml, or config.toml when no YAML file exists, then applies
// .env and environment overrides and defaults. Missing files are not an error.
func Load() (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	var cfg Config
	yamlPath := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(yamlPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
		}
	case os.IsNotExist(err):
		tomlPath := filepath.Join(dir, "config.toml")
		if _, err := toml.DecodeFile(tomlPath, &cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("parse %s: %w", tomlPath, err)
		}
	default:
		return nil, err
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides file settings with environment variables when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvEmbeddingURL); v != "" {
		c.Embedding.BaseURL = v
	}
	if v := os.Getenv(EnvEmbeddingAPIKey); v != "" {
		c.Embedding.APIKey = v
	}
	if v := os.Getenv(EnvEmbeddingModel); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv(EnvSearchAPIKey); v != "" {
		c.Search.APIKey = v
	}
}

// Save writes config to disk as YAML.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
