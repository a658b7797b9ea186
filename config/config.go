package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for ragqa.
type Config struct {
	Ingest    IngestConfig    `yaml:"ingest" envPrefix:"RAGQA_INGEST_"`
	Index     IndexConfig     `yaml:"index" envPrefix:"RAGQA_INDEX_"`
	Embedding EmbeddingConfig `yaml:"embedding" envPrefix:"RAGQA_EMBEDDING_"`
	LLM       LLMConfig       `yaml:"llm" envPrefix:"RAGQA_LLM_"`
	Retrieve  RetrieveConfig  `yaml:"retrieve" envPrefix:"RAGQA_RETRIEVE_"`
	Chat      ChatConfig      `yaml:"chat" envPrefix:"RAGQA_CHAT_"`
	Logging   LoggingConfig   `yaml:"logging" envPrefix:"RAGQA_LOG_"`
}

// IngestConfig controls which files are accepted and how they are chunked.
type IngestConfig struct {
	Includes     []string `yaml:"includes" env:"INCLUDES" envSeparator:","`
	Excludes     []string `yaml:"excludes" env:"EXCLUDES" envSeparator:","`
	MaxFileMB    int      `yaml:"max_file_mb" env:"MAX_FILE_MB"`
	ChunkSize    int      `yaml:"chunk_size" env:"CHUNK_SIZE"`
	ChunkOverlap int      `yaml:"chunk_overlap" env:"CHUNK_OVERLAP"`
}

// IndexConfig selects the vector collection backend.
type IndexConfig struct {
	Backend    string `yaml:"backend" env:"BACKEND"` // "bolt", "chromem", "memory"
	Dir        string `yaml:"dir" env:"DIR"`
	Collection string `yaml:"collection" env:"COLLECTION"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider" env:"PROVIDER"` // "hash", "openai", "ollama"
	Model       string `yaml:"model" env:"MODEL"`
	APIKeyEnv   string `yaml:"api_key_env" env:"API_KEY_ENV"`
	BaseURL     string `yaml:"base_url" env:"BASE_URL"`
	Dimension   int    `yaml:"dimension" env:"DIMENSION"`
	BatchSize   int    `yaml:"batch_size" env:"BATCH_SIZE"`
	TimeoutSecs int    `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
}

// LLMConfig configures the hosted answer model.
type LLMConfig struct {
	Provider    string  `yaml:"provider" env:"PROVIDER"` // "googleai", "openai", "ollama"
	Model       string  `yaml:"model" env:"MODEL"`
	APIKeyEnv   string  `yaml:"api_key_env" env:"API_KEY_ENV"`
	BaseURL     string  `yaml:"base_url" env:"BASE_URL"`
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
	MaxTokens   int     `yaml:"max_tokens" env:"MAX_TOKENS"`
	TimeoutSecs int     `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK         int `yaml:"top_k" env:"TOP_K"`
	CacheSize    int `yaml:"cache_size" env:"CACHE_SIZE"`
	CacheTTLSecs int `yaml:"cache_ttl_secs" env:"CACHE_TTL_SECS"`
}

// ChatConfig holds chat display options.
type ChatConfig struct {
	HistoryDisplay int  `yaml:"history_display" env:"HISTORY_DISPLAY"`
	ShowSources    bool `yaml:"show_sources" env:"SHOW_SOURCES"`
	ShowContext    bool `yaml:"show_context" env:"SHOW_CONTEXT"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			Includes:     []string{"**/*.pdf", "**/*.docx", "**/*.txt"},
			Excludes:     []string{"**/.git/**", "**/.ragqa/**", "**/node_modules/**"},
			MaxFileMB:    10,
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Index: IndexConfig{
			Backend:    "bolt",
			Dir:        "vectorstore",
			Collection: "rag_collection",
		},
		Embedding: EmbeddingConfig{
			Provider:    "hash",
			Model:       "hash-384",
			APIKeyEnv:   "OPENAI_API_KEY",
			Dimension:   384,
			BatchSize:   100,
			TimeoutSecs: 120,
		},
		LLM: LLMConfig{
			Provider:    "googleai",
			Model:       "gemini-1.5-flash",
			APIKeyEnv:   "GOOGLE_API_KEY",
			TimeoutSecs: 120,
		},
		Retrieve: RetrieveConfig{
			TopK:         4,
			CacheSize:    100,
			CacheTTLSecs: 300,
		},
		Chat: ChatConfig{
			HistoryDisplay: 5,
			ShowSources:    true,
			ShowContext:    false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for ragqa.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ragqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".ragqa", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// ApplyEnv overrides fields from RAGQA_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("ingest.chunk_size must be positive, got %d", c.Ingest.ChunkSize)
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap must be in [0, %d), got %d", c.Ingest.ChunkSize, c.Ingest.ChunkOverlap)
	}
	if c.Ingest.MaxFileMB <= 0 {
		return fmt.Errorf("ingest.max_file_mb must be positive, got %d", c.Ingest.MaxFileMB)
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("retrieve.top_k must be positive, got %d", c.Retrieve.TopK)
	}
	switch c.Index.Backend {
	case "bolt", "chromem", "memory":
	default:
		return fmt.Errorf("unknown index backend: %s", c.Index.Backend)
	}
	return nil
}

// MaxFileBytes returns the per-file upload limit in bytes.
func (c *Config) MaxFileBytes() int64 {
	return int64(c.Ingest.MaxFileMB) * 1024 * 1024
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the bolt collection file.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, "index.db")
}

// ChromemPath returns the directory of the chromem collection.
func ChromemPath(dir string) string {
	return filepath.Join(dir, "chromem")
}
