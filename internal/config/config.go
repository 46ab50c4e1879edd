// Package config loads process configuration from the environment (with an
// optional .env overlay), following the teacher's env-first loading style.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// VectorIndexConfig selects and configures the named-vector index backend.
type VectorIndexConfig struct {
	Backend    string // "qdrant" | "memory"
	DSN        string
	Collection string
}

// LLMConfig selects and configures the LLM collaborator backend.
type LLMConfig struct {
	Provider       string // "anthropic" | "openai"
	AnthropicKey   string
	AnthropicModel string
	AnthropicURL   string
	OpenAIKey      string
	OpenAIModel    string
	OpenAIURL      string
}

// CacheConfig configures the optional Redis-backed LLM response cache.
type CacheConfig struct {
	Enabled bool
	Addr    string
	TTLSeconds int
}

// Config is the full process configuration.
type Config struct {
	CorpusSnapshotPath string
	GazetteerPath      string // empty uses the embedded gazetteer

	VectorIndex VectorIndexConfig
	LLM         LLMConfig
	Cache       CacheConfig

	LogLevel string
	LogPath  string

	// OrchestratorTimeoutSeconds bounds the end-to-end per-query deadline.
	OrchestratorTimeoutSeconds int
}

// Load reads configuration from the environment, applying a .env overlay if
// present, then filling in defaults.
func Load() (Config, error) {
	_ = godotenv.Overload()

	cfg := Config{}
	cfg.CorpusSnapshotPath = strings.TrimSpace(os.Getenv("CORPUS_SNAPSHOT_PATH"))
	cfg.GazetteerPath = strings.TrimSpace(os.Getenv("GAZETTEER_PATH"))

	cfg.VectorIndex.Backend = strings.TrimSpace(os.Getenv("VECTOR_BACKEND"))
	cfg.VectorIndex.DSN = strings.TrimSpace(os.Getenv("VECTOR_DSN"))
	cfg.VectorIndex.Collection = strings.TrimSpace(os.Getenv("VECTOR_COLLECTION"))

	cfg.LLM.Provider = strings.TrimSpace(os.Getenv("LLM_PROVIDER"))
	cfg.LLM.AnthropicKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	cfg.LLM.AnthropicModel = strings.TrimSpace(os.Getenv("ANTHROPIC_MODEL"))
	cfg.LLM.AnthropicURL = strings.TrimSpace(os.Getenv("ANTHROPIC_BASE_URL"))
	cfg.LLM.OpenAIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.LLM.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	cfg.LLM.OpenAIURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))

	if v := strings.TrimSpace(os.Getenv("LLM_CACHE_ENABLED")); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	cfg.Cache.Addr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if v := strings.TrimSpace(os.Getenv("LLM_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTLSeconds = n
		}
	}

	cfg.LogLevel = strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	cfg.LogPath = strings.TrimSpace(os.Getenv("LOG_PATH"))

	if v := strings.TrimSpace(os.Getenv("ORCHESTRATOR_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.OrchestratorTimeoutSeconds = n
		}
	}

	applyDefaults(&cfg)

	if err := validateProvider(cfg.LLM.Provider); err != nil {
		return Config{}, err
	}
	if cfg.CorpusSnapshotPath == "" {
		return Config{}, errors.New("CORPUS_SNAPSHOT_PATH is required (set in .env or environment)")
	}
	if cfg.VectorIndex.Backend == "qdrant" && cfg.VectorIndex.DSN == "" {
		return Config{}, errors.New("VECTOR_DSN is required when VECTOR_BACKEND=qdrant")
	}
	if cfg.LLM.Provider == "anthropic" && cfg.LLM.AnthropicKey == "" {
		return Config{}, errors.New("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
	}
	if cfg.LLM.Provider == "openai" && cfg.LLM.OpenAIKey == "" {
		return Config{}, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.VectorIndex.Backend == "" {
		cfg.VectorIndex.Backend = "memory"
	}
	if cfg.VectorIndex.Collection == "" {
		cfg.VectorIndex.Collection = "facilities"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "anthropic"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 3600
	}
	if cfg.OrchestratorTimeoutSeconds <= 0 {
		cfg.OrchestratorTimeoutSeconds = 10
	}
}

// ValidProviders lists the supported LLM backend names, used for error
// messages and input validation.
var ValidProviders = []string{"anthropic", "openai"}

func validateProvider(p string) error {
	for _, v := range ValidProviders {
		if p == v {
			return nil
		}
	}
	return fmt.Errorf("llm provider must be one of %v (got %q)", ValidProviders, p)
}
