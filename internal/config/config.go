// ABOUTME: Centralized configuration for the topic embedding service
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/harper/topicvault/internal/vector"
)

// Config holds all configuration for the embedding subsystem
type Config struct {
	// Charm settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// Inference settings
	OpenAIKey         string
	ModelPath         string // base URL of an OpenAI-compatible inference server; empty means api.openai.com
	EmbeddingModel    string
	VectorDimension   int
	MaxSequenceLength int
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration

	// Chunking thresholds
	TokensLow  int
	TokensHigh int

	// Cache and scheduling
	CacheCapacity int
	QuietPeriod   time.Duration

	// Search settings
	SearchThreshold float64
	IndexProvider   string // "qdrant" or "none"
	IndexEndpoint   string

	// Embedding store backend: "sqlite" (default) or "charm" for cloud sync
	StorageBackend string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		CharmHost:         getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:       getEnv("CHARM_DB", "topicvault"),
		AutoSync:          getEnvBool("CHARM_AUTO_SYNC", true),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		ModelPath:         os.Getenv("TOPICVAULT_MODEL_PATH"),
		EmbeddingModel:    getEnv("TOPICVAULT_EMBEDDING_MODEL", "text-embedding-3-small"),
		VectorDimension:   getEnvInt("VECTOR_DIMENSION", vector.DefaultDimension),
		MaxSequenceLength: getEnvInt("TOPICVAULT_MAX_SEQUENCE", 8192),
		Timeout:           getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:        getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:        getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		TokensLow:         getEnvInt("TOPICVAULT_TOKENS_LOW", 512),
		TokensHigh:        getEnvInt("TOPICVAULT_TOKENS_HIGH", 2048),
		CacheCapacity:     getEnvInt("TOPICVAULT_CACHE_CAPACITY", 1024),
		QuietPeriod:       getEnvDuration("TOPICVAULT_QUIET_PERIOD", 2*time.Second),
		SearchThreshold:   getEnvFloat("TOPICVAULT_SEARCH_THRESHOLD", 0.5),
		IndexProvider:     getEnv("TOPICVAULT_INDEX_PROVIDER", "none"),
		IndexEndpoint:     getEnv("TOPICVAULT_INDEX_ENDPOINT", "http://localhost:6333"),
		StorageBackend:    getEnv("TOPICVAULT_STORAGE", "sqlite"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.VectorDimension <= 0 {
		return fmt.Errorf("VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.MaxSequenceLength <= 0 {
		return fmt.Errorf("TOPICVAULT_MAX_SEQUENCE must be positive, got %d", c.MaxSequenceLength)
	}
	if c.TokensLow <= 0 || c.TokensHigh < c.TokensLow {
		return fmt.Errorf("token thresholds must satisfy 0 < low <= high, got %d/%d", c.TokensLow, c.TokensHigh)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("TOPICVAULT_CACHE_CAPACITY must be positive, got %d", c.CacheCapacity)
	}
	if c.SearchThreshold < 0 || c.SearchThreshold > 1 {
		return fmt.Errorf("TOPICVAULT_SEARCH_THRESHOLD must be 0-1, got %f", c.SearchThreshold)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	switch c.IndexProvider {
	case "", "none", "qdrant":
	default:
		return fmt.Errorf("unknown TOPICVAULT_INDEX_PROVIDER %q", c.IndexProvider)
	}
	switch c.StorageBackend {
	case "", "sqlite", "charm":
	default:
		return fmt.Errorf("unknown TOPICVAULT_STORAGE %q", c.StorageBackend)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
