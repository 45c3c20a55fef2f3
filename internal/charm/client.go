// ABOUTME: Charm KV client wrapper for cloud-synced embedding storage
// ABOUTME: Thin mutex-guarded layer over charm kv with JSON helpers
package charm

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/charm/kv"
)

// EmbeddingPrefix namespaces embedding records in the KV store
const EmbeddingPrefix = "embedding:"

// EmbeddingKey builds the KV key for one (node, role) embedding record
func EmbeddingKey(nodeID, role string) string {
	return EmbeddingPrefix + nodeID + ":" + role
}

// Config holds charm client configuration
type Config struct {
	Host     string
	DBName   string
	AutoSync bool
}

// DefaultConfig returns default configuration for the charm client
func DefaultConfig() *Config {
	host := os.Getenv("CHARM_HOST")
	if host == "" {
		host = "cloud.charm.sh"
	}
	return &Config{
		Host:     host,
		DBName:   "topicvault",
		AutoSync: true,
	}
}

// Client wraps charm KV for embedding storage. Callers own the instance and
// pass it explicitly; there is no package-level singleton.
type Client struct {
	kv     *kv.KV
	config *Config
	mu     sync.Mutex
}

// NewClient creates a new charm client with the given config
func NewClient(cfg *Config) (*Client, error) {
	// charm kv reads the host from the environment
	os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{kv: db, config: cfg}

	// Pull remote data on startup
	if cfg.AutoSync {
		_ = db.Sync()
	}

	return c, nil
}

// Close closes the KV database
func (c *Client) Close() error {
	if c.kv != nil {
		err := c.kv.Close()
		c.kv = nil
		return err
	}
	return nil
}

// syncIfEnabled syncs to cloud after writes
func (c *Client) syncIfEnabled() {
	if c.config.AutoSync {
		_ = c.kv.Sync()
	}
}

// Set stores a value with the given key
func (c *Client) Set(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Set([]byte(key), value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	c.syncIfEnabled()
	return nil
}

// Get retrieves a value by key
func (c *Client) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.kv.Get([]byte(key))
}

// Delete removes a key
func (c *Client) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Delete([]byte(key)); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	c.syncIfEnabled()
	return nil
}

// SetJSON marshals and stores a value as JSON
func (c *Client) SetJSON(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(key, data)
}

// GetJSON retrieves and unmarshals a JSON value
func (c *Client) GetJSON(key string, dest interface{}) error {
	data, err := c.Get(key)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("key not found: %s", key)
	}
	return json.Unmarshal(data, dest)
}

// ListKeys returns all keys with the given prefix
func (c *Client) ListKeys(prefix string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	var result []string
	for _, key := range keys {
		keyStr := string(key)
		if strings.HasPrefix(keyStr, prefix) {
			result = append(result, keyStr)
		}
	}
	return result, nil
}

// Sync manually triggers a sync with the cloud
func (c *Client) Sync() error {
	return c.kv.Sync()
}
