// ABOUTME: Shared component wiring for CLI commands
// ABOUTME: Builds the embedding pipeline from configuration
package commands

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/harper/topicvault/internal/cache"
	"github.com/harper/topicvault/internal/charm"
	"github.com/harper/topicvault/internal/config"
	"github.com/harper/topicvault/internal/core"
	"github.com/harper/topicvault/internal/index"
	"github.com/harper/topicvault/internal/llm"
	"github.com/harper/topicvault/internal/search"
	"github.com/harper/topicvault/internal/storage"
	"github.com/harper/topicvault/internal/storage/sqlite"
	"github.com/harper/topicvault/internal/vector"
)

// service bundles the wired embedding pipeline for CLI commands
type service struct {
	cfg        *config.Config
	db         *sqlite.DB
	topics     *sqlite.TopicStore
	store      storage.EmbeddingStore
	embedCache *cache.EmbeddingCache
	generator  *llm.Generator
	embedder   *core.TopicEmbedder
	searcher   *search.Searcher
	index      storage.ApproxIndex
	charmKV    *charm.Client
}

// newService loads configuration and wires every component. The generator is
// nil when no API key is configured; commands that embed must check.
func newService() (*service, error) {
	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := sqlite.Open(sqlite.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	codec, err := vector.NewCodec(cfg.VectorDimension)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	embedCache := cache.New(cfg.CacheCapacity)

	var generator *llm.Generator
	if cfg.OpenAIKey != "" {
		generator, err = llm.New(llm.Config{
			APIKey:            cfg.OpenAIKey,
			BaseURL:           cfg.ModelPath,
			Model:             cfg.EmbeddingModel,
			Dimension:         cfg.VectorDimension,
			MaxSequenceLength: cfg.MaxSequenceLength,
			MaxRetries:        cfg.MaxRetries,
			RetryDelay:        cfg.RetryDelay,
			Timeout:           cfg.Timeout,
		}, embedCache)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initializing embedding backend: %w", err)
		}
	}

	idx, err := index.New(cfg.IndexProvider, cfg.IndexEndpoint,
		index.WithDimension(cfg.VectorDimension))
	if err != nil {
		// Exact search still works without the index
		if !quiet {
			log.Printf("Warning: approximate index unavailable: %v", err)
		}
		idx = nil
	}

	topics := sqlite.NewTopicStore(db)
	planner := core.NewPlanner(cfg.TokensLow, cfg.TokensHigh)

	// Topics always live in SQLite; the embedding store is switchable so
	// vectors can sync across machines through Charm
	var store storage.EmbeddingStore
	var charmKV *charm.Client
	if cfg.StorageBackend == "charm" {
		charmKV, err = charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: cfg.AutoSync,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("connecting to charm: %w", err)
		}
		store = storage.NewCharmEmbeddingStore(charmKV)
	} else {
		store = sqlite.NewEmbeddingStore(db)
	}

	return &service{
		cfg:        cfg,
		db:         db,
		topics:     topics,
		store:      store,
		embedCache: embedCache,
		generator:  generator,
		embedder:   core.NewTopicEmbedder(topics, planner, generator, codec, store, idx),
		searcher:   search.New(codec, store, idx),
		index:      idx,
		charmKV:    charmKV,
	}, nil
}

// requireGenerator fails commands that need the embedding backend
func (s *service) requireGenerator() error {
	if s.generator == nil {
		return fmt.Errorf("OPENAI_API_KEY not set - embedding requires an inference backend")
	}
	return nil
}

func (s *service) Close() error {
	if s.charmKV != nil {
		_ = s.charmKV.Close()
	}
	return s.db.Close()
}
