// ABOUTME: Embedding generator backed by an OpenAI-compatible inference API
// ABOUTME: Consults and populates the LRU cache, with retry and batching
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/harper/topicvault/internal/cache"
	"github.com/harper/topicvault/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrNotInitialized means the inference backend has not completed setup
	ErrNotInitialized = errors.New("embedding backend not initialized")
	// ErrModelNotFound means the configured model artifacts are missing
	ErrModelNotFound = errors.New("embedding model not found")
	// ErrInferenceFailed is a backend-internal error, surfaced and not retried
	// beyond the configured attempt budget
	ErrInferenceFailed = errors.New("embedding inference failed")
)

// Backend is the slice of the OpenAI client the generator needs. Satisfied by
// *openai.Client; tests substitute a fake.
type Backend interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Config holds generator configuration
type Config struct {
	APIKey            string
	BaseURL           string // optional OpenAI-compatible endpoint, e.g. a local inference server
	Model             string
	Dimension         int
	MaxSequenceLength int // tokens; inputs are truncated to fit
	MaxRetries        int
	RetryDelay        time.Duration
	Timeout           time.Duration
}

// Generator produces one fixed-length vector per text input, single or
// batched, checking the shared embedding cache first.
type Generator struct {
	backend    Backend
	cache      *cache.EmbeddingCache
	model      string
	dim        int
	maxChars   int
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// New creates a Generator talking to the OpenAI API (or a compatible server
// when BaseURL is set).
func New(cfg Config, c *cache.EmbeddingCache) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrNotInitialized)
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return NewWithBackend(openai.NewClientWithConfig(clientCfg), cfg, c)
}

// NewWithBackend creates a Generator over an explicit backend
func NewWithBackend(backend Backend, cfg Config, c *cache.EmbeddingCache) (*Generator, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrNotInitialized)
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", cfg.Dimension)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	// Convert the token budget back to a conservative character budget using
	// the same ratio the token estimator assumes
	maxChars := 0
	if cfg.MaxSequenceLength > 0 {
		maxChars = int(float64(cfg.MaxSequenceLength) * 3.5 / 1.2)
	}

	return &Generator{
		backend:    backend,
		cache:      c,
		model:      cfg.Model,
		dim:        cfg.Dimension,
		maxChars:   maxChars,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
	}, nil
}

// Dimension returns the fixed length of generated vectors, or 0 when no
// backend is configured
func (g *Generator) Dimension() int {
	if g == nil {
		return 0
	}
	return g.dim
}

// Embed returns the vector for text. Cache hits skip the backend entirely;
// misses invoke it and populate the cache even if the caller discards the
// result.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	if g == nil || g.backend == nil {
		return nil, ErrNotInitialized
	}

	key := cache.Key(text)
	if g.cache != nil {
		if v := g.cache.Get(key); v != nil {
			return v, nil
		}
	}

	vectors, err := g.infer(ctx, []string{g.truncate(text)})
	if err != nil {
		return nil, err
	}

	if g.cache != nil {
		g.cache.Put(key, vectors[0])
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input text, output order matching input
// order exactly. Each element is independently cacheable; only the misses hit
// the backend, in a single call.
func (g *Generator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if g == nil || g.backend == nil {
		return nil, ErrNotInitialized
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		keys[i] = cache.Key(text)
		if g.cache != nil {
			if v := g.cache.Get(keys[i]); v != nil {
				out[i] = v
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, g.truncate(text))
	}

	if len(missIdx) == 0 {
		return out, nil
	}

	vectors, err := g.infer(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for pos, i := range missIdx {
		out[i] = vectors[pos]
		if g.cache != nil {
			g.cache.Put(keys[i], vectors[pos])
		}
	}
	return out, nil
}

// infer calls the backend with retry and backoff. Model-not-found is fatal
// and returned immediately; other failures retry up to the attempt budget.
func (g *Generator) infer(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(g.retryDelay, attempt))
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInferenceFailed, err)
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		resp, err := g.backend.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input:      texts,
			Model:      openai.EmbeddingModel(g.model),
			Dimensions: g.dim,
		})
		cancel()

		if err != nil {
			if isModelNotFound(err) {
				return nil, fmt.Errorf("%w: %q: %v", ErrModelNotFound, g.model, err)
			}
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Data) != len(texts) {
			lastErr = fmt.Errorf("attempt %d: got %d embeddings for %d inputs", attempt+1, len(resp.Data), len(texts))
			continue
		}

		vectors := make([][]float32, len(texts))
		badDim := false
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(vectors) {
				badDim = true
				lastErr = fmt.Errorf("attempt %d: embedding index %d out of range", attempt+1, d.Index)
				break
			}
			if len(d.Embedding) != g.dim {
				badDim = true
				lastErr = fmt.Errorf("attempt %d: got %d-dimensional vector, want %d", attempt+1, len(d.Embedding), g.dim)
				break
			}
			vectors[d.Index] = d.Embedding
		}
		if badDim {
			continue
		}
		return vectors, nil
	}

	return nil, fmt.Errorf("%w: after %d attempts: %v", ErrInferenceFailed, g.maxRetries+1, lastErr)
}

// truncate caps the input at the generator's character budget, backing up to
// a rune boundary so the backend never sees a torn UTF-8 sequence
func (g *Generator) truncate(text string) string {
	if g.maxChars <= 0 || len(text) <= g.maxChars {
		return text
	}
	cut := g.maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// isModelNotFound detects a missing-model response from the backend
func isModelNotFound(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusNotFound
	}
	return false
}
