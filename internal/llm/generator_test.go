// ABOUTME: Tests for the embedding generator
// ABOUTME: Uses a fake backend to verify caching, batching, and error mapping
package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/harper/topicvault/internal/cache"
	openai "github.com/sashabaranov/go-openai"
)

const testDim = 4

// fakeBackend returns deterministic vectors and records call counts
type fakeBackend struct {
	calls      int
	lastInputs []string
	err        error
}

func (f *fakeBackend) CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.EmbeddingResponse{}, f.err
	}

	req := conv.Convert()
	texts, ok := req.Input.([]string)
	if !ok {
		return openai.EmbeddingResponse{}, errors.New("unexpected input type")
	}
	f.lastInputs = texts

	resp := openai.EmbeddingResponse{}
	for i, text := range texts {
		vec := make([]float32, testDim)
		for j := range vec {
			vec[j] = float32(len(text) + i + j)
		}
		resp.Data = append(resp.Data, openai.Embedding{Index: i, Embedding: vec})
	}
	return resp, nil
}

func testGenerator(t *testing.T, backend Backend, c *cache.EmbeddingCache) *Generator {
	t.Helper()
	gen, err := NewWithBackend(backend, Config{
		Model:      "test-model",
		Dimension:  testDim,
		MaxRetries: 0,
		RetryDelay: time.Millisecond,
		Timeout:    time.Second,
	}, c)
	if err != nil {
		t.Fatalf("NewWithBackend() error = %v", err)
	}
	return gen
}

func TestEmbed_PopulatesAndHitsCache(t *testing.T) {
	backend := &fakeBackend{}
	c := cache.New(10)
	gen := testGenerator(t, backend, c)

	v1, err := gen.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(v1) != testDim {
		t.Fatalf("vector length = %d, want %d", len(v1), testDim)
	}
	if backend.calls != 1 {
		t.Fatalf("backend calls = %d, want 1", backend.calls)
	}

	// Second call must be served from cache without touching the backend
	v2, err := gen.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1 (cache hit must skip inference)", backend.calls)
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("cached vector differs at %d: %v vs %v", i, v1[i], v2[i])
		}
	}

	// Normalized variants of the same text share a cache entry
	if _, err := gen.Embed(context.Background(), "  Hello   World  "); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1 (normalized key should hit)", backend.calls)
	}
}

func TestEmbedBatch_OrderAndPartialCache(t *testing.T) {
	backend := &fakeBackend{}
	c := cache.New(10)
	gen := testGenerator(t, backend, c)

	// Warm the cache with one of the three texts
	warm, err := gen.Embed(context.Background(), "bb")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	texts := []string{"a", "bb", "ccc"}
	out, err := gen.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	if backend.calls != 2 {
		t.Errorf("backend calls = %d, want 2 (one warmup + one batch)", backend.calls)
	}
	if len(backend.lastInputs) != 2 {
		t.Errorf("batch inputs = %v, want the 2 uncached texts", backend.lastInputs)
	}

	// Cached element keeps its original vector and position
	for i := range warm {
		if out[1][i] != warm[i] {
			t.Fatalf("out[1] differs from cached vector at %d", i)
		}
	}
	for i, v := range out {
		if len(v) != testDim {
			t.Errorf("out[%d] length = %d, want %d", i, len(v), testDim)
		}
	}

	// Re-running the same batch is now fully cached
	if _, err := gen.EmbedBatch(context.Background(), texts); err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if backend.calls != 2 {
		t.Errorf("backend calls = %d, want 2 (full cache hit)", backend.calls)
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	gen := testGenerator(t, &fakeBackend{}, nil)
	out, err := gen.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch(nil) error = %v", err)
	}
	if out != nil {
		t.Errorf("EmbedBatch(nil) = %v, want nil", out)
	}
}

func TestEmbed_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		want    error
	}{
		{
			"model not found",
			&fakeBackend{err: &openai.APIError{HTTPStatusCode: http.StatusNotFound}},
			ErrModelNotFound,
		},
		{
			"backend failure",
			&fakeBackend{err: errors.New("boom")},
			ErrInferenceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := testGenerator(t, tt.backend, nil)
			_, err := gen.Embed(context.Background(), "text")
			if !errors.Is(err, tt.want) {
				t.Errorf("Embed() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEmbed_ModelNotFoundNotRetried(t *testing.T) {
	backend := &fakeBackend{err: &openai.APIError{HTTPStatusCode: http.StatusNotFound}}
	gen, err := NewWithBackend(backend, Config{
		Model:      "missing",
		Dimension:  testDim,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		Timeout:    time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewWithBackend() error = %v", err)
	}

	if _, err := gen.Embed(context.Background(), "text"); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("Embed() error = %v, want ErrModelNotFound", err)
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1 (missing model must not retry)", backend.calls)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{Model: "m", Dimension: testDim}, nil)
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("New() error = %v, want ErrNotInitialized", err)
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	gen, err := NewWithBackend(&fakeBackend{}, Config{
		Model:             "m",
		Dimension:         testDim,
		MaxSequenceLength: 2, // 2 tokens -> 5 char budget
	}, nil)
	if err != nil {
		t.Fatalf("NewWithBackend() error = %v", err)
	}

	got := gen.truncate("héllo wörld")
	if len(got) > 5 {
		t.Errorf("truncate() kept %d bytes, want <= 5", len(got))
	}
	for i, r := range got {
		if r == 0xFFFD {
			t.Errorf("truncate() produced invalid rune at %d", i)
		}
	}
}

func TestNilGenerator_SafeAccessors(t *testing.T) {
	var gen *Generator

	if d := gen.Dimension(); d != 0 {
		t.Errorf("Dimension() = %d, want 0 for nil generator", d)
	}
	if _, err := gen.Embed(context.Background(), "text"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Embed() error = %v, want ErrNotInitialized", err)
	}
}
