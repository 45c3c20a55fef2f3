// ABOUTME: Two-tier similarity search over stored embeddings
// ABOUTME: Approximate index lookups with an exact full-scan fallback
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/harper/topicvault/internal/models"
	"github.com/harper/topicvault/internal/storage"
	"github.com/harper/topicvault/internal/vector"
)

// DefaultLimit caps result counts when callers pass a non-positive limit
const DefaultLimit = 10

// ErrIndexUnavailable means no approximate index is configured or reachable
var ErrIndexUnavailable = errors.New("approximate index unavailable")

// Embedder turns query text into a vector; satisfied by *llm.Generator
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher issues approximate and exact nearest-neighbor queries. Both paths
// are read-only; the threshold is an inclusive upper bound on cosine distance.
type Searcher struct {
	codec *vector.Codec
	store storage.EmbeddingStore
	index storage.ApproxIndex // nil when no index is configured
}

// New creates a Searcher. index may be nil; ApproxSearch then reports
// ErrIndexUnavailable and callers fall back to ExactSearch.
func New(codec *vector.Codec, store storage.EmbeddingStore, index storage.ApproxIndex) *Searcher {
	return &Searcher{codec: codec, store: store, index: index}
}

// ApproxSearch queries the storage layer's native index for up to limit
// results with distance at most threshold, ordered ascending by distance.
func (s *Searcher) ApproxSearch(ctx context.Context, query []float32, threshold float64, limit int) ([]models.VectorSearchResult, error) {
	if err := s.checkDimension(query); err != nil {
		return nil, err
	}
	if s.index == nil {
		return nil, ErrIndexUnavailable
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	hits, err := s.index.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	var results []models.VectorSearchResult
	for _, hit := range hits {
		if hit.Distance > threshold {
			continue
		}
		results = append(results, models.VectorSearchResult{
			NodeID:   hit.NodeID,
			Role:     hit.Role,
			Distance: hit.Distance,
		})
	}

	sortByDistance(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ExactSearch computes cosine distance against every stored vector matching
// the role filter (empty role means all). Used as a correctness oracle and as
// the fallback when the index is stale or unavailable. A malformed blob skips
// that single record rather than aborting the whole search.
func (s *Searcher) ExactSearch(ctx context.Context, query []float32, threshold float64, limit int, roleFilter models.EmbeddingRole) ([]models.VectorSearchResult, error) {
	if err := s.checkDimension(query); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	stored, err := s.store.ScanAllEmbeddings(ctx, roleFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to scan embeddings: %w", err)
	}

	var results []models.VectorSearchResult
	for _, emb := range stored {
		vec, err := s.codec.Decode(emb.Blob)
		if err != nil {
			// Corrupt record; skip it and keep searching
			continue
		}

		distance := vector.CosineDistance(query, vec)
		if distance > threshold {
			continue
		}

		results = append(results, models.VectorSearchResult{
			NodeID:      emb.NodeID,
			Role:        emb.Metadata.Type,
			ParentTopic: emb.Metadata.ParentTopic,
			Distance:    distance,
		})
	}

	sortByDistance(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Search tries the approximate index first and falls back to an exact scan
// when the index is unavailable or fails
func (s *Searcher) Search(ctx context.Context, query []float32, threshold float64, limit int) ([]models.VectorSearchResult, error) {
	results, err := s.ApproxSearch(ctx, query, threshold, limit)
	if err == nil {
		return results, nil
	}
	if errors.Is(err, vector.ErrDimensionMismatch) {
		return nil, err
	}
	return s.ExactSearch(ctx, query, threshold, limit, "")
}

// SearchText embeds the query text and searches with the resulting vector
func (s *Searcher) SearchText(ctx context.Context, embedder Embedder, text string, threshold float64, limit int) ([]models.VectorSearchResult, error) {
	query, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return s.Search(ctx, query, threshold, limit)
}

// checkDimension rejects a query vector of the wrong length before any work
func (s *Searcher) checkDimension(query []float32) error {
	if len(query) != s.codec.Dimension() {
		return fmt.Errorf("%w: query has %d dimensions, want %d",
			vector.ErrDimensionMismatch, len(query), s.codec.Dimension())
	}
	return nil
}

// sortByDistance orders results ascending by distance, node ID breaking ties
// for deterministic output
func sortByDistance(results []models.VectorSearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].NodeID < results[j].NodeID
	})
}
