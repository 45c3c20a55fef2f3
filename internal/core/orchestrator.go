// ABOUTME: TopicEmbedder runs a full embedding pass for one topic
// ABOUTME: Fetch, plan, embed, encode, persist, mirror, and stale cleanup
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/harper/topicvault/internal/models"
	"github.com/harper/topicvault/internal/storage"
	"github.com/harper/topicvault/internal/vector"
)

// ErrTopicNotFound means the topic source has no tree for the requested ID
var ErrTopicNotFound = errors.New("topic not found")

// BatchEmbedder produces vectors for a batch of texts, output order matching
// input order. Satisfied by *llm.Generator.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// PassResult summarizes one completed embedding pass
type PassResult struct {
	PassID       string
	TopicID      string
	Strategy     Strategy
	UnitsWritten int
	StaleRemoved int
	Duration     time.Duration
}

// TopicEmbedder orchestrates the embedding pipeline for a topic: fetch the
// tree, plan the unit decomposition, embed the unit texts in one batch, encode
// and upsert each vector under its (node, role) key, then delete records the
// new plan no longer produces.
//
// A pass is idempotent: running it twice against an unchanged topic rewrites
// the same keys with equivalent vectors. Persistence failures abort the pass
// at the failing unit; earlier upserts remain in place and the next pass
// overwrites them.
type TopicEmbedder struct {
	source   storage.TopicSource
	planner  *Planner
	embedder BatchEmbedder
	codec    *vector.Codec
	store    storage.EmbeddingStore
	index    storage.ApproxIndex // nil when no approximate index is configured
}

// NewTopicEmbedder wires the embedding pipeline. index may be nil.
func NewTopicEmbedder(source storage.TopicSource, planner *Planner, embedder BatchEmbedder, codec *vector.Codec, store storage.EmbeddingStore, index storage.ApproxIndex) *TopicEmbedder {
	return &TopicEmbedder{
		source:   source,
		planner:  planner,
		embedder: embedder,
		codec:    codec,
		store:    store,
		index:    index,
	}
}

// EmbedTopic runs one full pass for topicID
func (e *TopicEmbedder) EmbedTopic(ctx context.Context, topicID string) (*PassResult, error) {
	start := time.Now()
	passID := uuid.New().String()

	root, err := e.source.FetchTopicTree(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch topic %s: %w", topicID, err)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: %s", ErrTopicNotFound, topicID)
	}

	strategy, units := e.planner.Plan(root)

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}

	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed topic %s: %w", topicID, err)
	}
	if len(vectors) != len(units) {
		return nil, fmt.Errorf("embedding topic %s: got %d vectors for %d units", topicID, len(vectors), len(units))
	}

	generatedAt := time.Now().UTC()
	written := make(map[storage.EmbeddingRef]bool, len(units))

	for i, unit := range units {
		blob, err := e.codec.Encode(vectors[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode vector for node %s: %w", unit.SourceNodeID, err)
		}

		meta := models.EmbeddingMetadata{
			Type:        unit.Role,
			ParentTopic: unit.ParentTopicID,
			GeneratedAt: generatedAt,
			TokenCount:  unit.EstimatedTokens,
			Depth:       unit.Depth,
		}

		ref := storage.EmbeddingRef{NodeID: unit.SourceNodeID, Role: unit.Role}
		if err := e.store.WriteEmbedding(ctx, ref.NodeID, ref.Role, blob, meta); err != nil {
			return nil, fmt.Errorf("failed to store embedding for node %s role %s: %w", ref.NodeID, ref.Role, err)
		}
		written[ref] = true

		if e.index != nil {
			// The index is a mirror; exact search covers for a point that
			// failed to index, so log and keep going
			if err := e.index.Upsert(ctx, ref, vectors[i], meta); err != nil {
				log.Printf("[Embedder] Index upsert failed for node %s role %s: %v", ref.NodeID, ref.Role, err)
			}
		}
	}

	removed, err := e.removeStale(ctx, topicID, written)
	if err != nil {
		return nil, err
	}

	return &PassResult{
		PassID:       passID,
		TopicID:      topicID,
		Strategy:     strategy,
		UnitsWritten: len(written),
		StaleRemoved: removed,
		Duration:     time.Since(start),
	}, nil
}

// RemoveTopic deletes every embedding recorded for the topic, from the store
// and the index both. Used when the topic itself is deleted; callers should
// cancel any pending re-embed first so a queued pass cannot resurrect the
// records.
func (e *TopicEmbedder) RemoveTopic(ctx context.Context, topicID string) (int, error) {
	return e.removeStale(ctx, topicID, nil)
}

// removeStale deletes every embedding recorded for the topic that the current
// pass did not rewrite. This is what cleans up after a strategy change, e.g.
// section vectors left behind when a shrinking topic drops back to a single
// complete vector.
func (e *TopicEmbedder) removeStale(ctx context.Context, topicID string, written map[storage.EmbeddingRef]bool) (int, error) {
	manifest, err := e.store.ListEmbeddings(ctx, topicID)
	if err != nil {
		return 0, fmt.Errorf("failed to list embeddings for topic %s: %w", topicID, err)
	}

	removed := 0
	for _, ref := range manifest {
		if written[ref] {
			continue
		}
		if err := e.store.DeleteEmbedding(ctx, ref.NodeID, ref.Role); err != nil {
			return removed, fmt.Errorf("failed to delete stale embedding %s/%s: %w", ref.NodeID, ref.Role, err)
		}
		if e.index != nil {
			if err := e.index.Delete(ctx, ref); err != nil {
				log.Printf("[Embedder] Index delete failed for node %s role %s: %v", ref.NodeID, ref.Role, err)
			}
		}
		removed++
	}
	return removed, nil
}
