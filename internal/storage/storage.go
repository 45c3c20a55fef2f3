// ABOUTME: Collaborator interfaces between the embedding subsystem and storage
// ABOUTME: Topic tree reads, embedding writes, and the approximate index
package storage

import (
	"context"

	"github.com/harper/topicvault/internal/models"
)

// EmbeddingRef identifies one stored embedding by its (node, role) key
type EmbeddingRef struct {
	NodeID string
	Role   models.EmbeddingRole
}

// IndexHit is a single result from the approximate index
type IndexHit struct {
	NodeID   string
	Role     models.EmbeddingRole
	Distance float64
}

// TopicSource provides read access to a topic and its descendants
type TopicSource interface {
	// FetchTopicTree returns the root node for topicID with children
	// populated recursively, or nil if the topic does not exist.
	FetchTopicTree(ctx context.Context, topicID string) (*models.TopicNode, error)
}

// EmbeddingStore persists embedding blobs keyed by (node, role). Writes are
// atomic per key: readers see either the old or the new vector, never a mix.
type EmbeddingStore interface {
	// WriteEmbedding upserts one stored embedding
	WriteEmbedding(ctx context.Context, nodeID string, role models.EmbeddingRole, blob []byte, meta models.EmbeddingMetadata) error

	// DeleteEmbedding removes an obsolete unit's embedding. Deleting a
	// missing key is not an error.
	DeleteEmbedding(ctx context.Context, nodeID string, role models.EmbeddingRole) error

	// ListEmbeddings enumerates every embedding previously written for a
	// topic. This is the manifest used to clean up records left behind by an
	// obsolete chunking strategy.
	ListEmbeddings(ctx context.Context, topicID string) ([]EmbeddingRef, error)

	// ScanAllEmbeddings returns every stored embedding matching the role
	// filter (empty role means all), for exact full-scan search.
	ScanAllEmbeddings(ctx context.Context, roleFilter models.EmbeddingRole) ([]models.StoredEmbedding, error)
}

// EmbeddingCounter is implemented by stores that can report how many
// embedding records they hold
type EmbeddingCounter interface {
	CountEmbeddings(ctx context.Context) (int, error)
}

// ApproxIndex is the storage layer's native approximate-nearest-neighbor
// index. The embedding subsystem mirrors writes into it and queries it for
// sub-linear search.
type ApproxIndex interface {
	// Upsert indexes a vector under its (node, role) key
	Upsert(ctx context.Context, ref EmbeddingRef, vec []float32, meta models.EmbeddingMetadata) error

	// Delete removes a point from the index
	Delete(ctx context.Context, ref EmbeddingRef) error

	// Query returns up to limit nearest neighbors ordered ascending by
	// cosine distance.
	Query(ctx context.Context, vec []float32, limit int) ([]IndexHit, error)

	// Health reports whether the index is reachable
	Health(ctx context.Context) error
}
