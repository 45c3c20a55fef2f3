// ABOUTME: Embedding models for vector storage and semantic search
// ABOUTME: Defines embedding roles, units, stored records, and search results
package models

import "time"

// EmbeddingRole identifies which slice of a topic a vector represents
type EmbeddingRole string

const (
	// RoleComplete covers the whole topic in a single vector
	RoleComplete EmbeddingRole = "complete"
	// RoleSummary covers only the topic's root content
	RoleSummary EmbeddingRole = "summary"
	// RoleSection covers one child node's content
	RoleSection EmbeddingRole = "section"
)

// Valid reports whether the role is one of the known chunking roles
func (r EmbeddingRole) Valid() bool {
	switch r {
	case RoleComplete, RoleSummary, RoleSection:
		return true
	}
	return false
}

// EmbeddingUnit is one embeddable slice of a topic produced by the chunking
// planner. Units are transient; they exist only for the duration of an
// embedding pass and are consumed to produce StoredEmbeddings.
type EmbeddingUnit struct {
	SourceNodeID    string        `json:"source_node_id"`
	Role            EmbeddingRole `json:"role"`
	ParentTopicID   string        `json:"parent_topic_id,omitempty"`
	Depth           int           `json:"depth"`
	Text            string        `json:"text"`
	EstimatedTokens int           `json:"estimated_tokens"`
}

// EmbeddingMetadata is the metadata record persisted alongside each vector blob
type EmbeddingMetadata struct {
	Type        EmbeddingRole `json:"type"`
	ParentTopic string        `json:"parent_topic,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
	TokenCount  int           `json:"token_count"`
	Depth       int           `json:"depth"`
}

// StoredEmbedding is a persisted embedding record keyed by (node, role)
type StoredEmbedding struct {
	NodeID   string            `json:"node_id"`
	Blob     []byte            `json:"blob"`
	Metadata EmbeddingMetadata `json:"metadata"`
}

// VectorSearchResult represents a search result with its cosine distance.
// Lower distance means more similar.
type VectorSearchResult struct {
	NodeID      string        `json:"node_id"`
	Role        EmbeddingRole `json:"role"`
	ParentTopic string        `json:"parent_topic,omitempty"`
	Distance    float64       `json:"distance"`
}
