// ABOUTME: Cloud-synced embedding store backed by Charm KV
// ABOUTME: Alternative to the SQLite backend for multi-machine sync
package storage

import (
	"context"
	"fmt"

	"github.com/harper/topicvault/internal/charm"
	"github.com/harper/topicvault/internal/models"
)

// charmRecord is the JSON shape persisted per (node, role) key
type charmRecord struct {
	NodeID   string                   `json:"node_id"`
	Role     models.EmbeddingRole     `json:"role"`
	Blob     []byte                   `json:"blob"`
	Metadata models.EmbeddingMetadata `json:"metadata"`
}

// CharmEmbeddingStore implements EmbeddingStore over Charm KV. Each record is
// one KV entry, so single-key writes are atomic from a reader's perspective.
type CharmEmbeddingStore struct {
	charm *charm.Client
}

var _ EmbeddingStore = (*CharmEmbeddingStore)(nil)

// NewCharmEmbeddingStore creates a CharmEmbeddingStore over an owned client
func NewCharmEmbeddingStore(client *charm.Client) *CharmEmbeddingStore {
	return &CharmEmbeddingStore{charm: client}
}

// WriteEmbedding upserts one stored embedding
func (s *CharmEmbeddingStore) WriteEmbedding(ctx context.Context, nodeID string, role models.EmbeddingRole, blob []byte, meta models.EmbeddingMetadata) error {
	if nodeID == "" {
		return fmt.Errorf("node ID is required")
	}
	if !role.Valid() {
		return fmt.Errorf("invalid embedding role %q", role)
	}
	if len(blob) == 0 {
		return fmt.Errorf("empty vector blob for node %s", nodeID)
	}

	record := charmRecord{
		NodeID:   nodeID,
		Role:     role,
		Blob:     blob,
		Metadata: meta,
	}
	return s.charm.SetJSON(charm.EmbeddingKey(nodeID, string(role)), record)
}

// DeleteEmbedding removes one embedding record
func (s *CharmEmbeddingStore) DeleteEmbedding(ctx context.Context, nodeID string, role models.EmbeddingRole) error {
	return s.charm.Delete(charm.EmbeddingKey(nodeID, string(role)))
}

// ListEmbeddings enumerates the stored (node, role) keys for a topic by
// scanning the embedding prefix and filtering on the parent topic
func (s *CharmEmbeddingStore) ListEmbeddings(ctx context.Context, topicID string) ([]EmbeddingRef, error) {
	keys, err := s.charm.ListKeys(charm.EmbeddingPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list embedding keys: %w", err)
	}

	var refs []EmbeddingRef
	for _, key := range keys {
		var record charmRecord
		if err := s.charm.GetJSON(key, &record); err != nil {
			continue
		}
		if record.Metadata.ParentTopic != topicID {
			continue
		}
		refs = append(refs, EmbeddingRef{NodeID: record.NodeID, Role: record.Role})
	}
	return refs, nil
}

// CountEmbeddings returns the total number of stored embedding records
func (s *CharmEmbeddingStore) CountEmbeddings(ctx context.Context) (int, error) {
	keys, err := s.charm.ListKeys(charm.EmbeddingPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list embedding keys: %w", err)
	}
	return len(keys), nil
}

// ScanAllEmbeddings returns every stored embedding matching the role filter
// (empty role means all)
func (s *CharmEmbeddingStore) ScanAllEmbeddings(ctx context.Context, roleFilter models.EmbeddingRole) ([]models.StoredEmbedding, error) {
	keys, err := s.charm.ListKeys(charm.EmbeddingPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list embedding keys: %w", err)
	}

	var all []models.StoredEmbedding
	for _, key := range keys {
		var record charmRecord
		if err := s.charm.GetJSON(key, &record); err != nil {
			continue
		}
		if roleFilter != "" && record.Role != roleFilter {
			continue
		}
		all = append(all, models.StoredEmbedding{
			NodeID:   record.NodeID,
			Blob:     record.Blob,
			Metadata: record.Metadata,
		})
	}
	return all, nil
}
