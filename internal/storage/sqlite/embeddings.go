// ABOUTME: Embedding storage operations for SQLite
// ABOUTME: Upserts vector blobs keyed by (node, role) with metadata columns
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harper/topicvault/internal/models"
	"github.com/harper/topicvault/internal/storage"
)

// EmbeddingStore handles embedding persistence
type EmbeddingStore struct {
	db *DB
}

var _ storage.EmbeddingStore = (*EmbeddingStore)(nil)

// NewEmbeddingStore creates a new EmbeddingStore
func NewEmbeddingStore(db *DB) *EmbeddingStore {
	return &EmbeddingStore{db: db}
}

// WriteEmbedding upserts one stored embedding. The single INSERT OR UPDATE
// statement keeps the write atomic per (node, role) key.
func (s *EmbeddingStore) WriteEmbedding(ctx context.Context, nodeID string, role models.EmbeddingRole, blob []byte, meta models.EmbeddingMetadata) error {
	if nodeID == "" {
		return fmt.Errorf("node ID is required")
	}
	if !role.Valid() {
		return fmt.Errorf("invalid embedding role %q", role)
	}
	if len(blob) == 0 {
		return fmt.Errorf("empty vector blob for node %s", nodeID)
	}

	generatedAt := meta.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO embeddings (node_id, role, parent_topic, vector, generated_at, token_count, depth)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(node_id, role) DO UPDATE SET
			parent_topic = excluded.parent_topic,
			vector = excluded.vector,
			generated_at = excluded.generated_at,
			token_count = excluded.token_count,
			depth = excluded.depth
	`, nodeID, string(role), nullString(meta.ParentTopic), blob,
		generatedAt.UTC().Format(time.RFC3339), meta.TokenCount, meta.Depth)

	return err
}

// DeleteEmbedding removes one embedding. Missing keys are not an error.
func (s *EmbeddingStore) DeleteEmbedding(ctx context.Context, nodeID string, role models.EmbeddingRole) error {
	_, err := s.db.Exec(ctx, "DELETE FROM embeddings WHERE node_id = ? AND role = ?", nodeID, string(role))
	return err
}

// ListEmbeddings enumerates the (node, role) keys previously written for a
// topic. This is the manifest consulted when a strategy change leaves
// obsolete records behind.
func (s *EmbeddingStore) ListEmbeddings(ctx context.Context, topicID string) ([]storage.EmbeddingRef, error) {
	rows, err := s.db.Query(ctx, `
		SELECT node_id, role
		FROM embeddings
		WHERE parent_topic = ?
		ORDER BY node_id, role
	`, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var refs []storage.EmbeddingRef
	for rows.Next() {
		var ref storage.EmbeddingRef
		var role string
		if err := rows.Scan(&ref.NodeID, &role); err != nil {
			return nil, err
		}
		ref.Role = models.EmbeddingRole(role)
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// GetEmbedding retrieves one stored embedding, or nil if absent
func (s *EmbeddingStore) GetEmbedding(ctx context.Context, nodeID string, role models.EmbeddingRole) (*models.StoredEmbedding, error) {
	row := s.db.QueryRow(ctx, `
		SELECT node_id, role, parent_topic, vector, generated_at, token_count, depth
		FROM embeddings
		WHERE node_id = ? AND role = ?
	`, nodeID, string(role))

	emb, err := scanEmbedding(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return emb, nil
}

// ScanAllEmbeddings returns every stored embedding matching the role filter
// (empty role means all)
func (s *EmbeddingStore) ScanAllEmbeddings(ctx context.Context, roleFilter models.EmbeddingRole) ([]models.StoredEmbedding, error) {
	query := `
		SELECT node_id, role, parent_topic, vector, generated_at, token_count, depth
		FROM embeddings
	`
	var args []interface{}
	if roleFilter != "" {
		query += " WHERE role = ?"
		args = append(args, string(roleFilter))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var all []models.StoredEmbedding
	for rows.Next() {
		emb, err := scanEmbedding(rows.Scan)
		if err != nil {
			return nil, err
		}
		all = append(all, *emb)
	}
	return all, rows.Err()
}

// CountEmbeddings returns the total number of stored embeddings
func (s *EmbeddingStore) CountEmbeddings(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count)
	return count, err
}

// scanEmbedding scans one embedding row via the given scan function
func scanEmbedding(scan func(...interface{}) error) (*models.StoredEmbedding, error) {
	var (
		emb         models.StoredEmbedding
		role        string
		parentTopic sql.NullString
		generatedAt string
	)

	if err := scan(&emb.NodeID, &role, &parentTopic, &emb.Blob, &generatedAt,
		&emb.Metadata.TokenCount, &emb.Metadata.Depth); err != nil {
		return nil, err
	}

	emb.Metadata.Type = models.EmbeddingRole(role)
	if parentTopic.Valid {
		emb.Metadata.ParentTopic = parentTopic.String
	}
	if ts, err := time.Parse(time.RFC3339, generatedAt); err == nil {
		emb.Metadata.GeneratedAt = ts
	}

	return &emb, nil
}

// nullString converts an empty string to a SQL NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
