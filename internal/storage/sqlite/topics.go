// ABOUTME: Topic node persistence for SQLite
// ABOUTME: Stores the content tree and reassembles it on fetch
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harper/topicvault/internal/models"
	"github.com/harper/topicvault/internal/storage"
)

// TopicStore handles topic tree persistence
type TopicStore struct {
	db *DB
}

var _ storage.TopicSource = (*TopicStore)(nil)

// NewTopicStore creates a new TopicStore
func NewTopicStore(db *DB) *TopicStore {
	return &TopicStore{db: db}
}

// SaveTopicTree replaces all stored nodes for the tree's topic. The root
// node's ID is the topic ID.
func (s *TopicStore) SaveTopicTree(ctx context.Context, root *models.TopicNode) error {
	if root == nil || root.NodeID == "" {
		return fmt.Errorf("topic root with node ID is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM topic_nodes WHERE topic_id = ?", root.NodeID); err != nil {
		return fmt.Errorf("failed to clear topic nodes: %w", err)
	}

	type frame struct {
		node     *models.TopicNode
		parentID string
		position int
	}

	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		parent := sql.NullString{String: f.parentID, Valid: f.parentID != ""}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO topic_nodes (id, topic_id, parent_id, position, content)
			VALUES (?, ?, ?, ?, ?)
		`, f.node.NodeID, root.NodeID, parent, f.position, f.node.Content)
		if err != nil {
			return fmt.Errorf("failed to insert node %s: %w", f.node.NodeID, err)
		}

		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Children[i], parentID: f.node.NodeID, position: i})
		}
	}

	return tx.Commit()
}

// FetchTopicTree returns the topic's root node with children populated in
// document order, or nil if the topic does not exist.
func (s *TopicStore) FetchTopicTree(ctx context.Context, topicID string) (*models.TopicNode, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, parent_id, content
		FROM topic_nodes
		WHERE topic_id = ?
		ORDER BY parent_id, position ASC
	`, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query topic nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	nodes := make(map[string]*models.TopicNode)
	type link struct {
		childID  string
		parentID string
	}
	var links []link
	var root *models.TopicNode

	for rows.Next() {
		var (
			id       string
			parentID sql.NullString
			content  string
		)
		if err := rows.Scan(&id, &parentID, &content); err != nil {
			return nil, err
		}

		node := &models.TopicNode{NodeID: id, Content: content}
		nodes[id] = node

		if parentID.Valid {
			links = append(links, link{childID: id, parentID: parentID.String})
		} else if id == topicID {
			root = node
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}

	// Links arrive ordered by (parent, position), so appending preserves
	// document order
	for _, l := range links {
		parent, ok := nodes[l.parentID]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, nodes[l.childID])
	}

	return root, nil
}

// DeleteTopic removes every node of a topic. Embedding cleanup is the
// caller's job, via the embedding manifest.
func (s *TopicStore) DeleteTopic(ctx context.Context, topicID string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM topic_nodes WHERE topic_id = ?", topicID)
	return err
}
