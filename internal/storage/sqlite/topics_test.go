// ABOUTME: Tests for topic node persistence
// ABOUTME: Verifies tree round-trip, ordering, and deletion
package sqlite

import (
	"context"
	"testing"

	"github.com/harper/topicvault/internal/models"
)

func testTree() *models.TopicNode {
	return &models.TopicNode{
		NodeID:  "topic-1",
		Content: "root content",
		Children: []*models.TopicNode{
			{NodeID: "child-a", Content: "first child"},
			{
				NodeID:  "child-b",
				Content: "second child",
				Children: []*models.TopicNode{
					{NodeID: "grandchild", Content: "nested"},
				},
			},
			{NodeID: "child-c", Content: "third child"},
		},
	}
}

func TestTopicTreeRoundTrip(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	store := NewTopicStore(db)

	if err := store.SaveTopicTree(ctx, testTree()); err != nil {
		t.Fatalf("SaveTopicTree() error = %v", err)
	}

	got, err := store.FetchTopicTree(ctx, "topic-1")
	if err != nil {
		t.Fatalf("FetchTopicTree() error = %v", err)
	}
	if got == nil {
		t.Fatal("FetchTopicTree() returned nil")
	}

	if got.Content != "root content" {
		t.Errorf("root content = %q, want %q", got.Content, "root content")
	}
	if len(got.Children) != 3 {
		t.Fatalf("len(children) = %d, want 3", len(got.Children))
	}
	for i, want := range []string{"child-a", "child-b", "child-c"} {
		if got.Children[i].NodeID != want {
			t.Errorf("children[%d] = %v, want %v (document order must survive)", i, got.Children[i].NodeID, want)
		}
	}
	if len(got.Children[1].Children) != 1 || got.Children[1].Children[0].NodeID != "grandchild" {
		t.Errorf("grandchild missing: %+v", got.Children[1].Children)
	}
}

func TestFetchTopicTree_Missing(t *testing.T) {
	db, _ := OpenInMemory()
	defer func() { _ = db.Close() }()

	got, err := NewTopicStore(db).FetchTopicTree(context.Background(), "nope")
	if err != nil {
		t.Fatalf("FetchTopicTree() error = %v", err)
	}
	if got != nil {
		t.Errorf("FetchTopicTree() = %+v, want nil for missing topic", got)
	}
}

func TestSaveTopicTree_Replaces(t *testing.T) {
	db, _ := OpenInMemory()
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	store := NewTopicStore(db)

	if err := store.SaveTopicTree(ctx, testTree()); err != nil {
		t.Fatalf("SaveTopicTree() error = %v", err)
	}

	smaller := &models.TopicNode{NodeID: "topic-1", Content: "rewritten"}
	if err := store.SaveTopicTree(ctx, smaller); err != nil {
		t.Fatalf("SaveTopicTree() replace error = %v", err)
	}

	got, err := store.FetchTopicTree(ctx, "topic-1")
	if err != nil {
		t.Fatalf("FetchTopicTree() error = %v", err)
	}
	if got.Content != "rewritten" {
		t.Errorf("content = %q, want %q", got.Content, "rewritten")
	}
	if len(got.Children) != 0 {
		t.Errorf("len(children) = %d, want 0 after replace", len(got.Children))
	}
}

func TestDeleteTopic(t *testing.T) {
	db, _ := OpenInMemory()
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	store := NewTopicStore(db)

	if err := store.SaveTopicTree(ctx, testTree()); err != nil {
		t.Fatalf("SaveTopicTree() error = %v", err)
	}
	if err := store.DeleteTopic(ctx, "topic-1"); err != nil {
		t.Fatalf("DeleteTopic() error = %v", err)
	}

	got, err := store.FetchTopicTree(ctx, "topic-1")
	if err != nil {
		t.Fatalf("FetchTopicTree() error = %v", err)
	}
	if got != nil {
		t.Error("FetchTopicTree() should return nil after delete")
	}
}
