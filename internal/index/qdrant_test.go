// ABOUTME: Tests for the Qdrant approximate index client
// ABOUTME: Uses httptest servers to verify REST payloads and distance mapping
package index

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harper/topicvault/internal/models"
	"github.com/harper/topicvault/internal/storage"
)

func TestFactory(t *testing.T) {
	tests := []struct {
		provider string
		wantNil  bool
		wantErr  bool
	}{
		{"qdrant", false, false},
		{"none", true, false},
		{"", true, false},
		{"unknown", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			idx, err := New(tt.provider, "http://localhost:6333")
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q) error = %v, wantErr %v", tt.provider, err, tt.wantErr)
			}
			if (idx == nil) != tt.wantNil {
				t.Errorf("New(%q) index nil = %v, want %v", tt.provider, idx == nil, tt.wantNil)
			}
		})
	}
}

func TestFactoryEmptyEndpoint(t *testing.T) {
	if _, err := New("qdrant", ""); err == nil {
		t.Error("expected error for empty endpoint")
	}
}

// collectionOK answers the ensure-collection GET so client calls proceed
func collectionOK(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet && r.URL.Path == "/collections/topicvault-embeddings" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func TestQdrantUpsert(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if collectionOK(w, r) {
			return
		}
		if r.Method == http.MethodPut && r.URL.Path == "/collections/topicvault-embeddings/points" {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	q, err := NewQdrant(srv.URL)
	if err != nil {
		t.Fatalf("NewQdrant() error = %v", err)
	}

	ref := storage.EmbeddingRef{NodeID: "node-1", Role: models.RoleSection}
	meta := models.EmbeddingMetadata{ParentTopic: "topic-1"}
	if err := q.Upsert(context.Background(), ref, []float32{1, 2, 3}, meta); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	points, ok := gotBody["points"].([]any)
	if !ok || len(points) != 1 {
		t.Fatalf("upsert body points = %v, want 1 point", gotBody["points"])
	}
	payload := points[0].(map[string]any)["payload"].(map[string]any)
	if payload["node_id"] != "node-1" || payload["role"] != "section" || payload["parent_topic"] != "topic-1" {
		t.Errorf("payload = %v, want node/role/topic fields", payload)
	}
}

func TestQdrantQuery_DistanceConversion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if collectionOK(w, r) {
			return
		}
		if r.Method == http.MethodPost && r.URL.Path == "/collections/topicvault-embeddings/points/search" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": []map[string]any{
					{"score": 0.95, "payload": map[string]string{"node_id": "a", "role": "complete"}},
					{"score": 0.60, "payload": map[string]string{"node_id": "b", "role": "section"}},
				},
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	q, _ := NewQdrant(srv.URL)
	hits, err := q.Query(context.Background(), []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}

	// Qdrant cosine scores are similarities; hits carry distances
	if got := hits[0].Distance; got < 0.049 || got > 0.051 {
		t.Errorf("hits[0].Distance = %v, want ~0.05", got)
	}
	if hits[0].NodeID != "a" || hits[0].Role != models.RoleComplete {
		t.Errorf("hits[0] = %+v, want node a role complete", hits[0])
	}
	if got := hits[1].Distance; got < 0.399 || got > 0.401 {
		t.Errorf("hits[1].Distance = %v, want ~0.4", got)
	}
}

func TestQdrantHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	q, _ := NewQdrant(srv.URL)
	if err := q.Health(context.Background()); err != nil {
		t.Errorf("Health() = %v, want nil", err)
	}
}

func TestQdrantHealth_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	q, _ := NewQdrant(srv.URL)
	if err := q.Health(context.Background()); err == nil {
		t.Error("Health() = nil, want error")
	}
}

func TestPointID_Deterministic(t *testing.T) {
	a := storage.EmbeddingRef{NodeID: "n", Role: models.RoleSummary}
	b := storage.EmbeddingRef{NodeID: "n", Role: models.RoleSection}

	if pointID(a) != pointID(a) {
		t.Error("pointID not deterministic")
	}
	if pointID(a) == pointID(b) {
		t.Error("pointID collides across roles for the same node")
	}
}
