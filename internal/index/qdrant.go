// ABOUTME: Approximate nearest-neighbor index backed by Qdrant's REST API
// ABOUTME: Mirrors stored embeddings into a cosine-distance collection
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/harper/topicvault/internal/models"
	"github.com/harper/topicvault/internal/storage"
)

// Qdrant implements storage.ApproxIndex using Qdrant's REST API
type Qdrant struct {
	endpoint   string
	collection string
	dimension  int
	client     *http.Client

	ensureOnce sync.Once
	ensureErr  error
}

var _ storage.ApproxIndex = (*Qdrant)(nil)

// NewQdrant creates a Qdrant-backed approximate index
func NewQdrant(endpoint string, opts ...Option) (*Qdrant, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("qdrant endpoint is required")
	}
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Qdrant{
		endpoint:   endpoint,
		collection: o.Collection,
		dimension:  o.Dimension,
		client:     &http.Client{},
	}, nil
}

// ensureCollection creates the collection if it doesn't exist
func (q *Qdrant) ensureCollection(ctx context.Context) error {
	q.ensureOnce.Do(func() {
		url := fmt.Sprintf("%s/collections/%s", q.endpoint, q.collection)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			q.ensureErr = err
			return
		}
		resp, err := q.client.Do(req)
		if err != nil {
			q.ensureErr = err
			return
		}
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return
		}

		body := map[string]any{
			"vectors": map[string]any{
				"size":     q.dimension,
				"distance": "Cosine",
			},
		}
		data, _ := json.Marshal(body)
		req, err = http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
		if err != nil {
			q.ensureErr = err
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err = q.client.Do(req)
		if err != nil {
			q.ensureErr = err
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			b, _ := io.ReadAll(resp.Body)
			q.ensureErr = fmt.Errorf("failed to create collection: %s %s", resp.Status, string(b))
		}
	})
	return q.ensureErr
}

// pointID produces a deterministic uint64 hash of a (node, role) key for use
// as a Qdrant point ID
func pointID(ref storage.EmbeddingRef) uint64 {
	var h uint64 = 14695981039346656037 // FNV-1a offset basis
	key := ref.NodeID + ":" + string(ref.Role)
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= 1099511628211 // FNV-1a prime
	}
	return h
}

// Upsert indexes a vector under its (node, role) key
func (q *Qdrant) Upsert(ctx context.Context, ref storage.EmbeddingRef, vec []float32, meta models.EmbeddingMetadata) error {
	if err := q.ensureCollection(ctx); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	point := map[string]any{
		"id":     pointID(ref),
		"vector": vec,
		"payload": map[string]string{
			"node_id":      ref.NodeID,
			"role":         string(ref.Role),
			"parent_topic": meta.ParentTopic,
		},
	}

	body := map[string]any{"points": []any{point}}
	data, _ := json.Marshal(body)

	url := fmt.Sprintf("%s/collections/%s/points", q.endpoint, q.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant upsert failed: %s %s", resp.Status, string(b))
	}
	return nil
}

// Delete removes a point from the index
func (q *Qdrant) Delete(ctx context.Context, ref storage.EmbeddingRef) error {
	if err := q.ensureCollection(ctx); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	body := map[string]any{"points": []uint64{pointID(ref)}}
	data, _ := json.Marshal(body)

	url := fmt.Sprintf("%s/collections/%s/points/delete", q.endpoint, q.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant delete failed: %s %s", resp.Status, string(b))
	}
	return nil
}

// Query returns up to limit nearest neighbors ordered ascending by cosine
// distance. Qdrant scores cosine as similarity, so results are converted.
func (q *Qdrant) Query(ctx context.Context, vec []float32, limit int) ([]storage.IndexHit, error) {
	if err := q.ensureCollection(ctx); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}

	body := map[string]any{
		"vector":       vec,
		"top":          limit,
		"with_payload": true,
	}
	data, _ := json.Marshal(body)

	url := fmt.Sprintf("%s/collections/%s/points/search", q.endpoint, q.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("qdrant search failed: %s %s", resp.Status, string(b))
	}

	var result struct {
		Result []struct {
			Score   float64           `json:"score"`
			Payload map[string]string `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	var hits []storage.IndexHit
	for _, r := range result.Result {
		hits = append(hits, storage.IndexHit{
			NodeID:   r.Payload["node_id"],
			Role:     models.EmbeddingRole(r.Payload["role"]),
			Distance: 1.0 - r.Score,
		})
	}
	return hits, nil
}

// Health reports whether the index is reachable
func (q *Qdrant) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/healthz", q.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant unhealthy: %s", resp.Status)
	}
	return nil
}
