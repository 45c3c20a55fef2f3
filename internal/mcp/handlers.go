// ABOUTME: MCP tool handler implementations for the topic embedding server
// ABOUTME: Save, embed, notify, search, and stats handlers with error mapping
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harper/topicvault/internal/cache"
	"github.com/harper/topicvault/internal/core"
	"github.com/harper/topicvault/internal/llm"
	"github.com/harper/topicvault/internal/models"
	"github.com/harper/topicvault/internal/search"
	"github.com/harper/topicvault/internal/storage"
	"github.com/harper/topicvault/internal/storage/sqlite"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	topics     *sqlite.TopicStore
	store      storage.EmbeddingStore
	scheduler  *core.ReembedScheduler
	embedder   *core.TopicEmbedder
	searcher   *search.Searcher
	generator  *llm.Generator
	embedCache *cache.EmbeddingCache
}

// SaveTopic handles the save_topic tool
func (h *Handlers) SaveTopic(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("arguments must be an object"), nil
	}
	raw, exists := args["topic"]
	if !exists {
		return mcp.NewToolResultError("topic argument is required"), nil
	}

	// Round-trip through JSON to decode the nested tree
	encoded, err := json.Marshal(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid topic payload: %v", err)), nil
	}
	var root models.TopicNode
	if err := json.Unmarshal(encoded, &root); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid topic tree: %v", err)), nil
	}
	if root.NodeID == "" {
		return mcp.NewToolResultError("topic root must have a node_id"), nil
	}

	if err := h.topics.SaveTopicTree(ctx, &root); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save topic: %v", err)), nil
	}

	// Queue a debounced embedding pass for the new content
	h.scheduler.Notify(root.NodeID)

	return jsonResult(map[string]interface{}{
		"topic_id":         root.NodeID,
		"embedding_queued": true,
	})
}

// EmbedTopic handles the embed_topic tool
func (h *Handlers) EmbedTopic(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topicID, err := request.RequireString("topic_id")
	if err != nil {
		return mcp.NewToolResultError("topic_id argument is required and must be a string"), nil
	}

	result, err := h.scheduler.EmbedNow(ctx, topicID)
	if err != nil {
		if errors.Is(err, core.ErrTopicNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("topic %s not found", topicID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("embedding pass failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"pass_id":       result.PassID,
		"topic_id":      result.TopicID,
		"strategy":      string(result.Strategy),
		"units_written": result.UnitsWritten,
		"stale_removed": result.StaleRemoved,
		"duration_ms":   result.Duration.Milliseconds(),
	})
}

// NotifyTopicChanged handles the notify_topic_changed tool
func (h *Handlers) NotifyTopicChanged(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topicID, err := request.RequireString("topic_id")
	if err != nil {
		return mcp.NewToolResultError("topic_id argument is required and must be a string"), nil
	}

	h.scheduler.Notify(topicID)

	return jsonResult(map[string]interface{}{
		"topic_id": topicID,
		"queued":   true,
	})
}

// SearchTopics handles the search_topics tool
func (h *Handlers) SearchTopics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	maxResults := request.GetInt("max_results", search.DefaultLimit)
	threshold := request.GetFloat("threshold", 0.5)

	results, err := h.searcher.SearchText(ctx, h.generator, query, threshold, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	hits := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		hits = append(hits, map[string]interface{}{
			"node_id":      r.NodeID,
			"role":         string(r.Role),
			"parent_topic": r.ParentTopic,
			"distance":     r.Distance,
		})
	}

	return jsonResult(map[string]interface{}{
		"query":   query,
		"results": hits,
	})
}

// DeleteTopic handles the delete_topic tool
func (h *Handlers) DeleteTopic(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topicID, err := request.RequireString("topic_id")
	if err != nil {
		return mcp.NewToolResultError("topic_id argument is required and must be a string"), nil
	}

	// Drop any pending debounce first so a queued pass cannot re-embed the
	// topic after its rows are gone
	h.scheduler.CancelTopic(topicID)

	removed, err := h.embedder.RemoveTopic(ctx, topicID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove embeddings: %v", err)), nil
	}

	if err := h.topics.DeleteTopic(ctx, topicID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete topic: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"topic_id":           topicID,
		"embeddings_removed": removed,
		"deleted":            true,
	})
}

// EmbeddingStats handles the embedding_stats tool
func (h *Handlers) EmbeddingStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := h.embedCache.Stats()

	stored := 0
	if counter, ok := h.store.(storage.EmbeddingCounter); ok {
		count, err := counter.CountEmbeddings(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to count embeddings: %v", err)), nil
		}
		stored = count
	}

	return jsonResult(map[string]interface{}{
		"cache": map[string]interface{}{
			"size":     stats.Size,
			"capacity": stats.Capacity,
			"hits":     stats.Hits,
			"misses":   stats.Misses,
		},
		"stored_embeddings": stored,
		"vector_dimension":  h.generator.Dimension(),
		"generated_at":      time.Now().UTC().Format(time.RFC3339),
	})
}

// jsonResult marshals a response payload into an MCP text result
func jsonResult(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
