// ABOUTME: MCP tool definitions and registration for the topic embedding server
// ABOUTME: Defines JSON schemas for the embed, notify, search, delete, and stats tools
package mcp

import (
	"github.com/harper/topicvault/internal/cache"
	"github.com/harper/topicvault/internal/core"
	"github.com/harper/topicvault/internal/llm"
	"github.com/harper/topicvault/internal/search"
	"github.com/harper/topicvault/internal/storage"
	"github.com/harper/topicvault/internal/storage/sqlite"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, topics *sqlite.TopicStore, store storage.EmbeddingStore, scheduler *core.ReembedScheduler, embedder *core.TopicEmbedder, searcher *search.Searcher, generator *llm.Generator, embedCache *cache.EmbeddingCache) *Handlers {
	handlers := &Handlers{
		topics:     topics,
		store:      store,
		scheduler:  scheduler,
		embedder:   embedder,
		searcher:   searcher,
		generator:  generator,
		embedCache: embedCache,
	}

	// 1. save_topic - Persist a topic tree and queue it for embedding
	server.AddTool(mcp.Tool{
		Name:        "save_topic",
		Description: "Save a topic tree (root node with nested children) and schedule a debounced embedding pass for it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"topic": map[string]interface{}{
					"type":        "object",
					"description": "Topic tree as JSON: {node_id, content, children: [...]}",
				},
			},
			Required: []string{"topic"},
		},
	}, handlers.SaveTopic)

	// 2. embed_topic - Run an embedding pass immediately
	server.AddTool(mcp.Tool{
		Name:        "embed_topic",
		Description: "Run a full embedding pass for a topic right now, bypassing the debounce window. Returns the chunking strategy and write counts.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"topic_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the topic to embed",
				},
			},
			Required: []string{"topic_id"},
		},
	}, handlers.EmbedTopic)

	// 3. notify_topic_changed - Debounced re-embedding
	server.AddTool(mcp.Tool{
		Name:        "notify_topic_changed",
		Description: "Record that a topic changed. A burst of notifications coalesces into a single embedding pass after the quiet period.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"topic_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the topic that changed",
				},
			},
			Required: []string{"topic_id"},
		},
	}, handlers.NotifyTopicChanged)

	// 4. search_topics - Semantic search over stored embeddings
	server.AddTool(mcp.Tool{
		Name:        "search_topics",
		Description: "Semantic search over topic embeddings. Uses the approximate index when available and falls back to an exact scan.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural-language search query",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 10)",
					"default":     10,
				},
				"threshold": map[string]interface{}{
					"type":        "number",
					"description": "Inclusive cosine-distance cutoff, 0-1 (default: 0.5)",
					"default":     0.5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchTopics)

	// 5. delete_topic - Remove a topic and everything derived from it
	server.AddTool(mcp.Tool{
		Name:        "delete_topic",
		Description: "Delete a topic tree along with its stored embeddings and any pending re-embed. Index points are removed best-effort.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"topic_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the topic to delete",
				},
			},
			Required: []string{"topic_id"},
		},
	}, handlers.DeleteTopic)

	// 6. embedding_stats - Cache and store counters
	server.AddTool(mcp.Tool{
		Name:        "embedding_stats",
		Description: "Report embedding cache hit/miss counters, stored embedding count, and vector dimension.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.EmbeddingStats)

	return handlers
}
