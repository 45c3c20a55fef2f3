// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to embed and search topics via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/topicvault/internal/core"
	"github.com/harper/topicvault/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs topicvault as an MCP (Model Context Protocol) server over stdio,
exposing tools to save topics, run embedding passes, queue debounced
re-embeds, and search by similarity.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  topicvault mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "topicvault": {
  #       "command": "topicvault",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - embedding and search tools will not work")
	}

	// Debounced re-embedding behind the notify tool
	scheduler := core.NewReembedScheduler(svc.embedder, svc.cfg.QuietPeriod)

	server := mcpserver.NewMCPServer(
		"Topicvault",
		versionInfo.Version,
	)

	mcp.RegisterTools(server, svc.topics, svc.store, scheduler, svc.embedder, svc.searcher, svc.generator, svc.embedCache)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("Topicvault MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}

		// Flush pending debounced passes and wait for in-flight work
		scheduler.Close()

		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		scheduler.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
