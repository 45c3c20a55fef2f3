// ABOUTME: Tests for MCP command
// ABOUTME: Verifies MCP command structure and example docs

package commands

import (
	"strings"
	"testing"
)

func TestNewMCPCmd(t *testing.T) {
	cmd := NewMCPCmd()

	if cmd.Use != "mcp" {
		t.Errorf("Use = %q, want %q", cmd.Use, "mcp")
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}
}

func TestMCPCmd_Examples(t *testing.T) {
	cmd := NewMCPCmd()

	if !strings.Contains(cmd.Example, "topicvault mcp") {
		t.Error("Example should show how to start the server")
	}
	if !strings.Contains(cmd.Example, "mcpServers") {
		t.Error("Example should show client configuration")
	}
}
