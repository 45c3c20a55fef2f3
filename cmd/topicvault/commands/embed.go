// ABOUTME: CLI command to run an embedding pass for a topic
// ABOUTME: Supports loading a topic tree from a JSON file before embedding
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harper/topicvault/internal/models"
)

var embedFile string

// NewEmbedCmd creates the embed command
func NewEmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed <topic-id>",
		Short: "Run an embedding pass for a topic",
		Long: `Run a full embedding pass for a topic.

Fetches the topic tree, chunks it by size, generates vectors through
the configured backend, and upserts them into storage. Stale vectors
left behind by a previous chunking strategy are removed.

Examples:
  topicvault embed gardening-basics
  topicvault embed --file topic.json gardening-basics
  topicvault embed --format json gardening-basics`,
		Args: cobra.ExactArgs(1),
		RunE: runEmbed,
	}

	cmd.Flags().StringVar(&embedFile, "file", "", "Save a topic tree from a JSON file before embedding")

	return cmd
}

func runEmbed(cmd *cobra.Command, args []string) error {
	topicID := args[0]

	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.requireGenerator(); err != nil {
		return err
	}

	ctx := cmd.Context()

	if embedFile != "" {
		data, err := os.ReadFile(embedFile)
		if err != nil {
			return fmt.Errorf("reading topic file: %w", err)
		}
		var root models.TopicNode
		if err := json.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("parsing topic file: %w", err)
		}
		if root.NodeID == "" {
			root.NodeID = topicID
		}
		if root.NodeID != topicID {
			return fmt.Errorf("topic file has node_id %q, command was given %q", root.NodeID, topicID)
		}
		if err := svc.topics.SaveTopicTree(ctx, &root); err != nil {
			return fmt.Errorf("saving topic: %w", err)
		}
	}

	result, err := svc.embedder.EmbedTopic(ctx, topicID)
	if err != nil {
		return fmt.Errorf("embedding topic: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Embedded topic %s\n", result.TopicID)
	fmt.Fprintf(cmd.OutOrStdout(), "Strategy:      %s\n", result.Strategy)
	fmt.Fprintf(cmd.OutOrStdout(), "Units written: %d\n", result.UnitsWritten)
	fmt.Fprintf(cmd.OutOrStdout(), "Stale removed: %d\n", result.StaleRemoved)
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Pass ID:       %s\n", result.PassID)
		fmt.Fprintf(cmd.OutOrStdout(), "Duration:      %s\n", result.Duration)
	}

	return nil
}
