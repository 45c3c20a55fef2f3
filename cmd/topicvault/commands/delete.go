// ABOUTME: CLI command to delete a topic and everything derived from it
// ABOUTME: Removes the tree, its stored embeddings, and index points
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCmd creates the delete command
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <topic-id>",
		Short: "Delete a topic and its embeddings",
		Long: `Delete a topic tree along with every embedding derived from it.

Stored vectors are removed through the topic's embedding manifest, and
points in the approximate index are removed best-effort.

Examples:
  topicvault delete gardening-basics
  topicvault delete --format json gardening-basics`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	topicID := args[0]

	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := cmd.Context()

	removed, err := svc.embedder.RemoveTopic(ctx, topicID)
	if err != nil {
		return fmt.Errorf("removing embeddings: %w", err)
	}

	if err := svc.topics.DeleteTopic(ctx, topicID); err != nil {
		return fmt.Errorf("deleting topic: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(map[string]interface{}{
			"topic_id":           topicID,
			"embeddings_removed": removed,
			"deleted":            true,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted topic %s\n", topicID)
	fmt.Fprintf(cmd.OutOrStdout(), "Embeddings removed: %d\n", removed)

	return nil
}
