// ABOUTME: CLI command showing embedding store and cache statistics
// ABOUTME: Counts stored vectors and reports cache hit/miss counters
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/topicvault/internal/storage"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show embedding statistics",
		Long: `Show statistics for the embedding subsystem.

Reports the number of stored vectors, the configured dimension,
and embedding cache counters.`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	counter, ok := svc.store.(storage.EmbeddingCounter)
	if !ok {
		return fmt.Errorf("embedding store does not report counts")
	}
	count, err := counter.CountEmbeddings(cmd.Context())
	if err != nil {
		return fmt.Errorf("counting embeddings: %w", err)
	}

	cacheStats := svc.embedCache.Stats()

	if outputFormat == "json" {
		response := map[string]interface{}{
			"stored_embeddings": count,
			"vector_dimension":  svc.cfg.VectorDimension,
			"cache":             cacheStats,
		}
		jsonData, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stored embeddings: %d\n", count)
	fmt.Fprintf(cmd.OutOrStdout(), "Vector dimension:  %d\n", svc.cfg.VectorDimension)
	fmt.Fprintf(cmd.OutOrStdout(), "Cache size:        %d / %d\n", cacheStats.Size, cacheStats.Capacity)
	fmt.Fprintf(cmd.OutOrStdout(), "Cache hits:        %d\n", cacheStats.Hits)
	fmt.Fprintf(cmd.OutOrStdout(), "Cache misses:      %d\n", cacheStats.Misses)

	return nil
}
