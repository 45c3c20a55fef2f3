// ABOUTME: CLI command for semantic search over topic embeddings
// ABOUTME: Embeds the query and prints ranked results by cosine distance
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/topicvault/internal/models"
)

var (
	searchLimit     int
	searchThreshold float64
	searchExact     bool
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search topics by semantic similarity",
		Long: `Search topic embeddings by semantic similarity.

The query is embedded and matched against stored vectors. With an
approximate index configured, search is sub-linear; otherwise an
exact full scan ranks every vector by cosine distance.

Examples:
  topicvault search "container gardening"
  topicvault search --limit 10 "soil drainage"
  topicvault search --threshold 0.3 --format json "composting"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum results to return")
	cmd.Flags().Float64Var(&searchThreshold, "threshold", 0.5, "Inclusive cosine-distance cutoff (0-1)")
	cmd.Flags().BoolVar(&searchExact, "exact", false, "Skip the approximate index and scan every vector")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}
	if searchThreshold < 0 || searchThreshold > 1 {
		return fmt.Errorf("threshold must be 0-1, got %f", searchThreshold)
	}

	query := args[0]

	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.requireGenerator(); err != nil {
		return err
	}

	ctx := cmd.Context()

	vec, err := svc.generator.Embed(ctx, query)
	if err != nil {
		return fmt.Errorf("embedding query: %w", err)
	}

	var results []models.VectorSearchResult
	if searchExact {
		results, err = svc.searcher.ExactSearch(ctx, vec, searchThreshold, searchLimit, "")
	} else {
		results, err = svc.searcher.Search(ctx, vec, searchThreshold, searchLimit)
	}
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No topics found for query: %s\n", query)
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	// Table format
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "DISTANCE\tROLE\tNODE ID\tPARENT TOPIC\n")
	fmt.Fprintf(w, "--------\t----\t-------\t------------\n")
	for _, r := range results {
		parent := r.ParentTopic
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n",
			r.Distance, r.Role, truncate(r.NodeID, 30), truncate(parent, 30))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(results))
	}

	return nil
}
