// ABOUTME: Sync commands for Charm cloud synchronization
// ABOUTME: Provides status and manual sync for the KV embedding mirror
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/topicvault/internal/charm"
)

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage Charm cloud synchronization",
		Long: `Manage synchronization with Charm cloud.

When the charm backend is enabled, embedding records sync
automatically across devices linked to the same Charm account.`,
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncNowCmd())

	return cmd
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync status and record count",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := charm.NewClient(charm.DefaultConfig())
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}
			defer client.Close()

			keys, err := client.ListKeys(charm.EmbeddingPrefix)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Status: Not connected")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Status: Connected")
			fmt.Fprintf(cmd.OutOrStdout(), "Synced embeddings: %d\n", len(keys))
			return nil
		},
	}
}

func newSyncNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Force immediate sync with Charm cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := charm.NewClient(charm.DefaultConfig())
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}
			defer client.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Syncing...")
			if err := client.Sync(); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Sync complete")
			return nil
		},
	}
}
