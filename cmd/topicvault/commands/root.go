// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Entry point for embed, search, stats, sync, mcp, and version
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
████████╗ ██████╗ ██████╗ ██╗ ██████╗██╗   ██╗ █████╗ ██╗   ██╗██╗  ████████╗
╚══██╔══╝██╔═══██╗██╔══██╗██║██╔════╝██║   ██║██╔══██╗██║   ██║██║  ╚══██╔══╝
   ██║   ██║   ██║██████╔╝██║██║     ██║   ██║███████║██║   ██║██║     ██║
   ██║   ██║   ██║██╔═══╝ ██║██║     ╚██╗ ██╔╝██╔══██║██║   ██║██║     ██║
   ██║   ╚██████╔╝██║     ██║╚██████╗ ╚████╔╝ ██║  ██║╚██████╔╝███████╗██║
   ╚═╝    ╚═════╝ ╚═╝     ╚═╝ ╚═════╝  ╚═══╝  ╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚═╝
`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topicvault",
		Short: "Topic embedding and semantic search",
		Long: banner + `
Topicvault maintains vector embeddings for hierarchical topic trees.
Topics are chunked by size, embedded through an OpenAI-compatible
backend, and searchable by cosine similarity with an optional
approximate index.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")

	cmd.AddCommand(NewEmbedCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
