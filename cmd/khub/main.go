package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/khub/internal/cli"
	"github.com/cloo-solutions/khub/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "khub",
		Short: "KHub CLI - search and compare knowledge sources",
		Long: `KHub CLI searches the knowledge graph and the wiki through a khubd daemon.

Environment variables:
  KHUB_API_URL   API base URL (default: http://localhost:8080)`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.CompareCmd())
	rootCmd.AddCommand(client.VoteCmd())
	rootCmd.AddCommand(client.PageCmd())
	rootCmd.AddCommand(client.ShowCmd())
	rootCmd.AddCommand(client.StatusCmd())
	rootCmd.AddCommand(client.ResetCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
