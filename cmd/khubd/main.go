package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/khub/internal/cli"
	"github.com/cloo-solutions/khub/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "khubd",
		Short: "KHub explorer daemon",
		Long:  "KHub explorer daemon: serves the search, compare and vote API and optionally collects telemetry",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
