package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cloo-solutions/khub/internal/service"
	"github.com/spf13/cobra"
)

// StatusCmd creates the status command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the search backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/status")
			if err != nil {
				return err
			}

			var status service.StatusInfo
			if err := json.Unmarshal(resp.Data, &status); err != nil {
				return fmt.Errorf("failed to parse status: %w", err)
			}

			if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
				return printJSON(os.Stdout, status)
			}

			fmt.Println(status.Status)
			if !status.CompareAvailable {
				fmt.Println("Compare mode is not available: only one source is configured.")
			}
			return nil
		},
	}
}

// ResetCmd creates the reset command.
func ResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Start a new explorer session on the next request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ForgetSession(); err != nil {
				return err
			}
			fmt.Println("Session cleared.")
			return nil
		},
	}
}
