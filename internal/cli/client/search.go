package client

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search one randomly chosen source",
		Long:  "Sends the query to one of the configured sources, picked at random, and prints the first page of results.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, "/search", strings.Join(args, " "))
		},
	}
}

// CompareCmd creates the compare command.
func CompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <query>",
		Short: "Compare both sources side by side",
		Long:  "Sends the query to both sources and prints the two result lists in random order without naming their source.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, "/compare", strings.Join(args, " "))
		},
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

func runSubmit(cmd *cobra.Command, path, query string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post(path, queryRequest{Query: query})
	if err != nil {
		return explain(err)
	}
	return showState(cmd, resp.Data)
}

// showState prints a state payload as JSON or text depending on --output.
func showState(cmd *cobra.Command, raw []byte) error {
	st, err := decodeState(raw)
	if err != nil {
		return err
	}

	if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
		return printJSON(os.Stdout, st)
	}
	renderState(os.Stdout, st)
	return nil
}

// explain turns API errors into short messages for the terminal.
func explain(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case 503:
		return fmt.Errorf("search is unavailable: %s", apiErr.Message)
	case 409:
		return fmt.Errorf("%s", apiErr.Message)
	default:
		return err
	}
}
