package client

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// PageCmd creates the page command.
func PageCmd() *cobra.Command {
	var side string

	cmd := &cobra.Command{
		Use:   "page <n>",
		Short: "Show another page of the current results",
		Long:  "Moves to page n of the current results. In a comparison --side selects the list to move.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("page must be a positive number, got %q", args[0])
			}

			query, err := pageQuery(side, n)
			if err != nil {
				return err
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/state?" + query)
			if err != nil {
				return explain(err)
			}
			return showState(cmd, resp.Data)
		},
	}

	cmd.Flags().StringVarP(&side, "side", "s", "", "List to page in a comparison (left or right)")

	return cmd
}

func pageQuery(side string, n int) (string, error) {
	values := url.Values{}
	switch side {
	case "":
		values.Set("page", strconv.Itoa(n))
	case "left":
		values.Set("left_page", strconv.Itoa(n))
	case "right":
		values.Set("right_page", strconv.Itoa(n))
	default:
		return "", fmt.Errorf("side must be left or right, got %q", side)
	}
	return values.Encode(), nil
}

// ShowCmd creates the show command.
func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/state")
			if err != nil {
				return explain(err)
			}
			return showState(cmd, resp.Data)
		},
	}
}
