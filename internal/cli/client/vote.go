package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

type voteRequest struct {
	Slot string `json:"slot"`
}

// VoteCmd creates the vote command.
func VoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "vote <left|right>",
		Short:     "Vote for the better list of the last comparison",
		Long:      "Records which side of the last comparison gave better results. Only the first vote per comparison counts.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"left", "right"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != "left" && args[0] != "right" {
				return fmt.Errorf("slot must be left or right, got %q", args[0])
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Post("/vote", voteRequest{Slot: args[0]})
			if err != nil {
				return explain(err)
			}
			return showState(cmd, resp.Data)
		},
	}
}
