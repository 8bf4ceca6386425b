package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newLobbiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lobbies",
		Short: "List games waiting for a second player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result LobbyList
			if err := client.Get(cmd.Context(), "/api/v1/lobbies", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newMatchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "matches [game-id]",
		Short: "List live matches, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output, cmd.OutOrStdout())

			if len(args) == 1 {
				var result Match
				if err := client.Get(cmd.Context(), "/api/v1/matches/"+url.PathEscape(args[0]), &result); err != nil {
					return err
				}
				out.Print(result)
				return nil
			}

			var result MatchList
			if err := client.Get(cmd.Context(), "/api/v1/matches", &result); err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}
}
