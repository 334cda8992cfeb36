package cli

import (
	"github.com/spf13/cobra"
)

func newLobbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lobby",
		Short: "Open-game lobby commands",
	}

	cmd.AddCommand(newLobbyListCmd())
	cmd.AddCommand(newLobbyOpenCmd())
	cmd.AddCommand(newLobbyCancelCmd())
	cmd.AddCommand(newLobbyJoinCmd())

	return cmd
}

func newLobbyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open games waiting for an opponent",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []OpenGameListing

			if err := client.Get("/api/v1/games/open", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newLobbyOpenCmd() *cobra.Command {
	var rounds, timeBank int

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Advertise a head-to-head game",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"settings": map[string]any{
					"rounds":         rounds,
					"time_bank_secs": timeBank,
				},
			}
			var result OpenGameListing

			if err := client.Post("/api/v1/games/open", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print([]OpenGameListing{result})
			return nil
		},
	}

	cmd.Flags().IntVar(&rounds, "rounds", 0, "Number of rounds (0 for server default)")
	cmd.Flags().IntVar(&timeBank, "time-bank", 0, "Per-round time bank in seconds (0 for server default)")

	return cmd
}

func newLobbyCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Withdraw your open game",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/games/open"); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Open game withdrawn")
			return nil
		},
	}
}

func newLobbyJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <creator>",
		Short: "Join another player's open game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StartGameResult

			if err := client.Post("/api/v1/games/open/"+args[0]+"/join", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
