package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "In-game commands",
	}

	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameStateCmd())
	cmd.AddCommand(newGameGuessCmd())
	cmd.AddCommand(newGameSurrenderCmd())
	cmd.AddCommand(newGameSkipCmd())

	return cmd
}

func newGameStartCmd() *cobra.Command {
	var mode string
	var rounds, timeBank int

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a solo or vs-bot game",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode != "solo" && mode != "vs_bot" {
				return fmt.Errorf("--mode must be solo or vs_bot")
			}

			req := map[string]any{
				"mode": mode,
				"settings": map[string]any{
					"rounds":         rounds,
					"time_bank_secs": timeBank,
				},
			}
			var result StartGameResult

			if err := client.Post("/api/v1/games/start", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "solo", "Game mode: solo or vs_bot")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "Number of rounds (0 for server default)")
	cmd.Flags().IntVar(&timeBank, "time-bank", 0, "Per-round time bank in seconds (0 for server default)")

	return cmd
}

func newGameStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <room>",
		Short: "Show the current game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState

			if err := client.Get("/api/v1/games/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameGuessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guess <room> <surname>",
		Short: "Name a player from the current club's roster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"surname": args[1]}
			var result GuessResult

			if err := client.Post("/api/v1/games/"+args[0]+"/guess", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameSurrenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "surrender <room>",
		Short: "Give up the current round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/games/"+args[0]+"/surrender", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Round surrendered")
			return nil
		},
	}
}

func newGameSkipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skip <room>",
		Short: "Vote to skip the pause between rounds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/games/"+args[0]+"/skip-pause", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Skip vote recorded")
			return nil
		},
	}
}
