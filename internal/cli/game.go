package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game action commands",
	}

	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameEndCmd())
	cmd.AddCommand(newGameNextCmd())
	cmd.AddCommand(newGameVoteCmd())
	cmd.AddCommand(newGameAnswerCmd())
	cmd.AddCommand(newGameResolveCmd())

	return cmd
}

func newGameStartCmd() *cobra.Command {
	var gameID, suit string

	cmd := &cobra.Command{
		Use:   "start <code>",
		Short: "Start a game as the room host",
		Long: `Start a game in the room. With no flags a random game is selected.

Pass --game and --suit together to request a specific catalog game.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			req := map[string]string{}
			if gameID != "" {
				if suit == "" {
					return fmt.Errorf("--suit is required when --game is set")
				}
				req["game_id"] = gameID
				req["suit"] = suit
			}

			var result Room

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/start", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameID, "game", "", "Catalog game id (default: random)")
	cmd.Flags().StringVar(&suit, "suit", "", "Game suit (required with --game)")

	return cmd
}

func newGameEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <code>",
		Short: "End the current game as the room host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result GameResults

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/end", code), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameNextCmd() *cobra.Command {
	var gameID, suit string

	cmd := &cobra.Command{
		Use:   "next <code>",
		Short: "Move the room on to another game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			req := map[string]string{}
			if gameID != "" {
				if suit == "" {
					return fmt.Errorf("--suit is required when --game is set")
				}
				req["game_id"] = gameID
				req["suit"] = suit
			}

			var result Room

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/next", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameID, "game", "", "Catalog game id (default: random)")
	cmd.Flags().StringVar(&suit, "suit", "", "Game suit (required with --game)")

	return cmd
}

func newGameVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <code> <target>",
		Short: "Cast a vote in the current round",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			target := args[1]

			req := map[string]string{"target": target}

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/vote", code), req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Vote recorded")
			return nil
		},
	}
}

func newGameAnswerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "answer <code> <answer>",
		Short: "Submit an answer for the current round",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			answer := args[1]

			req := map[string]string{"answer": answer}
			var result AnswerResult

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/answer", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <code>",
		Short: "Resolve the current voting round as the room host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result VoteResult

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/resolve", code), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
