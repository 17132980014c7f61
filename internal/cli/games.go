package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gamehall/gamehall/internal/protocol"
)

func newGamesCmd() *cobra.Command {
	gamesCmd := &cobra.Command{
		Use:   "games",
		Short: "Browse the game catalog",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List published games",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.DoChecked(protocol.Request{Action: "list_games"})
			if err != nil {
				return err
			}
			return printResult(resp)
		},
	}

	infoCmd := &cobra.Command{
		Use:   "info <game-id>",
		Short: "Show a game's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.DoChecked(protocol.Request{Action: "get_game_info", GameID: args[0]})
			if err != nil {
				return err
			}
			return printResult(resp)
		},
	}

	var dest string
	downloadCmd := &cobra.Command{
		Use:   "download <game-id>",
		Short: "Download a game's client package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.DoChecked(protocol.Request{Action: "download_game", GameID: args[0]})
			if err != nil {
				return err
			}

			files, _ := resp["files"].(map[string]any)
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			for name, content := range files {
				text, _ := content.(string)
				if err := os.WriteFile(filepath.Join(dest, filepath.Base(name)), []byte(text), 0o644); err != nil {
					return err
				}
			}
			fmt.Printf("wrote %d files to %s\n", len(files), dest)
			return nil
		},
	}
	downloadCmd.Flags().StringVarP(&dest, "dest", "d", ".", "Destination directory")

	reviewsCmd := &cobra.Command{
		Use:   "reviews <game-id>",
		Short: "List a game's reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.DoChecked(protocol.Request{Action: "get_reviews", GameID: args[0]})
			if err != nil {
				return err
			}
			return printResult(resp)
		},
	}

	var score int
	var comment string
	reviewCmd := &cobra.Command{
		Use:   "review <game-id>",
		Short: "Add a review (players only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectSession()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.DoChecked(protocol.Request{
				Action:  "add_review",
				GameID:  args[0],
				Score:   score,
				Comment: comment,
			})
			if err != nil {
				return err
			}
			return printResult(resp)
		},
	}
	reviewCmd.Flags().IntVar(&score, "score", 5, "Score (1-5)")
	reviewCmd.Flags().StringVar(&comment, "comment", "", "Review text")

	gamesCmd.AddCommand(listCmd, infoCmd, downloadCmd, reviewsCmd, reviewCmd)
	return gamesCmd
}
