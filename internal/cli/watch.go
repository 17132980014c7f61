package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stay connected and print pushed events",
		Long: `watch attaches the session to a live connection and prints every
room_update and game_over event the lobby pushes, until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectSession()
			if err != nil {
				return err
			}
			defer client.Close()

			for {
				event, err := client.NextEvent()
				if err != nil {
					return err
				}
				out, err := json.Marshal(event)
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			}
		},
	}
}
