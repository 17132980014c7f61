package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamehall/gamehall/internal/protocol"
)

func newRoomsCmd() *cobra.Command {
	roomsCmd := &cobra.Command{
		Use:   "rooms",
		Short: "Room operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.DoChecked(protocol.Request{Action: "list_rooms"})
			if err != nil {
				return err
			}
			return printResult(resp)
		},
	}

	infoCmd := &cobra.Command{
		Use:   "info <room-id>",
		Short: "Show a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.DoChecked(protocol.Request{Action: "get_room_info", RoomID: args[0]})
			if err != nil {
				return err
			}
			return printResult(resp)
		},
	}

	var name string
	createCmd := &cobra.Command{
		Use:   "create <game-id>",
		Short: "Create a room for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectSession()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.DoChecked(protocol.Request{
				Action:   "create_room",
				GameID:   args[0],
				RoomName: name,
			})
			if err != nil {
				return err
			}
			fmt.Printf("room_id: %v\n", resp["room_id"])
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Room name")

	joinCmd := &cobra.Command{
		Use:   "join <room-id>",
		Short: "Join a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectSession()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.DoChecked(protocol.Request{Action: "join_room", RoomID: args[0]})
			if err != nil {
				return err
			}
			return printResult(resp)
		},
	}

	leaveCmd := &cobra.Command{
		Use:   "leave <room-id>",
		Short: "Leave a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectSession()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.DoChecked(protocol.Request{Action: "leave_room", RoomID: args[0]})
			if err != nil {
				return err
			}
			return printResult(resp)
		},
	}

	startCmd := &cobra.Command{
		Use:   "start <room-id>",
		Short: "Start the room's game (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectSession()
			if err != nil {
				return err
			}
			defer client.Close()

			if _, err := client.DoChecked(protocol.Request{Action: "start_game", RoomID: args[0]}); err != nil {
				return err
			}
			fmt.Println("started")
			return nil
		},
	}

	roomsCmd.AddCommand(listCmd, infoCmd, createCmd, joinCmd, leaveCmd, startCmd)
	return roomsCmd
}
