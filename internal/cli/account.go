package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamehall/gamehall/internal/protocol"
)

func newAccountCmd() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account and session operations",
	}

	var username, password string

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create a player account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.DoChecked(protocol.Request{
				Action:   "register",
				Username: username,
				Password: password,
			})
			if err != nil {
				return err
			}
			return printResult(resp)
		},
	}
	registerCmd.Flags().StringVarP(&username, "user", "u", "", "Username")
	registerCmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	_ = registerCmd.MarkFlagRequired("user")
	_ = registerCmd.MarkFlagRequired("password")

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.DoChecked(protocol.Request{
				Action:   "login",
				Username: username,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("token: %v\n", resp["token"])
			return nil
		},
	}
	loginCmd.Flags().StringVarP(&username, "user", "u", "", "Username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	_ = loginCmd.MarkFlagRequired("user")
	_ = loginCmd.MarkFlagRequired("password")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "End the session, invalidating its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectSession()
			if err != nil {
				return err
			}
			defer client.Close()

			if _, err := client.DoChecked(protocol.Request{Action: "logout"}); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}

	accountCmd.AddCommand(registerCmd, loginCmd, logoutCmd)
	return accountCmd
}
