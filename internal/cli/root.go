package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gamehall/gamehall/internal/protocol"
)

var cfg *Config

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "hallctl",
		Short: "CLI client for the game hall lobby",
		Long: `hallctl speaks the lobby's line-delimited JSON protocol.

Authenticated commands need either --token (from a previous login) or
--user/--password. Tokens stay valid across disconnects, so a login's token
can be reused until logout.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerAddr, "server", cfg.ServerAddr, "Lobby address (env: HALLCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: HALLCTL_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newRoomsCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// connect dials the lobby without authenticating
func connect() (*Client, error) {
	return Dial(cfg.ServerAddr)
}

// connectSession dials the lobby and attaches the session from --token
func connectSession() (*Client, error) {
	client, err := connect()
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		client.Close()
		return nil, fmt.Errorf("a session token is required; login first and pass --token")
	}
	if _, err := client.DoChecked(protocol.Request{Action: "reconnect", Token: cfg.Token}); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// printResult renders a reply according to the output format
func printResult(resp map[string]any) error {
	if cfg.Output == "json" {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	for k, v := range resp {
		if k == "status" {
			continue
		}
		fmt.Printf("%s: %v\n", k, v)
	}
	return nil
}
