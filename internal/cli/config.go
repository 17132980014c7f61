package cli

import "os"

// Config holds hallctl settings, sourced from flags and the environment
type Config struct {
	// ServerAddr is the lobby's TCP address
	ServerAddr string

	// Token is a session token from a previous login, used to reconnect
	Token string

	// Output selects the print format: text or json
	Output string
}

// DefaultConfig returns hallctl defaults, honoring the environment
func DefaultConfig() *Config {
	cfg := &Config{
		ServerAddr: "127.0.0.1:10192",
		Output:     "text",
	}
	if addr := os.Getenv("HALLCTL_SERVER"); addr != "" {
		cfg.ServerAddr = addr
	}
	if token := os.Getenv("HALLCTL_TOKEN"); token != "" {
		cfg.Token = token
	}
	return cfg
}
