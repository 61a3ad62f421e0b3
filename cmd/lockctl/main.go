// Command lockctl drives a lockfleet server from the terminal.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	apiURL  string
	token   string
	apiKey  string
	output  string
	timeout time.Duration
)

var client *apiClient

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lockctl",
		Short:         "Lockfleet CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if apiURL == "" {
				apiURL = os.Getenv("LOCKCTL_API_URL")
			}
			if token == "" {
				token = os.Getenv("LOCKCTL_TOKEN")
			}
			if apiKey == "" {
				apiKey = os.Getenv("LOCKCTL_API_KEY")
			}
			client = &apiClient{
				baseURL:    apiURL,
				token:      token,
				apiKey:     apiKey,
				httpClient: &http.Client{Timeout: timeout},
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Server URL (or set LOCKCTL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Operator bearer token (or set LOCKCTL_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Machine API key (or set LOCKCTL_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&output, "output", "text", "Output format: text, json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(devicesCmd())
	rootCmd.AddCommand(deviceCmd())
	rootCmd.AddCommand(provisionCmd())
	rootCmd.AddCommand(passwordsCmd())
	rootCmd.AddCommand(unlockCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(hashCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lockctl version %s\n", version)
		},
	}
}
