package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sevoc/internal/client"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var (
	// Global flags
	serverURL string
	timeout   time.Duration
	asJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "sevocctl",
	Short: "Client for the synthetic voice detection service",
	Long: `sevocctl - talk to a running synthetic voice detection server.

The server address defaults to $SEVOC_SERVER or http://localhost:8000.

Examples:
  sevocctl health
  sevocctl status --json
  sevocctl evaluate ./samples/clip.wav
  sevocctl evaluate --filename clip.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultServer := os.Getenv("SEVOC_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8000"
	}
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultServer, "server base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 6*time.Minute, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print the raw JSON response")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(versionCmd)
}

func newClient() *client.Client {
	return client.New(serverURL, timeout)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printField(cmd *cobra.Command, name string, value any) {
	fmt.Fprintf(cmd.OutOrStdout(), "%-22s %v\n", name+":", value)
}
