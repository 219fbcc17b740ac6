package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Flags shared by every subcommand.
var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Guestlist server - event registration and waitlist backend",
	Long: `Guestlist server manages registrations for limited-capacity events.

The server supports:
- User and event management over a REST API
- Capacity-bounded registration with per-event waitlists
- Automatic promotion of the longest-waiting entry when a slot frees
- Postgres or in-memory storage backends`,
	// Bare invocation serves.
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute runs the CLI. main.main calls it exactly once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (defaults to environment variables)")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, or error")
	flags.StringVar(&logFormat, "log-format", "", "log format: json or console")

	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd, healthcheckCmd)
}
