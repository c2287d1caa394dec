// Goe-ctl is a command line utility for go-eCharger EV wallbox devices.
//
// It talks to chargers over the local HTTP API v2: read status, change
// charging settings, watch a live dashboard, and manage a local registry of
// charger nicknames. The API must be enabled in the go-e app under
// "Advanced Settings" before the device answers.
//
// Usage:
//
//	goe-ctl [command] [flags]
//
// See 'goe-ctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/goe/internal/logging"
	"github.com/muurk/goe/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "goe-ctl",
	Short: "go-eCharger Control Utility",
	Long: `A command line utility for go-eCharger EV wallbox devices.

Reads status and changes charging settings over the charger's local
HTTP API v2. The API must be enabled in the go-e app first.

Chargers are addressed by hostname or IP address, or by a nickname
registered with 'goe-ctl device add'.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("goe-ctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
