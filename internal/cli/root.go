package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/parley-app/parley/internal/ui"
	"github.com/parley-app/parley/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "parley",
	Short:   "Room-based chat with peer-to-peer audio calls",
	Long: `Parley is a command-line chat client. Join a named room on a relay
server to exchange messages with everyone in it, and start one-to-one
audio calls that flow directly between peers over WebRTC - the relay
only carries the negotiation.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
