// ABOUTME: Entry point for the swavik HR assistant terminal client
// ABOUTME: Builds the cobra command tree and runs it with signal-aware context

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var version = "dev"

const banner = `
  ___ __      ____ ___   _(_) | __
 / __|\ \ /\ / / _' \ \ / / | |/ /
 \__ \ \ V  V / (_| |\ V /| |   <
 |___/  \_/\_/ \__,_| \_/ |_|_|\_\
`

// rootFlags holds flags shared by every command.
type rootFlags struct {
	configPath string
	serverURL  string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "swavik",
		Short: "Terminal client for the Swavik HR assistant",
		Long: `swavik talks to the Swavik HR answer backend from the terminal.

Sign up or log in once, then ask questions in an interactive chat. Conversations
are kept locally and can be listed, resumed, deleted, or exported.

Examples:
  # Create an account and sign in
  swavik signup priya
  swavik login priya

  # Start chatting
  swavik chat

  # Ask a single question
  swavik chat "How many leave days do I get?"

  # Manage the indexed documents
  swavik files list
  swavik files upload holidays.csv`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/swavik/config.yaml)")
	root.PersistentFlags().StringVar(&flags.serverURL, "server", "", "backend URL, overrides backend.base_url")

	root.AddCommand(
		newInitCmd(),
		newSignupCmd(flags),
		newLoginCmd(flags),
		newLogoutCmd(flags),
		newWhoamiCmd(flags),
		newChatCmd(flags),
		newStatsCmd(flags),
		newAnalyticsCmd(flags),
		newFilesCmd(flags),
		newConversationsCmd(flags),
		newExportCmd(flags),
		newHealthCmd(flags),
	)

	return root
}
