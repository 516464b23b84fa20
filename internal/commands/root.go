package commands

import (
	"github.com/spf13/cobra"

	"github.com/bix-dev/bixdash/internal/buildinfo"
	"github.com/bix-dev/bixdash/internal/clock"
	"github.com/bix-dev/bixdash/internal/config"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	clock      clock.Clock
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(clock.Real())
}

func newRootCommand(clk clock.Clock) *cobra.Command {
	opts := &rootOptions{clock: clk}

	rootCmd := &cobra.Command{
		Use:     "bixdash",
		Short:   "Financial dashboard for the terminal",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")

	rootCmd.AddCommand(
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newRouteCommand(opts),
		newDashboardCommand(opts),
		newTransactionsCommand(opts),
		newFiltersCommand(opts),
		newCacheCommand(opts),
		newActivityCommand(opts),
		newServeCommand(opts),
		newInitCommand(opts),
	)

	return rootCmd
}
