// Package cli contains the feedtrans commands.
package cli

import (
	"github.com/spf13/cobra"

	"feedtrans/internal/config"
)

type globalOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand builds the feedtrans command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Translate an RSS/Atom feed with an LLM backend",
		Long: `feedtrans fetches a source feed, translates every new entry through an
OpenAI, Anthropic or OpenAI-compatible backend and publishes the result as an
RSS 2.0 document.

Example usage:
  feedtrans run                     # one pass, suitable for cron
  feedtrans serve                   # run on an interval and serve /feed.xml
  feedtrans tokens                  # print the cumulative token count`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newRunCommand(opts),
		newServeCommand(opts),
		newTokensCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}
