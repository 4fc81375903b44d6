package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-gci/logging"
)

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	verbose  bool
	logLevel string
}

// newRootCmd builds the command tree. Logs go to stderr so that stdout only
// carries results.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "gcis",
		Short: "Locate glottal closure instants in voiced speech",
		Long: `gcis finds glottal closure instants (one per pitch period) in the voiced
regions of a speech recording, given a pitch/power contour for it.

Examples:
  gcis find speech.wav --contour speech.f0      # index/power per line
  gcis find speech.wav --contour speech.f0 --json
  gcis regions speech.f0                        # list voiced regions`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(findCmd())
	rootCmd.AddCommand(regionsCmd())

	return rootCmd
}

func setupLogging(cmd *cobra.Command, opts *rootOptions) error {
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	if opts.verbose {
		level = logging.DebugLevel
	}

	logger := logging.NewDefaultLoggerWithWriters(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)

	return nil
}
