// Package cli provides the command-line interface for logstat.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logstat/internal/cli/commands"
	"github.com/ccollicutt/logstat/pkg/locator"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return run(NewRootCommand(), os.Args[1:], os.Stderr)
}

// run executes cmd with args and maps its error to an exit code.
func run(rootCmd *cobra.Command, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetErr(stderr)

	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, locator.ErrNotFound):
		// Nothing in the file matches the window; not a failure.
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 0
	case commands.IsUsageError(err):
		_, _ = fmt.Fprintf(stderr, "Error: %v\n\n%s", err, cmd.UsageString())
		return 2
	default:
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	opts := &commands.ScanOptions{}

	rootCmd := &cobra.Command{
		Use:   "logstat",
		Short: "Print or count the log lines of a time window",
		Long: `logstat finds a time window in a large, chronologically ordered log file
without reading the whole file, then either prints the lines of the window or
counts the HTTP requests in it.

The start of the window is located by binary search over byte offsets, so the
cost of reaching it does not depend on how far into the file it is.

Examples:
  logstat -p couch.log -b 2019-03-21T10:00:00 -e 2019-03-21T10:05:00
  logstat -p couch.log -b 2019-03-21T10:00:00 -e 2019-03-21T11:00:00 -g -n -l 10
  logstat -p couch.log -b 2019-03-21T10:00:00 -e 2019-03-21T11:00:00 -g --split-on 1 -o table
  logstat -c couch.yaml --log-level debug
  logstat diagnose couch.yaml

Exit codes:
  0 - Success, or the start time does not occur in the file
  2 - Usage, file or I/O error`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunScan(cmd, opts)
		},
	}

	commands.BindScanFlags(rootCmd, opts)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &commands.UsageError{Err: err}
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
