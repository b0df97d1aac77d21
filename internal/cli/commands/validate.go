package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logstat/pkg/config"
	"github.com/ccollicutt/logstat/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <profile>",
		Short: "Validate a profile",
		Long: `Validate a logstat YAML profile without scanning.

Checks:
  - YAML syntax
  - Required fields (path, begin, end)
  - Time window syntax and ordering
  - Log format and output format names
  - Log file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	opts, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := config.Validate(opts); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if _, err := parser.Lookup(opts.Format); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nProfile valid!\n")
	fmt.Fprintf(w, "  Log file:  %s\n", opts.FilePath)
	fmt.Fprintf(w, "  Window:    %s .. %s (%s)\n", opts.Start, opts.End, opts.TimeLocation())
	fmt.Fprintf(w, "  Format:    %s\n", opts.Format)
	if opts.Group {
		fmt.Fprintf(w, "  Grouping:  %s output", opts.Output)
		if opts.SplitOn > 0 {
			fmt.Fprintf(w, ", path segment %d", opts.SplitOn)
		}
		if opts.Limit > 0 {
			fmt.Fprintf(w, ", counts > %d", opts.Limit)
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintln(w, "  Grouping:  off (lines are printed)")
	}

	// Check if the log file exists (warning only)
	if _, err := os.Stat(opts.FilePath); err != nil {
		fmt.Fprintf(w, "\nWarning: log file is not readable: %v\n", err)
	}

	return nil
}
