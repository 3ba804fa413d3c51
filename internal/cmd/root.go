package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for stemfind
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stemfind [flags] [--] <search_term>",
		Short: "Find files whose name stem contains a term",
		Long: `stemfind walks the current working directory recursively and prints
the full path of every regular file whose name, with its extension removed,
contains the search term.

Subdirectories are listed in parallel by default. Directories that cannot
be read are reported on stderr and skipped.

A search term that begins with "-" must follow "--":

  stemfind -- -draft`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		RunE:         runSearch,
	}

	cmd.Flags().String("config", "", "Path to config file (default: $HOME/.stemfind/config.yaml)")
	cmd.Flags().Bool("sequential", false, "Walk directories one at a time in depth-first order")
	cmd.Flags().Int("workers", 0, "Maximum concurrent directory walkers (0 = number of CPUs)")
	cmd.Flags().String("log-level", "", "Diagnostic verbosity: trace, debug, info, warn, error")
	cmd.Flags().Bool("verbose", false, "Shorthand for --log-level debug")
	cmd.Flags().String("log-dir", "", "Write a per-run log file to this directory")
	cmd.Flags().Bool("no-follow-symlinks", false, "Skip symbolic links instead of resolving them")
	cmd.Flags().Bool("no-color", false, "Disable match highlighting")
	cmd.Flags().Bool("summary", false, "Print run counters to stderr when the search ends")
	cmd.Flags().String("report", "", "Write a YAML run report to this path")
	cmd.Flags().String("metrics-file", "", "Write Prometheus textfile metrics to this path")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w (use \"--\" before a search term that starts with \"-\")", err)
	})

	return cmd
}

// printUsage writes the short usage line shown for a wrong argument count.
func printUsage(cmd *cobra.Command) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Usage: %s <search_term>\n", filepath.Base(os.Args[0]))
}
