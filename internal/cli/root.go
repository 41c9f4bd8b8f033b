// Package cli implements the shotctl command line.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath  string
	StoragePath string
	Format      string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for shotctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shotctl",
		Short: "Analyze and simulate multi-cushion billiard shots",
		Long: `shotctl runs the shot analysis engine from the command line.

State (model weights and pattern memory) is read from and written back to
the configured SQLite store, so successive runs keep learning.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitUsage, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.StoragePath, "storage", "", "SQLite state file (overrides storage_path)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewPredictCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewAnglesCommand(opts))
	cmd.AddCommand(NewReflectionsCommand(opts))
	cmd.AddCommand(NewTrainCommand(opts))
	cmd.AddCommand(NewLoadgenCommand(opts))

	return cmd
}
