package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for firesweep.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firesweep",
		Short: "Percolation sweep harness for a forest-fire simulation engine",
		Long: `firesweep runs an external forest-fire simulation engine over a grid of
forest sizes and tree densities, collects the average burned-area percentage
of every sample, and charts one curve per forest size.

The engine is an executable that accepts --graphics-off --quiet -d <density>
-c <repeats> -s <size> -b <pattern> and prints a single number on stdout.
Samples the engine fails on are reported and left out of the curves.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
