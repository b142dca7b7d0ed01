package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "oteda",
	Short: "OpenTraceEDA - Circuit design and netlist tools",
	Long: `OpenTraceEDA (oteda) provides tools for working with circuit designs
and KiCad netlist files:
  - Netlist inspection and statistics
  - Canonical re-export for diffing generated netlists
  - Graph round-trip validation

Examples:
  oteda net info board.net       # Show netlist summary
  oteda net canon board.net      # Print canonical form
  oteda net roundtrip board.net  # Validate net <-> graph round trip`,
	Version: "0.9.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
