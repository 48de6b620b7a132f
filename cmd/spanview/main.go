package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"spanview/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "spanview",
	Short: "Trace outline viewer for span event logs",
	Long:  `spanview reconstructs a span tree from a lifecycle event log and renders it as an expandable timeline outline`,
}

func main() {
	rootCmd.Version = version.Short

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("format", "auto", "input event log format (auto|ndjson|msgpack)")
	rootCmd.PersistentFlags().Int("min-span-width", 0, "minimum visible span width in bar cells (overrides viewer.toml)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether a file is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
