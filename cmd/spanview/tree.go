package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"spanview/internal/tracebuild"
	"spanview/internal/tracefmt"
)

var treeCmd = &cobra.Command{
	Use:   "tree [flags] trace.ndjson",
	Short: "Print the reconstructed span tree as plain text",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

func init() {
	treeCmd.Flags().Int("bar-width", 0, "timeline bar width in cells (0 = use viewer.toml)")
	treeCmd.Flags().Bool("no-bars", false, "omit timeline bars")
	treeCmd.Flags().Bool("attrs", false, "print span attributes")
}

func runTree(cmd *cobra.Command, args []string) error {
	format, err := inputFormat(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadViewerConfig(".")
	if err != nil {
		return err
	}
	minSpan, err := resolveMinSpan(cmd, cfg)
	if err != nil {
		return err
	}

	barWidth, err := cmd.Flags().GetInt("bar-width")
	if err != nil {
		return fmt.Errorf("failed to get bar-width flag: %w", err)
	}
	if barWidth <= 0 {
		barWidth = cfg.Viewer.BarWidth
	}
	noBars, err := cmd.Flags().GetBool("no-bars")
	if err != nil {
		return fmt.Errorf("failed to get no-bars flag: %w", err)
	}
	if noBars {
		barWidth = 0
	}
	attrs, err := cmd.Flags().GetBool("attrs")
	if err != nil {
		return fmt.Errorf("failed to get attrs flag: %w", err)
	}

	tr, err := loadTrace(args[0], format)
	if err != nil {
		return err
	}
	return writeTreeOutput(cmd.OutOrStdout(), tr, barWidth, minSpan, attrs)
}

func writeTreeOutput(w io.Writer, tr *tracebuild.Trace, barWidth, minSpan int, attrs bool) error {
	return tracefmt.WriteTree(w, tr, tracefmt.TreeOpts{
		BarWidth: barWidth,
		MinSpan:  minSpan,
		Attrs:    attrs,
	})
}
