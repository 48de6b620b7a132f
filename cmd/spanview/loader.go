package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spanview/internal/tracebuild"
	"spanview/internal/traceevent"
)

// inputFormat resolves the --format persistent flag.
func inputFormat(cmd *cobra.Command) (traceevent.Format, error) {
	value, err := cmd.Root().PersistentFlags().GetString("format")
	if err != nil {
		return traceevent.FormatAuto, fmt.Errorf("failed to get format flag: %w", err)
	}
	return traceevent.ParseFormat(value)
}

// loadTrace decodes an event log and reconstructs the finalized trace.
func loadTrace(path string, format traceevent.Format) (*tracebuild.Trace, error) {
	events, err := traceevent.ReadFile(path, format)
	if err != nil {
		return nil, err
	}

	b := tracebuild.NewBuilder()
	for _, ev := range events {
		if err := b.Add(ev); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	tr, err := b.Finalize()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

// resolveMinSpan applies flag-over-config precedence for the minimum
// visible span width.
func resolveMinSpan(cmd *cobra.Command, cfg viewerConfig) (int, error) {
	minSpan, err := cmd.Root().PersistentFlags().GetInt("min-span-width")
	if err != nil {
		return 0, fmt.Errorf("failed to get min-span-width flag: %w", err)
	}
	if minSpan < 1 {
		minSpan = cfg.Viewer.MinSpanWidth
	}
	return minSpan, nil
}
