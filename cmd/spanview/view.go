package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"spanview/internal/ui"
)

// outputMode is how view renders a loaded trace: the interactive
// outline, or the plain-text tree it degrades to without a terminal.
type outputMode uint8

const (
	outputTree outputMode = iota
	outputOutline
)

// resolveOutputMode maps the --ui flag to an output mode. "auto"
// follows whether stdout is attached to a terminal, so piping view's
// output produces the same tree that the tree command prints.
func resolveOutputMode(value string, interactive bool) (outputMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		if interactive {
			return outputOutline, nil
		}
		return outputTree, nil
	case "on":
		return outputOutline, nil
	case "off":
		return outputTree, nil
	default:
		return outputTree, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

var viewCmd = &cobra.Command{
	Use:   "view [flags] trace.ndjson",
	Short: "Open a trace in the interactive outline viewer",
	Long:  `View reconstructs the span tree from an event log and opens an expandable outline with per-span timeline bars`,
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func init() {
	viewCmd.Flags().String("ui", "auto", "interactive mode (auto|on|off)")
	viewCmd.Flags().Bool("expand-all", false, "start with every span expanded")
}

func runView(cmd *cobra.Command, args []string) error {
	path := args[0]

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

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := resolveOutputMode(uiValue, isTerminal(os.Stdout))
	if err != nil {
		return err
	}

	expandAll, err := cmd.Flags().GetBool("expand-all")
	if err != nil {
		return fmt.Errorf("failed to get expand-all flag: %w", err)
	}

	tr, err := loadTrace(path, format)
	if err != nil {
		return err
	}

	if mode == outputTree {
		return writeTreeOutput(cmd.OutOrStdout(), tr, cfg.Viewer.BarWidth, minSpan, false)
	}

	model := ui.NewOutlineModel(filepath.Base(path), tr, ui.Options{
		MinSpan:   minSpan,
		ExpandAll: expandAll || cfg.Viewer.ExpandAll,
	})
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}
