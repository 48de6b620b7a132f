package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"spanview/internal/tracebuild"
	"spanview/internal/tracefmt"
	"spanview/internal/traceevent"
)

var exportCmd = &cobra.Command{
	Use:   "export [flags] trace.ndjson...",
	Short: "Convert event logs to other trace formats",
	Long:  `Export reconstructs each trace and writes it out as a Chrome trace viewer document, a normalized NDJSON event log, or a binary msgpack event log`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("to", "chrome", "output format (chrome|ndjson|msgpack)")
	exportCmd.Flags().StringP("out-dir", "o", ".", "directory for converted files")
	exportCmd.Flags().Int("jobs", 0, "maximum parallel conversions (0 = number of CPUs)")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := inputFormat(cmd)
	if err != nil {
		return err
	}

	to, err := cmd.Flags().GetString("to")
	if err != nil {
		return fmt.Errorf("failed to get to flag: %w", err)
	}
	write, ext, err := exportWriter(to)
	if err != nil {
		return err
	}

	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return fmt.Errorf("failed to get out-dir flag: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	// Inputs are independent closed traces, so conversions fan out.
	g, _ := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(jobs, len(args)))
	for _, path := range args {
		path := path
		g.Go(func() error {
			return exportOne(path, format, outDir, ext, write)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d trace(s) to %s\n", len(args), outDir)
	return nil
}

func exportOne(path string, format traceevent.Format, outDir, ext string, write func(io.Writer, *tracebuild.Trace) error) error {
	tr, err := loadTrace(path, format)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outDir, base+ext)

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	if err := write(f, tr); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", outPath, err)
	}
	return nil
}

func exportWriter(to string) (func(io.Writer, *tracebuild.Trace) error, string, error) {
	switch strings.ToLower(strings.TrimSpace(to)) {
	case "chrome":
		return tracefmt.WriteChrome, ".chrome.json", nil
	case "ndjson":
		return tracefmt.WriteNDJSON, ".ndjson", nil
	case "msgpack":
		return tracefmt.WriteMsgpack, ".mp", nil
	default:
		return nil, "", fmt.Errorf("unknown export format: %q (expected: chrome|ndjson|msgpack)", to)
	}
}
