package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build metadata for the spanview CLI.
// Short, GitCommit, and BuildDate can be overridden via -ldflags.

var (
	// Short is the plain semantic version, used wherever ANSI escapes
	// would be wrong (JSON output, logs).
	Short = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""

	segmentColors = []*color.Color{
		color.New(color.FgCyan, color.Bold),
		color.New(color.FgMagenta, color.Bold),
		color.New(color.FgWhite, color.Bold),
	}
)

// Pretty returns Short with each dotted segment colorized for
// terminal display. Any pre-release suffix stays on the last segment.
func Pretty() string {
	segments := strings.SplitN(Short, ".", len(segmentColors))
	out := make([]string, 0, len(segments))
	for i, seg := range segments {
		out = append(out, segmentColors[i%len(segmentColors)].Sprint(seg))
	}
	return strings.Join(out, ".")
}
