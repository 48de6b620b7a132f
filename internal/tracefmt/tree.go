package tracefmt

import (
	"fmt"
	"io"
	"strings"

	"spanview/internal/tracebuild"
)

// TreeOpts controls plain-text outline rendering.
type TreeOpts struct {
	BarWidth int  // bar cells; <= 0 disables bars
	MinSpan  int  // minimum visible span cells (default 1)
	Attrs    bool // print attribute lines under each span
}

// Label returns the presentation name of a span: the last segment of
// its colon-separated hierarchical name. Placeholder spans, which were
// never observed directly, render as "(unknown)".
func Label(s *tracebuild.Span) string {
	if s.Placeholder || s.Name == "" {
		return "(unknown)"
	}
	if i := strings.LastIndexByte(s.Name, ':'); i >= 0 {
		return s.Name[i+1:]
	}
	return s.Name
}

// WriteTree renders the whole trace as an indented outline, one line
// per span, with an optional timeline bar scaled to the trace window.
func WriteTree(w io.Writer, tr *tracebuild.Trace, opts TreeOpts) error {
	if opts.MinSpan < 1 {
		opts.MinSpan = 1
	}

	// First pass to size the label column.
	labelWidth := 0
	tr.Walk(func(s *tracebuild.Span, depth int) {
		if n := 2*depth + len(Label(s)); n > labelWidth {
			labelWidth = n
		}
	})

	var err error
	tr.Walk(func(s *tracebuild.Span, depth int) {
		if err != nil {
			return
		}
		err = writeSpanLine(w, tr, s, depth, labelWidth, opts)
	})
	return err
}

func writeSpanLine(w io.Writer, tr *tracebuild.Trace, s *tracebuild.Span, depth, labelWidth int, opts TreeOpts) error {
	indent := strings.Repeat("  ", depth)
	label := indent + Label(s)

	line := fmt.Sprintf("%-*s", labelWidth, label)

	if d, ok := tr.SpanDuration(s); ok {
		line += fmt.Sprintf("  %9s", formatMillis(d))
	}

	if opts.BarWidth > 0 {
		left, right := tr.Extent(s)
		line += "  |" + RenderBar(left, right, opts.BarWidth, opts.MinSpan, '█', ' ') + "|"
	}

	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}

	if opts.Attrs && len(s.Attributes) > 0 {
		for _, k := range sortedKeys(s.Attributes) {
			if _, err := fmt.Fprintf(w, "%s    %s: %s\n", indent, k, s.Attributes[k]); err != nil {
				return err
			}
		}
	}
	return nil
}
