package tracefmt

import "strings"

// SplitBar converts a normalized span extent into [pre, span, post]
// cell counts for a bar of the given width. A span whose computed width
// falls below minSpan cells is clamped up to minSpan rather than
// rounding to zero, so zero-duration spans remain visible.
func SplitBar(left, right float64, width, minSpan int) (pre, span, post int) {
	if width <= 0 {
		return 0, 0, 0
	}
	if minSpan < 1 {
		minSpan = 1
	}
	if minSpan > width {
		minSpan = width
	}

	pre = int(left * float64(width))
	span = int((right - left) * float64(width))
	if span < minSpan {
		span = minSpan
	}
	if pre+span > width {
		pre = width - span
	}
	post = width - pre - span
	return pre, span, post
}

// RenderBar draws a span bar using the given glyphs.
func RenderBar(left, right float64, width, minSpan int, fill, blank rune) string {
	pre, span, post := SplitBar(left, right, width, minSpan)
	var sb strings.Builder
	sb.Grow(width)
	sb.WriteString(strings.Repeat(string(blank), pre))
	sb.WriteString(strings.Repeat(string(fill), span))
	sb.WriteString(strings.Repeat(string(blank), post))
	return sb.String()
}
