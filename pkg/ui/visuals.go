package ui

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// RenderSparkline creates a textual bar of val (0.0 - 1.0) in width cells.
func RenderSparkline(val float64, width int) string {
	if width <= 0 {
		return ""
	}

	chars := []string{" ", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

	if math.IsNaN(val) || val < 0 {
		val = 0
	}
	if val > 1 {
		val = 1
	}

	full := int(val * float64(width))
	remainder := val*float64(width) - float64(full)

	var sb strings.Builder
	sb.WriteString(strings.Repeat("█", full))

	if full < width {
		idx := int(remainder * float64(len(chars)))
		// Ensure non-zero values are visible
		if idx == 0 && remainder > 0 {
			idx = 1
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		sb.WriteString(chars[idx])
	}

	if pad := width - full - 1; pad > 0 {
		sb.WriteString(strings.Repeat(" ", pad))
	}
	return sb.String()
}

// FormatValue renders a counter value with thousands separators.
func FormatValue(v int) string {
	return humanize.Comma(int64(v))
}

// Truncate shortens s to at most width display cells, ending in "…" when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
