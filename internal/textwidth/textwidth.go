package textwidth

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/width"
)

// StringWidth returns the widest line of s in terminal cells. Escape
// sequences are ignored and wide runes count as two cells.
func StringWidth(s string) int {
	if s == "" {
		return 0
	}
	maxWidth := 0
	for _, line := range strings.Split(s, "\n") {
		if w := ansi.StringWidth(line); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// PadRight appends ASCII spaces until the rendered width matches target.
func PadRight(s string, width int) string {
	diff := width - StringWidth(s)
	if diff <= 0 {
		return s
	}
	return s + strings.Repeat(" ", diff)
}

// Truncate cuts s to at most w cells, ending in "…" when shortened.
func Truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if StringWidth(s) <= w {
		return s
	}
	return ansi.Truncate(s, w, "…")
}

// Fit truncates or pads s to exactly w cells.
func Fit(s string, w int) string {
	return PadRight(Truncate(s, w), w)
}

// Narrow folds fullwidth forms to their ASCII counterparts, so titles from
// feeds that use fullwidth digits line up in the grid.
func Narrow(s string) string {
	return width.Narrow.String(s)
}
