// Package util provides shared helpers for terminal output.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks text cut short by Truncate.
const Ellipsis = "…"

// Truncate shortens s to at most width terminal columns, ending it with
// Ellipsis when anything was cut. Escape sequences are preserved and wide
// characters count by their display width, so styled text can be
// truncated after rendering. Widths below 2 leave no room for the
// ellipsis and cut hard.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	if width < 2 {
		return ansi.Truncate(s, width, "")
	}
	return ansi.Truncate(s, width, Ellipsis)
}

// PadRight truncates s to width columns and pads it with spaces to exactly
// width, for fixed-width table cells.
func PadRight(s string, width int) string {
	s = Truncate(s, width)
	if pad := width - lipgloss.Width(s); pad > 0 {
		return s + spaces(pad)
	}
	return s
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
