package inkline

import (
	"github.com/charmbracelet/x/ansi"
)

// VisibleWidth returns the terminal display width of a string, ignoring
// ANSI escape sequences and accounting for wide characters.
func VisibleWidth(s string) int {
	return ansi.StringWidth(s)
}

// Truncate truncates s to at most maxWidth visible columns, appending tail
// (e.g. "…") if truncation occurred. The tail occupies the final visible
// cells, so the result never exceeds maxWidth.
func Truncate(s string, maxWidth int, tail string) string {
	return ansi.Truncate(s, maxWidth, tail)
}

// ellipsis marks a horizontally clipped line. It replaces the final
// visible cell so clipped lines still fit exactly within the viewport.
const ellipsis = "…"

// segmentReset resets all SGR attributes and cancels any active hyperlink.
const segmentReset = "\x1b[0m\x1b]8;;\x07"
