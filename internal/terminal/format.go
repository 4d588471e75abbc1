package terminal

import (
	"fmt"
	"strings"
	"time"
)

// MaxReportWidth caps report line length on wide terminals.
const MaxReportWidth = 90

// FormatDuration renders a duration as "5.0s" under a minute and
// "2m 45.5s" above it.
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	return fmt.Sprintf("%dm %.1fs", mins, secs-float64(mins*60))
}

// Ruler returns a dimmed horizontal rule of the given width.
func Ruler(width int, char string) string {
	return fmt.Sprintf("%s%s%s", Color(Dim), strings.Repeat(char, width), Color(Reset))
}

// WrapText greedily wraps text at word boundaries, prefixing every line
// with indent. Words longer than the width stay whole; a width at or
// under the indent length disables wrapping.
func WrapText(text string, width int, indent string) string {
	if width <= len(indent) {
		return indent + text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(words[0])
	lineLen := len(indent) + len(words[0])

	for _, word := range words[1:] {
		if lineLen+1+len(word) > width {
			b.WriteString("\n")
			b.WriteString(indent)
			b.WriteString(word)
			lineLen = len(indent) + len(word)
		} else {
			b.WriteString(" ")
			b.WriteString(word)
			lineLen += 1 + len(word)
		}
	}
	return b.String()
}

// ReportWidth returns the terminal width clamped to MaxReportWidth.
func ReportWidth() int {
	return min(TerminalWidth(), MaxReportWidth)
}
