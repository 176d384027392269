package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Standard indentation levels.
const (
	IndentOne = "  "
	IndentTwo = "    "
)

// SeparatorLine frames report sections.
var SeparatorLine = strings.Repeat("=", 50)

// TimestampFormat is the standard timestamp format for CLI output.
const TimestampFormat = "2006-01-02 15:04:05"

const bytesPerMB = 1024 * 1024

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("6")).
	Padding(0, 1).
	Border(lipgloss.RoundedBorder())

// Banner renders a report title. Without colors it falls back to plain
// separator lines so the output stays readable in logs and pipes.
func Banner(title string) string {
	if !ColorsEnabled() {
		return SeparatorLine + "\n" + title + "\n" + SeparatorLine
	}

	return bannerStyle.Render(title)
}

// FormatMB formats a byte count as megabytes with one decimal.
func FormatMB(size int64) string {
	return fmt.Sprintf("%.1fMB", float64(size)/bytesPerMB)
}

// SizeChange formats an old and new size pair, e.g. "12.3MB → 12.5MB".
func SizeChange(oldSize, newSize int64) string {
	return FormatMB(oldSize) + " → " + FormatMB(newSize)
}

// Timestamp formats t in local time using the standard format.
func Timestamp(t time.Time) string {
	return t.Local().Format(TimestampFormat)
}

// KeyValue formats an indented, aligned key-value pair.
func KeyValue(key, value string) string {
	return fmt.Sprintf("%s%-*s %s\n", IndentOne, 8, key+":", value)
}
