package textio

import (
	"strconv"
	"strings"
	"time"
)

// SplitLines splits text on "\n", preserving empty lines and excluding the
// terminator from each produced line. A trailing partial line (no final
// newline) is still returned; callers that stream must flush it on EOF.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	// strings.Split on "a\nb\n" yields ["a", "b", ""]: drop the synthetic
	// empty trailing element for output that simply ended with a newline.
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

const defaultTimeFormat = "2006-01-02 15:04:05.000000"

// FormatTime renders ts using a strftime-style format string. An empty or
// invalid format falls back to the default "%Y-%m-%d %H:%M:%S.%f" layout.
func FormatTime(ts time.Time, format string) string {
	layout := strftimeToGoLayout(format)
	if layout == "" {
		layout = defaultTimeFormat
	}
	return ts.Format(layout)
}

// strftimeToGoLayout translates the small subset of strftime directives used
// by the default time format into a Go time layout. Unknown or empty input
// falls back to the default layout (returned as "").
func strftimeToGoLayout(format string) string {
	if format == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		"%Y", "2006",
		"%m", "01",
		"%d", "02",
		"%H", "15",
		"%M", "04",
		"%S", "05",
		"%f", "000000",
	)
	out := replacer.Replace(format)
	if out == format && !strings.Contains(format, "2006") {
		// No recognized directives were substituted; treat as invalid.
		return ""
	}
	return out
}

// PrefixLine prepends "[<formatted-timestamp>] " to text when enabled.
func PrefixLine(ts time.Time, format string, text string) string {
	return "[" + FormatTime(ts, format) + "] " + text
}

// ClampLines retains only the last n lines, prepending a synthetic marker
// line when at least one line was dropped. n <= 0 disables clamping.
func ClampLines(lines []string, n int) []string {
	if n <= 0 || len(lines) <= n {
		return lines
	}
	dropped := len(lines) - n
	marker := "… " + strconv.Itoa(dropped) + " earlier lines omitted …"
	clamped := make([]string, 0, n+1)
	clamped = append(clamped, marker)
	clamped = append(clamped, lines[dropped:]...)
	return clamped
}
