package utils

import (
	"fmt"
	"time"
)

// FormatDuration formats seconds into a human-readable duration string.
// Examples: "5s", "2m 30s", "1h 15m", "2h 30m"
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		return "unknown"
	}

	totalSecs := int(seconds)

	if totalSecs < 60 {
		return fmt.Sprintf("%ds", totalSecs)
	}

	minutes := totalSecs / 60
	secs := totalSecs % 60

	if minutes < 60 {
		if secs == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}

	hours := minutes / 60
	mins := minutes % 60

	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}

// FormatLatency renders a reply round-trip for the info bar.
// Sub-second values keep millisecond precision ("850ms", "1.2s").
func FormatLatency(d time.Duration) string {
	switch {
	case d < 0:
		return "unknown"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return FormatDuration(d.Seconds())
	}
}
