package utils

import "strings"

// IconForStatus returns the info bar glyph for a server status label.
func IconForStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "online", "healthy":
		return "●"
	case "degraded":
		return "◐"
	case "offline", "unhealthy":
		return "○"
	default:
		return "?"
	}
}
