package tui

import "github.com/charmbracelet/lipgloss"

// Adaptive colors resolve against the current light/dark mode.
var (
	ColorUser    = lipgloss.AdaptiveColor{Light: "#0070F3", Dark: "#79C0FF"}
	ColorBot     = lipgloss.AdaptiveColor{Light: "#6B21A8", Dark: "#D8A6FF"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF6B6B"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ColorBarBg   = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}
	ColorBarFg   = lipgloss.AdaptiveColor{Light: "#374151", Dark: "#D1D5DB"}
	ColorToastBg = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#5EEAD4"}
	ColorToastFg = lipgloss.AdaptiveColor{Light: "#F0FDFA", Dark: "#134E4A"}
)

var (
	UserLabelStyle = lipgloss.NewStyle().Foreground(ColorUser).Bold(true)
	BotLabelStyle  = lipgloss.NewStyle().Foreground(ColorBot).Bold(true)
	MutedStyle     = lipgloss.NewStyle().Foreground(ColorMuted)

	UserBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorUser).
			Padding(0, 1)

	BotBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBot).
			Padding(0, 1)

	InfoBarStyle = lipgloss.NewStyle().
			Background(ColorBarBg).
			Foreground(ColorBarFg).
			Padding(0, 1)

	InputBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(ColorBot)
)
