package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ShowToastMsg asks the toast to display Message for a few seconds.
type ShowToastMsg struct{ Message string }

// ShowToast returns a command that pops a toast.
func ShowToast(message string) tea.Cmd {
	return func() tea.Msg { return ShowToastMsg{Message: message} }
}

type ToastModel struct {
	message   string
	visible   bool
	timestamp time.Time
	width     int
}

type HideToastMsg struct{ shownAt time.Time }

func NewToastModel() ToastModel { return ToastModel{visible: false} }

func (m ToastModel) Update(msg tea.Msg) (ToastModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowToastMsg:
		m.message = msg.Message
		m.visible = true
		m.timestamp = time.Now()
		shownAt := m.timestamp
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg { return HideToastMsg{shownAt: shownAt} })
	case HideToastMsg:
		// A newer toast replaced the one this hide was scheduled for.
		if msg.shownAt.IsZero() || msg.shownAt.Equal(m.timestamp) {
			m.visible = false
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m ToastModel) Visible() bool { return m.visible }

func (m ToastModel) Message() string { return m.message }

func (m ToastModel) View() string {
	if !m.visible {
		return ""
	}
	toast := lipgloss.NewStyle().
		Foreground(ColorToastFg).
		Background(ColorToastBg).
		Padding(0, 2).
		MarginRight(2).
		Bold(true).
		Render(m.message)
	if m.width <= 0 {
		return toast
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toast)
}
