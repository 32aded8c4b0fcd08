package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gemini-chat-cli/cmd/config"
	"gemini-chat-cli/cmd/utils"
	"gemini-chat-cli/internal/chat"
	"gemini-chat-cli/internal/theme"
	uitk "gemini-chat-cli/internal/tui"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

const gap = "\n\n"

const chatHelp = `Commands:
  /help   - Show this help
  /theme  - Toggle light/dark
  /clear  - Start a new conversation
  /copy   - Copy the last reply
  /exit   - Exit

Hotkeys:
  Ctrl+T  - Toggle light/dark
  Ctrl+Y  - Copy the last reply
  Up/Down - Input history
  PgUp/PgDn - Scroll`

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

// runChatTUI starts the Bubble Tea TUI for chat.
func runChatTUI() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pref := themePreference(settings)
	width, height, _ := term.GetSize(os.Stdout.Fd())

	m := newChatModel(chatOptions{
		ServerURL:  settings.ServerURL,
		Transport:  newChatTransport(settings.ServerURL, utils.GetHTTPClientWithTimeout(settings.Timeout)),
		Preference: pref,
		Welcome:    settings.Welcome,
		Width:      width,
		Height:     height,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Enable TUI mode for output routing
	utils.SetTUIMode(p)
	defer utils.ClearTUIMode()

	if w, ok := pref.(theme.Watcher); ok {
		if err := w.Watch(ctx, func(dark bool) { p.Send(themeChangedMsg{dark: dark}) }); err != nil {
			utils.LogDebug(fmt.Sprintf("theme watch disabled: %v", err))
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// themePreference maps the theme settings onto a preference source.
func themePreference(s *config.Settings) theme.Preference {
	switch s.Theme {
	case config.ThemeDark:
		return theme.StaticPreference(true)
	case config.ThemeLight:
		return theme.StaticPreference(false)
	}
	if s.ThemeFile != "" {
		return theme.FilePreference{Path: s.ThemeFile, Fallback: theme.TerminalPreference{}}
	}
	return theme.TerminalPreference{}
}

type chatOptions struct {
	ServerURL  string
	Transport  chat.Transport
	Preference theme.Preference
	Welcome    string
	Width      int
	Height     int
}

type chatModel struct {
	controller *chat.Controller
	transcript *uitk.Transcript
	theme      *theme.Controller
	pending    *chat.Exchange
	sentAt     time.Time
	latency    time.Duration

	serverURL    string
	serverStatus string

	spin      spinner.Model
	viewport  viewport.Model
	textarea  textarea.Model
	toast     uitk.ToastModel
	history   []string
	histIndex int
	width     int
	height    int
	quitting  bool
}

type responseMsg struct {
	exchange *chat.Exchange
	outcome  chat.Outcome
}
type themeChangedMsg struct{ dark bool }
type serverStatusMsg struct{ status string }

func newChatModel(opts chatOptions) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Focus()
	ta.Prompt = "> "
	ta.SetWidth(30)
	ta.SetHeight(1)
	// Remove cursor line styling
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	// ctrl+t is the theme toggle
	ta.KeyMap.TransposeCharacterBackward.SetEnabled(false)

	// Only page keys scroll; letters belong to the input.
	vp := viewport.New(30, 5)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(uitk.ColorBot)

	tc := theme.NewController(opts.Preference)
	transcript := uitk.NewTranscript(opts.Welcome, uitk.NewMarkdown(theme.Light.GlamourStyle()))
	tc.OnChange(func(mode theme.Mode) {
		transcript.Markdown().SetStyle(mode.GlamourStyle())
	})
	tc.Initialize()

	m := chatModel{
		controller:   chat.NewController(nil, transcript, opts.Transport, chat.WithLogger(utils.LogDebug)),
		transcript:   transcript,
		theme:        tc,
		serverURL:    opts.ServerURL,
		serverStatus: "unknown",
		spin:         s,
		viewport:     vp,
		textarea:     ta,
		toast:        uitk.NewToastModel(),
	}
	if opts.Width > 0 && opts.Height > 0 {
		m.resize(opts.Width, opts.Height)
	}
	m.refreshViewport()
	return m
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spin.Tick, checkServerCmd(m.serverURL))
}

func checkServerCmd(url string) tea.Cmd {
	if url == "" {
		return nil
	}
	return func() tea.Msg {
		return serverStatusMsg{status: utils.ServerStatus(context.Background(), url)}
	}
}

// runExchange performs the request off the UI goroutine.
func runExchange(x *chat.Exchange) tea.Cmd {
	return func() tea.Msg {
		return responseMsg{exchange: x, outcome: x.Run(context.Background())}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		cmd   tea.Cmd
		cmds  []tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	m.toast, cmd = m.toast.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	// Forward all messages to the spinner so it processes its own TickMsgs
	m.spin, cmd = m.spin.Update(msg)

	cmds = append(cmds, vpCmd, tiCmd, cmd)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "ctrl+t":
			cmds = append(cmds, m.toggleTheme())

		case "ctrl+y":
			cmds = append(cmds, m.copyLastReply())

		case "up":
			if m.histIndex > 0 {
				m.histIndex--
				m.textarea.SetValue(m.history[m.histIndex])
				m.textarea.CursorEnd()
			}

		case "down":
			if m.histIndex < len(m.history)-1 {
				m.histIndex++
				m.textarea.SetValue(m.history[m.histIndex])
				m.textarea.CursorEnd()
			} else {
				m.histIndex = len(m.history)
				m.textarea.SetValue("")
			}

		case "enter":
			val := strings.TrimSpace(m.textarea.Value())
			if val == "" {
				break
			}
			if strings.HasPrefix(val, "/") {
				m.textarea.Reset()
				cmds = append(cmds, m.runSlashCommand(val))
				break
			}
			x, err := m.controller.Submit(val)
			if errors.Is(err, chat.ErrBusy) {
				cmds = append(cmds, uitk.ShowToast("Still waiting for the last reply"))
				break
			}
			if err != nil {
				break
			}
			m.history = append(m.history, val)
			m.histIndex = len(m.history)
			m.textarea.Reset()
			m.pending = x
			m.sentAt = time.Now()
			cmds = append(cmds, runExchange(x))
		}

	case responseMsg:
		res := m.controller.Resolve(msg.exchange, msg.outcome)
		if msg.exchange == m.pending {
			m.pending = nil
			m.latency = time.Since(m.sentAt)
		}
		if res.State == chat.StateFailed {
			var se *chat.StatusError
			if !errors.As(res.Err, &se) && utils.IsLocalhost(m.serverURL) {
				cmds = append(cmds, uitk.ShowToast("Server unreachable. Start one with `gchat serve`"))
			}
			cmds = append(cmds, checkServerCmd(m.serverURL))
		}

	case themeChangedMsg:
		m.theme.PreferenceChanged(msg.dark)

	case serverStatusMsg:
		m.serverStatus = msg.status

	case utils.TUIMessageMsg:
		m.transcript.Note(utils.FormatMessage(msg.Message))
	}

	m.refreshViewport()

	return m, tea.Batch(cmds...)
}

func (m *chatModel) runSlashCommand(line string) tea.Cmd {
	fields := strings.Fields(strings.ToLower(line))
	switch fields[0] {
	case "/help":
		m.transcript.Note(chatHelp)
	case "/theme":
		return m.toggleTheme()
	case "/clear":
		if err := m.controller.Reset(); err != nil {
			return uitk.ShowToast("Wait for the reply before clearing")
		}
		m.transcript.Reset()
		m.history = nil
		m.histIndex = 0
		return uitk.ShowToast("Conversation cleared")
	case "/copy":
		return m.copyLastReply()
	case "/exit", "/quit":
		m.quitting = true
		return tea.Quit
	default:
		m.transcript.Note(fmt.Sprintf("Unknown command %s. Type /help for commands.", fields[0]))
	}
	return nil
}

func (m *chatModel) toggleTheme() tea.Cmd {
	mode := m.theme.Toggle()
	return uitk.ShowToast(fmt.Sprintf("%s %s mode", mode.Icon(), mode))
}

func (m *chatModel) copyLastReply() tea.Cmd {
	text, ok := m.transcript.LastReply()
	if !ok {
		return uitk.ShowToast("Nothing to copy yet")
	}
	if err := clipboardWrite(text); err != nil {
		utils.LogDebug(fmt.Sprintf("clipboard write failed: %v", err))
		return uitk.ShowToast("Clipboard unavailable")
	}
	return uitk.ShowToast("Copied last reply")
}

func (m *chatModel) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := lipgloss.Height(renderInfoBar(*m))
	footerHeight := lipgloss.Height(renderChatInput(*m))

	// Keep the viewport height positive on tiny terminals
	newHeight := height - headerHeight - footerHeight
	if newHeight < 1 {
		newHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = newHeight

	newWidth := width - 2
	if newWidth < 10 {
		newWidth = 10
	}
	m.textarea.SetWidth(newWidth)
}

// refreshViewport redraws the transcript and follows it to the bottom when it asked to scroll.
func (m *chatModel) refreshViewport() {
	m.viewport.SetContent(m.transcript.Render(m.viewport.Width, m.spin.View()))
	if m.transcript.TakeScroll() {
		m.viewport.GotoBottom()
	}
}

func renderChatInput(m chatModel) string {
	var b strings.Builder

	b.WriteString(gap)
	b.WriteString(uitk.InputBorderStyle.Render(m.textarea.View()))
	b.WriteString("\n")

	helpText := "/help for commands | Enter: send | Ctrl+T: theme | Ctrl+Y: copy | Esc: quit"
	b.WriteString(uitk.MutedStyle.Width(max(m.width-2, 10)).Render(helpText))

	return b.String()
}

func renderInfoBar(m chatModel) string {
	host := strings.TrimPrefix(strings.TrimPrefix(m.serverURL, "https://"), "http://")

	parts := []string{
		"Gemini Chat",
		fmt.Sprintf("%s %s", utils.IconForStatus(m.serverStatus), host),
	}
	if m.latency > 0 {
		parts = append(parts, utils.FormatLatency(m.latency))
	}
	parts = append(parts, fmt.Sprintf("%s ctrl+t", m.theme.Icon()))
	line := strings.Join(parts, " | ")

	if m.width > 0 && lipgloss.Width(line) > m.width-2 {
		line = lipgloss.NewStyle().MaxWidth(max(m.width-2, 1)).Render(line)
	}
	style := uitk.InfoBarStyle
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(line)
}

func (m chatModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(renderInfoBar(m))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString(renderChatInput(m))

	// Toast on the right, below the input
	if v := m.toast.View(); v != "" {
		b.WriteString("\n")
		b.WriteString(v)
	}

	return b.String()
}
