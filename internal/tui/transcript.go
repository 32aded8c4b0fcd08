package tui

import (
	"strings"

	"gemini-chat-cli/internal/chat"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

const (
	userLabel = "You"
	botLabel  = "Gemini AI"
)

type bubble struct {
	id          chat.Handle
	sender      chat.Sender
	text        string
	placeholder bool
	markdown    bool

	// last markdown rendering, keyed by width and style
	rendered      string
	renderedWidth int
	renderedStyle string
}

func (b *bubble) renderMarkdown(md *Markdown, width int) string {
	if b.rendered == "" || b.renderedWidth != width || b.renderedStyle != md.Style() {
		b.rendered = md.Render(b.text, width)
		b.renderedWidth = width
		b.renderedStyle = md.Style()
	}
	return b.rendered
}

// Transcript is the scrollable message thread. It implements chat.Renderer.
type Transcript struct {
	bubbles     []*bubble
	byHandle    map[chat.Handle]*bubble
	welcome     string
	showWelcome bool
	md          *Markdown
	scroll      bool
}

// NewTranscript creates an empty thread. A non-empty welcome is shown until the
// first message is sent.
func NewTranscript(welcome string, md *Markdown) *Transcript {
	if md == nil {
		md = NewMarkdown("dark")
	}
	return &Transcript{
		byHandle:    make(map[chat.Handle]*bubble),
		welcome:     welcome,
		showWelcome: welcome != "",
		md:          md,
	}
}

// Append adds a bubble and returns its handle. A bot bubble whose text is
// chat.Placeholder is drawn as a loading animation.
func (t *Transcript) Append(sender chat.Sender, text string) chat.Handle {
	b := &bubble{
		id:          chat.Handle(uuid.NewString()),
		sender:      sender,
		text:        text,
		placeholder: sender == chat.SenderBot && text == chat.Placeholder,
	}
	t.bubbles = append(t.bubbles, b)
	t.byHandle[b.id] = b
	t.scroll = true
	return b.id
}

// Replace swaps the bubble's content for markdown-formatted content.
func (t *Transcript) Replace(h chat.Handle, content string) {
	b, ok := t.byHandle[h]
	if !ok {
		return
	}
	b.text = content
	b.placeholder = false
	b.markdown = true
	b.rendered = ""
	t.scroll = true
}

// DismissWelcome removes the welcome banner.
func (t *Transcript) DismissWelcome() {
	t.showWelcome = false
}

// Reset clears the thread and brings the welcome banner back.
func (t *Transcript) Reset() {
	t.bubbles = nil
	t.byHandle = make(map[chat.Handle]*bubble)
	t.showWelcome = t.welcome != ""
	t.scroll = true
}

// Note appends a dim informational line that is not part of the conversation.
func (t *Transcript) Note(text string) {
	t.bubbles = append(t.bubbles, &bubble{sender: "", text: text})
	t.scroll = true
}

// TakeScroll reports whether the view should jump to the end, and clears the request.
func (t *Transcript) TakeScroll() bool {
	s := t.scroll
	t.scroll = false
	return s
}

// Loading reports whether any placeholder is still waiting for content.
func (t *Transcript) Loading() bool {
	for _, b := range t.bubbles {
		if b.placeholder {
			return true
		}
	}
	return false
}

// LastReply returns the raw text of the most recent finished bot bubble.
func (t *Transcript) LastReply() (string, bool) {
	for i := len(t.bubbles) - 1; i >= 0; i-- {
		b := t.bubbles[i]
		if b.sender == chat.SenderBot && !b.placeholder {
			return b.text, true
		}
	}
	return "", false
}

func (t *Transcript) Len() int { return len(t.bubbles) }

// Markdown exposes the formatter so theme changes can switch its style.
func (t *Transcript) Markdown() *Markdown { return t.md }

// Render draws the thread for the given width. loading is the current frame of
// the loading animation.
func (t *Transcript) Render(width int, loading string) string {
	if width < 20 {
		width = 20
	}
	var b strings.Builder

	if t.showWelcome {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, MutedStyle.Render(t.welcome)))
		b.WriteString("\n\n")
	}

	bubbleWidth := width * 3 / 4
	for _, msg := range t.bubbles {
		switch msg.sender {
		case chat.SenderUser:
			body := UserBubbleStyle.MaxWidth(bubbleWidth).Render(wrap(msg.text, bubbleWidth-4))
			block := lipgloss.JoinVertical(lipgloss.Right, UserLabelStyle.Render(userLabel), body)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, block))
		case chat.SenderBot:
			var content string
			switch {
			case msg.placeholder:
				content = loading + " Thinking..."
			case msg.markdown:
				content = msg.renderMarkdown(t.md, bubbleWidth-4)
			default:
				content = wrap(msg.text, bubbleWidth-4)
			}
			b.WriteString(lipgloss.JoinVertical(lipgloss.Left, BotLabelStyle.Render(botLabel), BotBubbleStyle.Render(content)))
		default:
			b.WriteString(MutedStyle.Width(width).Render(msg.text))
		}
		b.WriteString("\n\n")
	}

	return b.String()
}

func wrap(text string, width int) string {
	if width < 1 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
