package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minWrapWidth keeps glamour's document margins from splitting short words.
const minWrapWidth = 24

// Markdown renders replies with glamour. Renderers are rebuilt only when the
// style or wrap width changes.
type Markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdown returns a renderer using the named glamour standard style ("dark" or "light").
func NewMarkdown(style string) *Markdown {
	return &Markdown{style: style}
}

// SetStyle switches the glamour style, e.g. after a theme change.
func (m *Markdown) SetStyle(style string) {
	if style == m.style {
		return
	}
	m.style = style
	m.renderer = nil
}

func (m *Markdown) Style() string { return m.style }

// Render formats content for a column of the given width. On any glamour error the
// raw content is returned.
func (m *Markdown) Render(content string, width int) string {
	if width < minWrapWidth {
		width = minWrapWidth
	}
	if m.renderer == nil || m.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		m.renderer = r
		m.width = width
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
