package utils

import (
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// MessageType is the kind of a user-facing output line.
type MessageType int

const (
	InfoMessage MessageType = iota
	WarningMessage
	ErrorMessage
	SuccessMessage
)

// OutputMessage is one line destined for the terminal or the running TUI.
type OutputMessage struct {
	Type    MessageType
	Content string
	Writer  io.Writer // used when no TUI is running
}

// TUIMessageMsg carries an OutputMessage into a Bubble Tea program.
type TUIMessageMsg struct {
	Message OutputMessage
}

type outputState struct {
	mu         sync.RWMutex
	program    *tea.Program
	inTUI      bool
	queue      []OutputMessage
	plainIcons bool
}

var output = &outputState{}

// SetTUIMode routes subsequent output into program, flushing anything queued.
func SetTUIMode(program *tea.Program) {
	output.mu.Lock()
	defer output.mu.Unlock()
	output.program = program
	output.inTUI = true
	if program != nil {
		for _, msg := range output.queue {
			program.Send(TUIMessageMsg{Message: msg})
		}
	}
	output.queue = nil
}

// ClearTUIMode goes back to writing straight to stdout/stderr.
func ClearTUIMode() {
	output.mu.Lock()
	defer output.mu.Unlock()
	output.program = nil
	output.inTUI = false
	output.queue = nil
}

// SetPlainIcons drops the emoji prefixes, e.g. when stdout is not a terminal.
func SetPlainIcons(plain bool) {
	output.mu.Lock()
	defer output.mu.Unlock()
	output.plainIcons = plain
}

func sendMessage(msgType MessageType, format string, args ...interface{}) {
	msg := OutputMessage{
		Type:    msgType,
		Content: fmt.Sprintf(format, args...),
		Writer:  writerFor(msgType),
	}

	output.mu.RLock()
	inTUI, program, plain := output.inTUI, output.program, output.plainIcons
	output.mu.RUnlock()

	switch {
	case inTUI && program != nil:
		program.Send(TUIMessageMsg{Message: msg})
	case inTUI:
		output.mu.Lock()
		output.queue = append(output.queue, msg)
		output.mu.Unlock()
	default:
		fmt.Fprintln(msg.Writer, formatMessage(msg, plain))
	}
}

func writerFor(msgType MessageType) io.Writer {
	switch msgType {
	case ErrorMessage, WarningMessage:
		return os.Stderr
	default:
		return os.Stdout
	}
}

func OutputInfo(format string, args ...interface{}) { sendMessage(InfoMessage, format, args...) }
func OutputWarning(format string, args ...interface{}) { sendMessage(WarningMessage, format, args...) }
func OutputError(format string, args ...interface{}) { sendMessage(ErrorMessage, format, args...) }
func OutputSuccess(format string, args ...interface{}) { sendMessage(SuccessMessage, format, args...) }

// FormatMessage renders msg the way it is printed outside the TUI.
func FormatMessage(msg OutputMessage) string {
	return formatMessage(msg, false)
}

func formatMessage(msg OutputMessage, plain bool) string {
	if plain {
		return msg.Content
	}
	var prefix string
	switch msg.Type {
	case InfoMessage:
		prefix = "ℹ️"
	case WarningMessage:
		prefix = "⚠️"
	case ErrorMessage:
		prefix = "❌"
	case SuccessMessage:
		prefix = "✅"
	}
	return fmt.Sprintf("%s  %s", prefix, msg.Content)
}
