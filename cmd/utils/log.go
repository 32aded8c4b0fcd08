package utils

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	debugOnce   sync.Once
	debugFile   *os.File
	debugLogger *log.Logger

	// Order matters: specific key formats before the generic key=value rules.
	redactions = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		// Google API keys, as used for Gemini
		{regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{35}\b`), "[REDACTED-KEY]"},
		{regexp.MustCompile(`\beyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED-JWT]"},
		{regexp.MustCompile(`\b(sk|pk|sess)-[a-zA-Z0-9\-_]{20,}`), "[REDACTED-KEY]"},
		{regexp.MustCompile(`(?i)(authorization[=:\s]+['"]?)(Basic|Bearer)\s+[a-zA-Z0-9\-_\.=]+`), "${1}${2} [REDACTED]"},
		{regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9\-_\.]+`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)((?:x-goog-)?api[_-]?key[=:\s]+['"]?)[a-zA-Z0-9\-_]{16,}`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(password[=:\s]+['"]?)[^\s&'"]+`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(token[=:\s]+['"]?)[a-zA-Z0-9\-_\.]{16,}`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(cookie[=:\s]+['"]?)[^;\n]+`), "${1}[REDACTED]"},
	}
)

// InitDebugLogger opens the shared debug log through Bubble Tea so that TUI
// output and our own lines land in one file. An empty path means debug.log in
// the effective working directory.
func InitDebugLogger(path string) error {
	var initErr error
	debugOnce.Do(func() {
		if path == "" {
			path = filepath.Join(GetEffectiveCWD(), "debug.log")
		}
		f, err := tea.LogToFile(path, "gchat")
		if err != nil {
			initErr = err
			return
		}
		debugFile = f
		debugLogger = log.New(io.MultiWriter(f), "", log.LstdFlags)
	})
	return initErr
}

// CloseDebugLogger flushes and closes the debug log if it was opened.
func CloseDebugLogger() {
	if debugFile != nil {
		_ = debugFile.Sync()
		_ = debugFile.Close()
	}
}

// ResetDebugLoggerForTesting lets tests reopen the logger at another path.
func ResetDebugLoggerForTesting() {
	CloseDebugLogger()
	debugOnce = sync.Once{}
	debugFile = nil
	debugLogger = nil
}

func sanitizeLogMessage(msg string) string {
	for _, r := range redactions {
		msg = r.pattern.ReplaceAllString(msg, r.replacement)
	}
	return msg
}

// LogDebug writes a sanitized line to the debug log. It does nothing until
// InitDebugLogger has been called (--debug).
func LogDebug(msg string) {
	if debugLogger == nil {
		return
	}
	debugLogger.Println(sanitizeLogMessage(msg))
}
