package theme

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
)

// Preference reports the system's light/dark preference.
type Preference interface {
	Dark() bool
}

// Watcher is a Preference that can report changes.
type Watcher interface {
	Preference
	// Watch calls fn with the new preference whenever it changes, until ctx is done.
	Watch(ctx context.Context, fn func(dark bool)) error
}

// TerminalPreference asks the terminal for its background color.
type TerminalPreference struct{}

func (TerminalPreference) Dark() bool { return lipgloss.HasDarkBackground() }

// StaticPreference always reports the same value. Used when the config pins a theme.
type StaticPreference bool

func (p StaticPreference) Dark() bool { return bool(p) }

// FilePreference reads the preference from a mode file containing "dark" or "light",
// such as the state file kept by a desktop dark-mode daemon. Anything else, including
// a missing file, falls back to Fallback.
type FilePreference struct {
	Path     string
	Fallback Preference
}

func (p FilePreference) Dark() bool {
	data, err := os.ReadFile(p.Path)
	if err == nil {
		switch strings.ToLower(strings.TrimSpace(string(data))) {
		case "dark":
			return true
		case "light":
			return false
		}
	}
	if p.Fallback != nil {
		return p.Fallback.Dark()
	}
	return false
}

// Watch follows the mode file with fsnotify. It watches the parent directory so
// editors and daemons that replace the file atomically are still seen.
func (p FilePreference) Watch(ctx context.Context, fn func(dark bool)) error {
	// Read before returning so a write right after Watch is still reported.
	last := p.Dark()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create theme watcher: %w", err)
	}
	dir := filepath.Dir(p.Path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer w.Close()
		// Catch a change made between the baseline read and w.Add.
		if dark := p.Dark(); dark != last {
			last = dark
			fn(dark)
		}
		target := filepath.Clean(p.Path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if dark := p.Dark(); dark != last {
					last = dark
					fn(dark)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}
