// Package theme tracks the light/dark mode of the chat UI.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Mode is the light/dark state reflected on the whole UI.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

const (
	iconSun  = "☀"
	iconMoon = "☾"
)

// Icon is what the toggle shows: the sun while dark (switch to light), the moon while light.
func (m Mode) Icon() string {
	if m == Dark {
		return iconSun
	}
	return iconMoon
}

// GlamourStyle names the standard glamour style that matches the mode.
func (m Mode) GlamourStyle() string {
	if m == Dark {
		return "dark"
	}
	return "light"
}

func modeFor(dark bool) Mode {
	if dark {
		return Dark
	}
	return Light
}

// Controller maps the system preference onto a Mode and lets the user flip it.
// A toggle is not remembered: the next preference change overrides it.
type Controller struct {
	pref      Preference
	mode      Mode
	icon      string
	listeners []func(Mode)
	apply     func(Mode)
}

// NewController builds a controller for pref. Call Initialize before use.
func NewController(pref Preference) *Controller {
	if pref == nil {
		pref = TerminalPreference{}
	}
	return &Controller{
		pref:  pref,
		mode:  Light,
		icon:  Light.Icon(),
		apply: applyLipgloss,
	}
}

// OnChange registers fn to be called with every mode the controller applies.
func (c *Controller) OnChange(fn func(Mode)) {
	c.listeners = append(c.listeners, fn)
}

// Initialize reads the system preference and applies the matching mode.
func (c *Controller) Initialize() {
	c.set(modeFor(c.pref.Dark()))
}

// PreferenceChanged re-applies the preference mapping after a system change.
func (c *Controller) PreferenceChanged(dark bool) {
	c.set(modeFor(dark))
}

// Toggle flips between light and dark.
func (c *Controller) Toggle() Mode {
	if c.mode == Dark {
		c.set(Light)
	} else {
		c.set(Dark)
	}
	return c.mode
}

func (c *Controller) Mode() Mode { return c.mode }

// Icon returns the current toggle icon.
func (c *Controller) Icon() string { return c.icon }

func (c *Controller) IsDark() bool { return c.mode == Dark }

func (c *Controller) set(m Mode) {
	c.mode = m
	c.icon = m.Icon()
	if c.apply != nil {
		c.apply(m)
	}
	for _, fn := range c.listeners {
		fn(m)
	}
}

// applyLipgloss makes adaptive colors follow the mode.
func applyLipgloss(m Mode) {
	lipgloss.SetHasDarkBackground(m == Dark)
}
