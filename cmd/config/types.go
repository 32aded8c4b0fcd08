package config

import "time"

// Config file names, searched in this order
var (
	SupportedConfigFiles = []string{
		"gchat.yaml",
		"gchat.yml",
		"gchat.toml",
		"gchat.json",
	}
)

const (
	DefaultServerURL = "http://localhost:8080"
	DefaultTimeout   = 60 * time.Second
	DefaultServeAddr = ":8080"
	DefaultModel     = "gemini-1.5-flash"

	DefaultWelcome = "Hello! I'm your Gemini assistant. Ask me anything to get started."
)

// Theme settings accepted in the config file.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config is the on-disk gchat configuration. Every field is optional.
type Config struct {
	ServerURL string      `yaml:"server_url,omitempty" toml:"server_url,omitempty" json:"server_url,omitempty"`
	Timeout   string      `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty"`
	Theme     string      `yaml:"theme,omitempty" toml:"theme,omitempty" json:"theme,omitempty"`
	ThemeFile string      `yaml:"theme_file,omitempty" toml:"theme_file,omitempty" json:"theme_file,omitempty"`
	Welcome   string      `yaml:"welcome,omitempty" toml:"welcome,omitempty" json:"welcome,omitempty"`
	Serve     ServeConfig `yaml:"serve,omitempty" toml:"serve,omitempty" json:"serve,omitempty"`
}

// ServeConfig configures the companion chat server.
type ServeConfig struct {
	Addr  string `yaml:"addr,omitempty" toml:"addr,omitempty" json:"addr,omitempty"`
	Model string `yaml:"model,omitempty" toml:"model,omitempty" json:"model,omitempty"`
}

// Settings are the effective values after defaults, file, env and flags are merged.
type Settings struct {
	ServerURL string
	Timeout   time.Duration
	Theme     string
	ThemeFile string
	Welcome   string
	ServeAddr string
	Model     string
	APIKey    string
	// Source is the config file that was loaded, if any.
	Source string
}
