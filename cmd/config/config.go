package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v2"
)

// ErrNoConfigFile is returned by FindConfigFile when no gchat config exists.
var ErrNoConfigFile = errors.New("no gchat config file (yaml/toml/json) found")

// Environment overrides.
const (
	EnvServerURL = "GCHAT_SERVER_URL"
	EnvAPIKey    = "GEMINI_API_KEY"
	EnvModel     = "GCHAT_MODEL"
	EnvPort      = "PORT"
)

// LoadConfigFile loads and parses a config file based on its extension
func LoadConfigFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	fileExt := strings.ToLower(filepath.Ext(filePath))

	var config Config
	switch fileExt {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file %s: %w", filePath, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config file %s: %w", filePath, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file %s: %w", filePath, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", fileExt)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}
	return &config, nil
}

// FindConfigFile searches for gchat config files (yaml/toml/json) in the specified directory
func FindConfigFile(searchPath string) (string, error) {
	if searchPath == "" {
		return "", fmt.Errorf("search path is required")
	}

	for _, configFile := range SupportedConfigFiles {
		fullPath := filepath.Join(searchPath, configFile)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoConfigFile, searchPath)
}

// Validate checks the fields that have a closed set of values.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Theme)) {
	case "", ThemeAuto, ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("theme must be one of auto, dark, light; got %q", c.Theme)
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("timeout must not be negative")
		}
	}
	return nil
}

// ResolveOptions are the inputs to Resolve that come from the command line.
type ResolveOptions struct {
	// Dir is searched for .env and the config file.
	Dir string
	// ConfigPath names an explicit config file; it must exist when set.
	ConfigPath string
	// ServerURL is the --server-url flag; empty means not given.
	ServerURL string
}

// Resolve merges defaults, the config file, the environment and flags, in
// increasing order of precedence. A .env file in Dir is loaded first without
// overriding variables that are already set.
func Resolve(opts ResolveOptions) (*Settings, error) {
	if opts.Dir != "" {
		envPath := filepath.Join(opts.Dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
			}
		}
	}

	s := &Settings{
		ServerURL: DefaultServerURL,
		Timeout:   DefaultTimeout,
		Theme:     ThemeAuto,
		Welcome:   DefaultWelcome,
		ServeAddr: DefaultServeAddr,
		Model:     DefaultModel,
	}

	var (
		cfg *Config
		err error
	)
	switch {
	case opts.ConfigPath != "":
		cfg, err = LoadConfigFile(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		s.Source = opts.ConfigPath
	case opts.Dir != "":
		var path string
		path, err = FindConfigFile(opts.Dir)
		if err == nil {
			if cfg, err = LoadConfigFile(path); err != nil {
				return nil, err
			}
			s.Source = path
		} else if !errors.Is(err, ErrNoConfigFile) {
			return nil, err
		}
	}
	if cfg != nil {
		s.apply(cfg, filepath.Dir(s.Source))
	}

	if v := os.Getenv(EnvServerURL); v != "" {
		s.ServerURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		s.Model = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		s.ServeAddr = ":" + strings.TrimPrefix(v, ":")
	}
	s.APIKey = os.Getenv(EnvAPIKey)

	if opts.ServerURL != "" {
		s.ServerURL = opts.ServerURL
	}
	return s, nil
}

func (s *Settings) apply(c *Config, dir string) {
	if c.ServerURL != "" {
		s.ServerURL = c.ServerURL
	}
	if c.Timeout != "" {
		// Validate already accepted it.
		s.Timeout, _ = time.ParseDuration(c.Timeout)
	}
	if c.Theme != "" {
		s.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	}
	if c.ThemeFile != "" {
		s.ThemeFile = c.ThemeFile
		if !filepath.IsAbs(s.ThemeFile) {
			s.ThemeFile = filepath.Join(dir, s.ThemeFile)
		}
	}
	if c.Welcome != "" {
		s.Welcome = c.Welcome
	}
	if c.Serve.Addr != "" {
		s.ServeAddr = c.Serve.Addr
	}
	if c.Serve.Model != "" {
		s.Model = c.Serve.Model
	}
}
