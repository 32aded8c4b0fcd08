package cmd

import (
	"fmt"
	"os"

	"gemini-chat-cli/cmd/config"
	"gemini-chat-cli/cmd/utils"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	debug       bool
	serverURL   string
	overrideCwd string
	configPath  string

	// settings is filled in by the root PersistentPreRunE.
	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "gchat",
	Short: "gchat - chat with Gemini from your terminal",
	Long: `gchat is a terminal chat client. It keeps the conversation in memory and
sends the whole history to a chat server on every message.

Getting started:
  # Start the companion server (needs GEMINI_API_KEY)
  gchat serve

  # Open the interactive chat
  gchat chat

  # Send a one-time prompt
  gchat chat "What is the capital of France?"`,
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare `gchat` opens the chat when attached to a terminal.
		if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
			return runChatTUI()
		}
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.OverrideCwd = overrideCwd
		if debug {
			if err := utils.InitDebugLogger(""); err != nil {
				return fmt.Errorf("failed to open debug log: %w", err)
			}
		}
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			utils.SetPlainIcons(true)
		}

		s, err := loadSettings()
		if err != nil {
			return err
		}
		settings = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		utils.CloseDebugLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		utils.OutputError("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Write a debug log (debug.log in the working directory)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "Chat server URL (default: "+config.DefaultServerURL+")")
	rootCmd.PersistentFlags().StringVar(&overrideCwd, "cwd", "", "Override the current working directory for config and .env lookup")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a gchat config file (yaml, toml or json)")
}

// loadSettings resolves the effective configuration for this invocation.
func loadSettings() (*config.Settings, error) {
	s, err := config.Resolve(config.ResolveOptions{
		Dir:        utils.GetEffectiveCWD(),
		ConfigPath: configPath,
		ServerURL:  serverURL,
	})
	if err != nil {
		return nil, err
	}
	s.ServerURL, err = utils.NormalizeServerURL(s.ServerURL)
	if err != nil {
		return nil, err
	}
	if s.Source != "" {
		utils.LogDebug(fmt.Sprintf("loaded config from %s", s.Source))
	}
	utils.LogDebug(fmt.Sprintf("server=%s timeout=%s theme=%s", s.ServerURL, s.Timeout, s.Theme))
	return s, nil
}
