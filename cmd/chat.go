package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"gemini-chat-cli/cmd/utils"
	"gemini-chat-cli/internal/chat"
	"gemini-chat-cli/internal/history"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	runInputFile string
	dryRun       bool
)

// chatCmd represents the `gchat chat` command
var chatCmd = &cobra.Command{
	Use:   "chat [\"input\"]",
	Short: "Chat with the server (interactive when no input is given)",
	Long: `Chat with the configured chat server.

Examples:
  # Interactive session
  gchat chat

  # One-time prompt
  gchat chat "Explain goroutines in two sentences"

  # Prompt from a file, or piped on stdin
  gchat chat -f ./prompt.txt
  echo "Hello" | gchat chat

  # Show the request instead of sending it
  gchat chat --dry-run "Hello"`,

	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 {
			return fmt.Errorf("quote the input as a single argument")
		}
		if runInputFile != "" && len(args) == 1 {
			return fmt.Errorf("specify either --file or an inline input, not both")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := resolveChatInput(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		// Start an interactive chat session if no input is provided
		if input == "" && !dryRun {
			return runChatTUI()
		}

		if dryRun {
			curl, err := dryRunCurl(settings.ServerURL, input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), curl)
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		reply, err := sendOneShot(ctx, input, newChatTransport(settings.ServerURL, utils.GetHTTPClientWithTimeout(settings.Timeout)))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVarP(&runInputFile, "file", "f", "", "path to file containing input text")
	chatCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the equivalent curl command instead of executing the request")

	rootCmd.AddCommand(chatCmd)
}

// resolveChatInput picks the prompt from --file, the argument, or piped stdin.
func resolveChatInput(args []string, stdin io.Reader) (string, error) {
	if runInputFile != "" {
		data, err := os.ReadFile(runInputFile)
		if err != nil {
			return "", fmt.Errorf("error reading file '%s': %w", runInputFile, err)
		}
		return string(data), nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if f, ok := stdin.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		data, err := io.ReadAll(f)
		if err != nil {
			return "", fmt.Errorf("error reading stdin: %w", err)
		}
		return string(data), nil
	}
	return "", nil
}

// dryRunCurl builds the curl command for a one-message conversation.
func dryRunCurl(serverURL, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("--dry-run needs an input: %w", chat.ErrEmptyInput)
	}
	curl, err := buildChatCurl(serverURL, []history.Turn{{Role: history.RoleUser, Content: input}})
	if err != nil {
		return "", fmt.Errorf("failed to generate curl command: %w", err)
	}
	return curl, nil
}

// sendOneShot runs a single exchange and returns the reply text. Failures come
// back as errors carrying the text the transcript would have shown.
func sendOneShot(ctx context.Context, input string, t chat.Transport) (string, error) {
	r := &plainRenderer{}
	c := chat.NewController(nil, r, t, chat.WithLogger(utils.LogDebug))
	res, err := c.Send(ctx, input)
	if err != nil {
		return "", err
	}
	if res.State == chat.StateFailed {
		return "", fmt.Errorf("%s", res.Text)
	}
	return res.Text, nil
}

// plainRenderer records bubbles without drawing them. Used outside the TUI.
type plainRenderer struct {
	bubbles []string
}

func (p *plainRenderer) Append(sender chat.Sender, text string) chat.Handle {
	p.bubbles = append(p.bubbles, text)
	return chat.Handle(strconv.Itoa(len(p.bubbles) - 1))
}

func (p *plainRenderer) Replace(h chat.Handle, content string) {
	i, err := strconv.Atoi(string(h))
	if err != nil || i < 0 || i >= len(p.bubbles) {
		return
	}
	p.bubbles[i] = content
}
