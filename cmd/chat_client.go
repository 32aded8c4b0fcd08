package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gemini-chat-cli/cmd/utils"
	"gemini-chat-cli/internal/chat"
	"gemini-chat-cli/internal/history"

	"github.com/google/uuid"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []history.Turn `json:"messages"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Result string `json:"result"`
}

// chatTransport sends the conversation to the chat server. It implements chat.Transport.
type chatTransport struct {
	ServerURL  string
	HTTPClient utils.HTTPClient
}

func newChatTransport(serverURL string, client utils.HTTPClient) *chatTransport {
	if client == nil {
		client = utils.GetHTTPClient()
	}
	return &chatTransport{ServerURL: serverURL, HTTPClient: client}
}

func buildChatAPIURL(base string) string {
	return strings.TrimSuffix(base, "/") + "/api/chat"
}

func (t *chatTransport) newRequest(ctx context.Context, turns []history.Turn) (*http.Request, error) {
	if turns == nil {
		turns = []history.Turn{}
	}
	body, err := json.Marshal(ChatRequest{Messages: turns})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, buildChatAPIURL(t.ServerURL), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// Send posts the full history and returns the server's result text.
func (t *chatTransport) Send(ctx context.Context, turns []history.Turn) (string, error) {
	req, err := t.newRequest(ctx, turns)
	if err != nil {
		return "", err
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, structured := utils.ParseServerError(body)
		return "", &chat.StatusError{Code: resp.StatusCode, Message: msg, Structured: structured}
	}

	var out ChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	return out.Result, nil
}

// buildChatCurl renders the request Send would make as a curl command.
func buildChatCurl(serverURL string, turns []history.Turn) (string, error) {
	if turns == nil {
		turns = []history.Turn{}
	}
	body, err := json.Marshal(ChatRequest{Messages: turns})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	payload := strings.ReplaceAll(string(body), "'", `'\''`)
	return fmt.Sprintf("curl -X POST %s \\\n  -H 'Content-Type: application/json' \\\n  -d '%s'", buildChatAPIURL(serverURL), payload), nil
}
