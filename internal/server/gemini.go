package server

import (
	"context"
	"fmt"
	"strings"

	"gemini-chat-cli/internal/history"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiBackend answers with a Gemini chat session seeded from the conversation.
type GeminiBackend struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiBackend(ctx context.Context, apiKey, modelName string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("a Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: client.GenerativeModel(modelName)}, nil
}

func (g *GeminiBackend) Close() error {
	return g.client.Close()
}

// Reply replays all but the last turn as session history and sends the last one.
func (g *GeminiBackend) Reply(ctx context.Context, turns []history.Turn) (string, error) {
	cs := g.model.StartChat()
	cs.History = toContents(turns[:len(turns)-1])

	resp, err := cs.SendMessage(ctx, genai.Text(turns[len(turns)-1].Content))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return extractText(resp), nil
}

// toContents maps turns onto Gemini contents; the role names are the same.
func toContents(turns []history.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		out = append(out, &genai.Content{
			Role:  string(t.Role),
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}
	return out
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
