package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// OllamaProvider calls a local Ollama server's /api/chat endpoint, passing
// the requested schema as the structured output format.
type OllamaProvider struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewOllamaProvider creates a provider for the Ollama server at baseURL.
func NewOllamaProvider(baseURL, model string, httpClient *http.Client) *OllamaProvider {
	return &OllamaProvider{
		endpoint:   baseURL + "/api/chat",
		model:      model,
		httpClient: httpClient,
	}
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   map[string]any `json:"format"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

func (p *OllamaProvider) Complete(ctx context.Context, prompt string, schema OutputSchema) (string, error) {
	in := ollamaChatRequest{
		Model:    p.model,
		Messages: chatMessages(prompt),
		Format:   schema.Schema,
		Options:  map[string]any{"temperature": 0},
	}

	var out ollamaChatResponse
	if err := postJSON(ctx, p.httpClient, p.endpoint, nil, in, &out); err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama error: %s", out.Error)
	}
	if out.Message.Content == "" {
		return "", errors.New("ollama returned an empty message")
	}
	return out.Message.Content, nil
}
