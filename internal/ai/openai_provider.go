package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// OpenAIProvider calls a chat completions endpoint with a strict
// json_schema response format. Any OpenAI compatible server works.
type OpenAIProvider struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewOpenAIProvider(baseURL, apiKey, model string, httpClient *http.Client) *OpenAIProvider {
	return &OpenAIProvider{
		endpoint:   baseURL + "/chat/completions",
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

type openAIRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    int           `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat struct {
		Type       string `json:"type"`
		JSONSchema struct {
			Name   string         `json:"name"`
			Strict bool           `json:"strict"`
			Schema map[string]any `json:"schema"`
		} `json:"json_schema"`
	} `json:"response_format"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, schema OutputSchema) (string, error) {
	in := openAIRequest{
		Model:     p.model,
		Messages:  chatMessages(prompt),
		MaxTokens: 1024,
	}
	in.ResponseFormat.Type = "json_schema"
	in.ResponseFormat.JSONSchema.Name = schema.Name
	in.ResponseFormat.JSONSchema.Strict = true
	in.ResponseFormat.JSONSchema.Schema = schema.Schema

	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.apiKey)

	var out openAIResponse
	if err := postJSON(ctx, p.httpClient, p.endpoint, header, in, &out); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}

	switch {
	case out.Error != nil:
		return "", fmt.Errorf("openai error (%s): %s", out.Error.Type, out.Error.Message)
	case len(out.Choices) == 0:
		return "", errors.New("openai returned no choices")
	case out.Choices[0].Message.Refusal != "":
		return "", fmt.Errorf("openai refused: %s", out.Choices[0].Message.Refusal)
	}
	return out.Choices[0].Message.Content, nil
}
