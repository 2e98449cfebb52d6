package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// OutputSchema names a JSON Schema the provider must constrain the reply to.
type OutputSchema struct {
	Name   string
	Schema map[string]any
}

// LLMProvider sends a prompt to an LLM and returns the raw text response,
// which the provider constrains to out.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string, out OutputSchema) (string, error)
}

const systemPrompt = "You are a precise structured data extractor for job descriptions."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func chatMessages(prompt string) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}
}

// postJSON sends in as a JSON body to url and decodes a 200 reply into out.
// Other statuses come back as *model.HTTPError carrying the reply body.
func postJSON(ctx context.Context, client *http.Client, url string, header http.Header, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		httpErr := &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(raw)),
		}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			httpErr.RetryAfter = time.Duration(secs) * time.Second
		}
		return httpErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
