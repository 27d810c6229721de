package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const chatCompletionsPath = "/v1/chat/completions"

// ChatCompletions talks to any chat-completion compatible server, such as
// a local LM Studio or llama.cpp instance.
type ChatCompletions struct {
	URL        string
	HTTPClient *http.Client
}

// NewChatCompletions returns a provider for the given server URL. The URL
// may point at the server root or at the chat-completions endpoint itself.
func NewChatCompletions(url string) *ChatCompletions {
	return &ChatCompletions{
		URL: url,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// endpoint normalises the configured URL to the chat-completions path.
func (c *ChatCompletions) endpoint() string {
	url := strings.TrimRight(c.URL, "/")
	if strings.HasSuffix(url, chatCompletionsPath) {
		return url
	}
	return url + chatCompletionsPath
}

// Healthy probes the server before a run. Servers differ in what they
// expose, so /health is tried first and /v1/models second.
func (c *ChatCompletions) Healthy(ctx context.Context) bool {
	base := strings.TrimSuffix(c.endpoint(), chatCompletionsPath)
	for _, path := range []string{"/health", "/v1/models"} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
		if err != nil {
			continue
		}
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return true
		}
	}
	return false
}

// Generate sends a system+user chat request and returns the assistant text.
func (c *ChatCompletions) Generate(ctx context.Context, config Config) (string, error) {
	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 200
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model": config.Model,
		"messages": []map[string]string{
			{"role": "system", "content": config.System},
			{"role": "user", "content": config.Prompt},
		},
		"temperature": config.Temperature,
		"max_tokens":  maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := c.endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("Sending chat completion request", "url", url, "model", config.Model)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from LLM server")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
