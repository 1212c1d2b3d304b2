// Package ai talks to an OpenAI-compatible API for chat completions and
// embeddings.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Config struct {
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
}

type OpenAICompatibleClient struct {
	cfg        Config
	httpClient *http.Client
}

func NewOpenAICompatibleClient(cfg Config, httpClient *http.Client) *OpenAICompatibleClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	return &OpenAICompatibleClient{cfg: cfg, httpClient: httpClient}
}

// Complete sends messages to the chat model and returns the first choice's
// content. The content may be empty; callers decide what that means.
func (c *OpenAICompatibleClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	reqBody := map[string]interface{}{
		"model":    c.cfg.ChatModel,
		"messages": messages,
		"stream":   false,
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.post(ctx, "/chat/completions", "llm", reqBody, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty llm choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// post sends body as JSON to path and decodes a 2xx response into out.
// label prefixes error messages.
func (c *OpenAICompatibleClient) post(ctx context.Context, path, label string, body, out interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request failed: %w", label, err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build %s request failed: %w", label, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", label, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response failed: %w", label, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s response status %d: %s", label, resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s json failed: %w", label, err)
	}
	return nil
}
