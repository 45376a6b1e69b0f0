package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"workflow-analyst/internal/domain/ports/adapter"
	"workflow-analyst/internal/infra/llm"
)

var _ adapter.AIServiceAdapter = (*CompatibleAdapter)(nil)

// CompatibleAdapter talks to any server exposing an OpenAI-style /chat/completions
// endpoint (local model runners, gateways, mock servers). The API key is optional.
type CompatibleAdapter struct {
	apiKey      string
	base        string
	model       string
	maxOut      int
	temperature float64
	client      *http.Client
}

func NewCompatibleAdapter(apiKey, model, base string, maxOut int, temperature float64, timeout time.Duration) (*CompatibleAdapter, error) {
	if base == "" {
		return nil, errors.New("compatible: base url empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &CompatibleAdapter{
		apiKey:      apiKey,
		base:        strings.TrimRight(base, "/"),
		model:       model,
		maxOut:      maxOut,
		temperature: temperature,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

func (c *CompatibleAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{c.model}, nil
}

func (c *CompatibleAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{
		Name:        modelOrDefault(model, c.model),
		Description: "OpenAI-compatible model",
		Supports:    []string{"text"},
	}, nil
}

// CountTokens estimates 4 bytes per token; compatible servers expose no counter.
func (c *CompatibleAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += (len(m.Content) + 3) / 4
	}
	return n, nil
}

func (c *CompatibleAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	s, _, err := c.ChatWithUsage(ctx, model, messages)
	return s, err
}

type compatibleRequest struct {
	Model       string            `json:"model"`
	Messages    []adapter.Message `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
}

type compatibleResponse struct {
	Choices []struct {
		Message adapter.Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *CompatibleAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	b, err := json.Marshal(compatibleRequest{
		Model:       modelOrDefault(model, c.model),
		Messages:    messages,
		MaxTokens:   c.maxOut,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", adapter.Usage{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", adapter.Usage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", adapter.Usage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", adapter.Usage{}, &llm.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload compatibleResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", adapter.Usage{}, fmt.Errorf("compatible: decode response: %w", err)
	}
	u := adapter.Usage{
		PromptTokens:     payload.Usage.PromptTokens,
		CompletionTokens: payload.Usage.CompletionTokens,
		TotalTokens:      payload.Usage.TotalTokens,
	}
	for _, ch := range payload.Choices {
		if ch.Message.Content != "" {
			return ch.Message.Content, u, nil
		}
	}
	return "", u, errors.New("no choice content")
}
