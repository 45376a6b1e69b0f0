package ai

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"workflow-analyst/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
	maxOut       int
	temperature  float64
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
// An empty baseURL keeps the SDK default endpoint.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, maxOut int, temperature float64) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel, maxOut: maxOut, temperature: temperature}, nil
}

func (g *GeminiAdapter) ListModels(ctx context.Context) ([]string, error) {
	var out []string
	for m, err := range g.client.Models.All(ctx) {
		if err != nil {
			break
		}
		if m != nil && m.Name != "" {
			out = append(out, m.Name)
		}
	}
	if len(out) == 0 && g.defaultModel != "" {
		out = []string{g.defaultModel}
	}
	return out, nil
}

func (g *GeminiAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	m, err := g.client.Models.Get(context.Background(), modelOrDefault(model, g.defaultModel), nil)
	if err != nil {
		// minimal info so callers aren't blocked
		return adapter.ModelInfo{Name: model}, nil
	}
	return adapter.ModelInfo{
		Name:        m.Name,
		Description: m.Description,
		MaxTokens:   int(m.InputTokenLimit),
		Supports:    m.SupportedActions,
	}, nil
}

func (g *GeminiAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	_, contents := splitSystem(messages)
	resp, err := g.client.Models.CountTokens(ctx, modelOrDefault(model, g.defaultModel), contents, nil)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}

func (g *GeminiAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := g.ChatWithUsage(ctx, model, messages)
	return reply, err
}

// ChatWithUsage sends one GenerateContent request. System messages become the system instruction.
func (g *GeminiAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	system, contents := splitSystem(messages)
	if len(contents) == 0 {
		return "", adapter.Usage{}, errors.New("gemini: no messages")
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxOut),
	}
	if g.temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(g.temperature))
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, modelOrDefault(model, g.defaultModel), contents, cfg)
	if err != nil {
		return "", adapter.Usage{}, err
	}

	u := adapter.Usage{}
	if resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return resp.Text(), u, nil
}

// splitSystem joins system messages into one instruction and converts the rest to genai history.
func splitSystem(msgs []adapter.Message) (string, []*genai.Content) {
	var system []string
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case adapter.RoleSystem:
			system = append(system, m.Content)
		case adapter.RoleAssistant, "model":
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), out
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
