package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"workflow-analyst/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

// tokenEncoder is the part of tiktoken used for counting.
type tokenEncoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
}

// OpenAIAdapter implements adapter.AIServiceAdapter with the official SDK (Chat Completions API).
type OpenAIAdapter struct {
	client      openai.Client
	model       string
	maxOut      int
	temperature float64
	encoderFor  func(model string) (tokenEncoder, error)
}

// NewOpenAIAdapter builds the SDK client. baseURL may point at any server speaking the same API.
func NewOpenAIAdapter(apiKey, model, baseURL string, maxOut int, temperature float64) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIAdapter{
		client:      openai.NewClient(opts...),
		model:       model,
		maxOut:      maxOut,
		temperature: temperature,
		encoderFor:  tiktokenEncoder,
	}, nil
}

func tiktokenEncoder(model string) (tokenEncoder, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	}
	if err != nil {
		return nil, err
	}
	return enc, nil
}

func (o *OpenAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{o.model}, nil
}

func (o *OpenAIAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{
		Name:        modelOrDefault(model, o.model),
		Description: "OpenAI Chat Completions model",
		Supports:    []string{"text"},
	}, nil
}

// CountTokens uses tiktoken with the usual per-message overhead.
// When the encoding tables cannot be loaded it falls back to a 4-bytes-per-token estimate.
func (o *OpenAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	enc, err := o.encoderFor(modelOrDefault(model, o.model))
	total := 3
	for _, m := range messages {
		total += 4
		if err != nil {
			total += (len(m.Role) + len(m.Content) + 3) / 4
			continue
		}
		total += len(enc.Encode(m.Role, nil, nil)) + len(enc.Encode(m.Content, nil, nil))
	}
	return total, nil
}

func (o *OpenAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	s, _, err := o.ChatWithUsage(ctx, model, messages)
	return s, err
}

func (o *OpenAIAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelOrDefault(model, o.model)),
		Messages: toOpenAIMessages(messages),
	}
	if o.maxOut > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.maxOut))
	}
	if o.temperature > 0 {
		params.Temperature = openai.Float(o.temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", adapter.Usage{}, err
	}
	u := adapter.Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, u, nil
		}
	}
	return "", u, errors.New("no choice content")
}

func toOpenAIMessages(msgs []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case adapter.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case adapter.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
