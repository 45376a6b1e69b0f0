package ai

import (
	"context"

	"workflow-analyst/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*StaticAdapter)(nil)

// DefaultStaticReply is not JSON, so every pass falls back to its canned result.
const DefaultStaticReply = "static provider: no model output"

// StaticAdapter answers every chat with a fixed reply. Used for offline development.
type StaticAdapter struct {
	reply string
}

func NewStaticAdapter(reply string) *StaticAdapter {
	if reply == "" {
		reply = DefaultStaticReply
	}
	return &StaticAdapter{reply: reply}
}

func (a *StaticAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{"static"}, nil
}

func (a *StaticAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{
		Name:        "static",
		Description: "Fixed reply for local development",
		Supports:    []string{"text"},
	}, nil
}

func (a *StaticAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += (len(m.Content) + 3) / 4
	}
	return n, nil
}

func (a *StaticAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	s, _, err := a.ChatWithUsage(ctx, model, messages)
	return s, err
}

func (a *StaticAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	if err := ctx.Err(); err != nil {
		return "", adapter.Usage{}, err
	}
	in, _ := a.CountTokens(ctx, model, messages)
	out := (len(a.reply) + 3) / 4
	return a.reply, adapter.Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out}, nil
}
