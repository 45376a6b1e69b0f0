package ai

import (
	"context"

	"workflow-analyst/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.AIServiceAdapter = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.AIServiceAdapter
	sem   chan struct{}
}

// NewLimitedAI bounds concurrent provider calls. Waiting callers give up when ctx ends.
func NewLimitedAI(inner adapter.AIServiceAdapter, maxConcurrent int) adapter.AIServiceAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limitedAI) release() { <-l.sem }

func (l *limitedAI) ListModels(ctx context.Context) ([]string, error) {
	return l.inner.ListModels(ctx)
}

func (l *limitedAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return l.inner.GetModelInfo(model)
}

func (l *limitedAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.release()
	return l.inner.Chat(ctx, model, messages)
}

func (l *limitedAI) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	if err := l.acquire(ctx); err != nil {
		return "", adapter.Usage{}, err
	}
	defer l.release()
	return l.inner.ChatWithUsage(ctx, model, messages)
}

func (l *limitedAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	if err := l.acquire(ctx); err != nil {
		return 0, err
	}
	defer l.release()
	return l.inner.CountTokens(ctx, model, messages)
}
