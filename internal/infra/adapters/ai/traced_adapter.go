package ai

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"workflow-analyst/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*tracedAI)(nil)

type tracedAI struct {
	inner    adapter.AIServiceAdapter
	provider string
	tracer   trace.Tracer
}

// NewTracedAI records a span per chat call. Pass otel.GetTracerProvider() in production.
func NewTracedAI(inner adapter.AIServiceAdapter, provider string, tp trace.TracerProvider) adapter.AIServiceAdapter {
	if tp == nil {
		return inner
	}
	return &tracedAI{inner: inner, provider: provider, tracer: tp.Tracer("workflow-analyst/ai")}
}

func (t *tracedAI) ListModels(ctx context.Context) ([]string, error) {
	return t.inner.ListModels(ctx)
}

func (t *tracedAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return t.inner.GetModelInfo(model)
}

func (t *tracedAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return t.inner.CountTokens(ctx, model, messages)
}

func (t *tracedAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	s, _, err := t.ChatWithUsage(ctx, model, messages)
	return s, err
}

func (t *tracedAI) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	ctx, span := t.tracer.Start(ctx, "ai.chat",
		trace.WithAttributes(
			attribute.String("ai.provider", t.provider),
			attribute.String("ai.model", model),
			attribute.Int("ai.messages", len(messages)),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	text, usage, err := t.inner.ChatWithUsage(ctx, model, messages)
	span.SetAttributes(
		attribute.Int("ai.tokens_in", usage.PromptTokens),
		attribute.Int("ai.tokens_out", usage.CompletionTokens),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return text, usage, err
}
