package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/ports/adapter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAI struct {
	reply    string
	err      error
	gotModel string
	gotMsgs  []adapter.Message
	delay    time.Duration

	usage    *adapter.Usage
	countErr error
	counted  [][]adapter.Message
}

func (f *fakeAI) ListModels(context.Context) ([]string, error) { return []string{"m"}, nil }
func (f *fakeAI) GetModelInfo(m string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: m}, nil
}

// CountTokens counts one token per word.
func (f *fakeAI) CountTokens(_ context.Context, _ string, msgs []adapter.Message) (int, error) {
	f.counted = append(f.counted, msgs)
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, m := range msgs {
		n += len(strings.Fields(m.Content))
	}
	return n, nil
}
func (f *fakeAI) Chat(ctx context.Context, model string, msgs []adapter.Message) (string, error) {
	s, _, err := f.ChatWithUsage(ctx, model, msgs)
	return s, err
}
func (f *fakeAI) ChatWithUsage(ctx context.Context, model string, msgs []adapter.Message) (string, adapter.Usage, error) {
	f.gotModel, f.gotMsgs = model, msgs
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", adapter.Usage{}, ctx.Err()
		}
	}
	if f.usage != nil {
		return f.reply, *f.usage, f.err
	}
	return f.reply, adapter.Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7}, f.err
}

func TestGateway_Complete(t *testing.T) {
	ai := &fakeAI{reply: "```json\n{\"ok\": true}\n```"}
	g := NewGateway(ai, Options{Provider: "static", Model: "m1"}, nil)

	var out struct{ OK bool }
	raw, err := g.CompleteJSON(context.Background(), "describe", &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Contains(t, raw, "ok")
	assert.Equal(t, "m1", ai.gotModel)
	require.Len(t, ai.gotMsgs, 1)
	assert.Equal(t, adapter.RoleUser, ai.gotMsgs[0].Role)
}

func TestGateway_EmptyPrompt(t *testing.T) {
	g := NewGateway(&fakeAI{}, Options{}, nil)
	_, err := g.Complete(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGateway_ProviderErrorIsUnavailable(t *testing.T) {
	g := NewGateway(&fakeAI{err: &StatusError{Code: 401, Body: "bad key"}}, Options{Model: "m"}, nil)
	_, err := g.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
	assert.True(t, IsFatal(err))
}

func TestGateway_Timeout(t *testing.T) {
	g := NewGateway(&fakeAI{delay: time.Second}, Options{Model: "m", Timeout: 10 * time.Millisecond}, nil)
	_, err := g.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestGateway_DecodeFailureKeepsRaw(t *testing.T) {
	g := NewGateway(&fakeAI{reply: "sorry, I cannot"}, Options{Model: "m"}, nil)
	var out map[string]any
	raw, err := g.CompleteJSON(context.Background(), "hi", &out)
	assert.ErrorIs(t, err, ErrNoJSONObject)
	assert.False(t, IsUnavailable(err))
	assert.Equal(t, "sorry, I cannot", raw)
}

func TestClassify(t *testing.T) {
	assert.True(t, IsTransient(Classify(&StatusError{Code: 503})))
	assert.True(t, IsTransient(Classify(&StatusError{Code: 429})))
	assert.True(t, IsFatal(Classify(&StatusError{Code: 400})))
	assert.True(t, IsTransient(Classify(context.DeadlineExceeded)))
	assert.False(t, IsTransient(Classify(context.Canceled)))
	assert.Nil(t, Classify(nil))

	already := NewFatalError(errors.New("x"))
	assert.Same(t, already, Classify(already))
}

func TestGateway_CountsTokensWhenProviderReportsNone(t *testing.T) {
	ai := &fakeAI{reply: "{\"nodes\": []}", usage: &adapter.Usage{}}
	g := NewGateway(ai, Options{Provider: "compatible", Model: "m1"}, nil)

	_, err := g.Complete(context.Background(), "map the hiring process")
	require.NoError(t, err)
	require.Len(t, ai.counted, 2, "prompt and reply should both be counted")
	assert.Equal(t, "map the hiring process", ai.counted[0][0].Content)
	assert.Equal(t, adapter.RoleAssistant, ai.counted[1][0].Role)

	u := g.countUsage(context.Background(), ai.gotMsgs, "a b", adapter.Usage{})
	assert.Equal(t, adapter.Usage{PromptTokens: 4, CompletionTokens: 2, TotalTokens: 6}, u)

	// reported completion tokens are kept
	u = g.countUsage(context.Background(), ai.gotMsgs, "a b", adapter.Usage{CompletionTokens: 9, TotalTokens: 9})
	assert.Equal(t, adapter.Usage{PromptTokens: 4, CompletionTokens: 9, TotalTokens: 13}, u)
}

func TestGateway_ReportedUsageSkipsCounting(t *testing.T) {
	ai := &fakeAI{reply: "ok"}
	g := NewGateway(ai, Options{Model: "m1"}, nil)
	_, err := g.Complete(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, ai.counted)
}

func TestGateway_CountErrorLeavesZero(t *testing.T) {
	ai := &fakeAI{reply: "ok", usage: &adapter.Usage{}, countErr: errors.New("no encoder")}
	g := NewGateway(ai, Options{Model: "m1"}, nil)
	_, err := g.Complete(context.Background(), "x")
	require.NoError(t, err)

	u := g.countUsage(context.Background(), ai.gotMsgs, "ok", adapter.Usage{})
	assert.Equal(t, adapter.Usage{}, u)
}
