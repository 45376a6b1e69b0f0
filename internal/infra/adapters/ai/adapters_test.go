package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"workflow-analyst/internal/domain/ports/adapter"
	"workflow-analyst/internal/infra/llm"
)

const chatReply = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"nodes\": []}"}}],
  "usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
}`

func chatServer(t *testing.T, status int, check func(r *http.Request, body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if check != nil {
			check(r, body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status < 300 {
			_, _ = w.Write([]byte(chatReply))
			return
		}
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompatibleAdapter_ChatWithUsage(t *testing.T) {
	srv := chatServer(t, http.StatusOK, func(r *http.Request, body map[string]any) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "local-model", body["model"])
		assert.EqualValues(t, 256, body["max_tokens"])
	})
	a, err := NewCompatibleAdapter("k", "local-model", srv.URL+"/v1/", 256, 0.5, time.Second)
	require.NoError(t, err)

	text, u, err := a.ChatWithUsage(context.Background(), "", []adapter.Message{{Role: adapter.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, `{"nodes": []}`, text)
	assert.Equal(t, adapter.Usage{PromptTokens: 12, CompletionTokens: 5, TotalTokens: 17}, u)
}

func TestCompatibleAdapter_StatusErrorIsClassified(t *testing.T) {
	srv := chatServer(t, http.StatusServiceUnavailable, nil)
	a, err := NewCompatibleAdapter("", "m", srv.URL, 0, 0, time.Second)
	require.NoError(t, err)

	_, err = a.Chat(context.Background(), "m", []adapter.Message{{Role: adapter.RoleUser, Content: "hi"}})
	var se *llm.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.True(t, llm.IsTransient(llm.Classify(err)))

	_, err = NewCompatibleAdapter("", "m", "", 0, 0, 0)
	assert.Error(t, err)
}

func TestOpenAIAdapter_ChatWithUsage(t *testing.T) {
	srv := chatServer(t, http.StatusOK, func(r *http.Request, body map[string]any) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		msgs, _ := body["messages"].([]any)
		assert.Len(t, msgs, 2)
	})
	a, err := NewOpenAIAdapter("sk-test", "gpt-4o-mini", srv.URL, 1024, 0.7)
	require.NoError(t, err)

	text, u, err := a.ChatWithUsage(context.Background(), "", []adapter.Message{
		{Role: adapter.RoleSystem, Content: "be brief"},
		{Role: adapter.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"nodes": []}`, text)
	assert.Equal(t, 17, u.TotalTokens)
}

type fixedEncoder struct{}

func (fixedEncoder) Encode(text string, _, _ []string) []int { return make([]int, len(text)) }

func TestOpenAIAdapter_CountTokens(t *testing.T) {
	a, err := NewOpenAIAdapter("sk-test", "gpt-4o-mini", "", 0, 0)
	require.NoError(t, err)
	msgs := []adapter.Message{{Role: "user", Content: "abcdefgh"}}

	a.encoderFor = func(string) (tokenEncoder, error) { return fixedEncoder{}, nil }
	n, err := a.CountTokens(context.Background(), "", msgs)
	require.NoError(t, err)
	assert.Equal(t, 3+4+4+8, n)

	a.encoderFor = func(string) (tokenEncoder, error) { return nil, errors.New("offline") }
	n, err = a.CountTokens(context.Background(), "", msgs)
	require.NoError(t, err)
	assert.Equal(t, 3+4+(4+8+3)/4, n)
}

type blockingAI struct {
	StaticAdapter
	inFlight, peak int32
	release        chan struct{}
}

func (b *blockingAI) ChatWithUsage(ctx context.Context, model string, msgs []adapter.Message) (string, adapter.Usage, error) {
	n := atomic.AddInt32(&b.inFlight, 1)
	for {
		p := atomic.LoadInt32(&b.peak)
		if n <= p || atomic.CompareAndSwapInt32(&b.peak, p, n) {
			break
		}
	}
	<-b.release
	atomic.AddInt32(&b.inFlight, -1)
	return "ok", adapter.Usage{}, nil
}

func TestLimitedAI_BoundsConcurrency(t *testing.T) {
	inner := &blockingAI{release: make(chan struct{})}
	l := NewLimitedAI(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = l.ChatWithUsage(context.Background(), "m", nil)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&inner.peak), int32(2))
}

func TestLimitedAI_WaitRespectsContext(t *testing.T) {
	inner := &blockingAI{release: make(chan struct{})}
	defer close(inner.release)
	l := NewLimitedAI(inner, 1)

	go func() { _, _, _ = l.ChatWithUsage(context.Background(), "m", nil) }()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := l.Chat(ctx, "m", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimitedAI_ZeroIsPassthrough(t *testing.T) {
	s := NewStaticAdapter("x")
	assert.Same(t, adapter.AIServiceAdapter(s), NewLimitedAI(s, 0))
}

func TestStaticAdapter(t *testing.T) {
	s := NewStaticAdapter("")
	text, u, err := s.ChatWithUsage(context.Background(), "", []adapter.Message{{Content: "12345678"}})
	require.NoError(t, err)
	assert.Equal(t, DefaultStaticReply, text)
	assert.Equal(t, 2, u.PromptTokens)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Chat(ctx, "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTracedAI_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ok := NewTracedAI(NewStaticAdapter(`{}`), "static", tp)
	_, err := ok.Chat(context.Background(), "m1", []adapter.Message{{Content: "hi"}})
	require.NoError(t, err)

	failing := NewTracedAI(NewStaticAdapter(`{}`), "static", tp)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = failing.Chat(ctx, "m2", nil)
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "ai.chat", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Equal(t, codes.Error, spans[1].Status.Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "static", attrs["ai.provider"])
	assert.Equal(t, "m1", attrs["ai.model"])
}

func TestSplitSystem(t *testing.T) {
	sys, contents := splitSystem([]adapter.Message{
		{Role: "system", Content: "a"},
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "r"},
		{Role: "system", Content: "b"},
	})
	assert.Equal(t, "a\n\nb", sys)
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "r", contents[1].Parts[0].Text)
	assert.Equal(t, "fallback", modelOrDefault("  ", "fallback"))
}
