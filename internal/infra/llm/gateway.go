package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/ports/adapter"
	"workflow-analyst/internal/infra/logging"
	"workflow-analyst/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Gateway sends a single prompt to the configured model and returns its raw text.
// Decoding and fallbacks are left to callers.
type Gateway struct {
	ai       adapter.AIServiceAdapter
	provider string
	model    string
	timeout  time.Duration
	log      *zerolog.Logger
	dev      bool
}

type Options struct {
	Provider string
	Model    string
	Timeout  time.Duration
	Dev      bool
}

func NewGateway(ai adapter.AIServiceAdapter, opts Options, log *zerolog.Logger) *Gateway {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Gateway{
		ai:       ai,
		provider: opts.Provider,
		model:    opts.Model,
		timeout:  opts.Timeout,
		log:      log,
		dev:      opts.Dev,
	}
}

// Model returns the model name used for completions.
func (g *Gateway) Model() string { return g.model }

// Complete sends prompt as one user message. Errors are classified with Classify
// and wrap domain.ErrAIUnavailable.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", domain.ErrInvalidArgument
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	log := logging.With(ctx, g.log)
	defer logging.TraceDuration(log, "Gateway.Complete")()

	msgs := []adapter.Message{{Role: adapter.RoleUser, Content: prompt}}
	start := time.Now()
	text, usage, err := g.ai.ChatWithUsage(ctx, g.model, msgs)
	latency := int(time.Since(start).Milliseconds())
	if err == nil && usage.PromptTokens == 0 {
		usage = g.countUsage(ctx, msgs, text, usage)
	}
	metrics.ObserveChatUsage(g.provider, g.model, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens, latency, err == nil)

	if err != nil {
		cerr := Classify(err)
		log.Error().Err(cerr).
			Str("model", g.model).
			Bool("transient", IsTransient(cerr)).
			Int("latency_ms", latency).
			Msg("model call failed")
		return "", fmt.Errorf("%w: %w", domain.ErrAIUnavailable, cerr)
	}

	log.Debug().
		Str("model", g.model).
		Int("tokens_in", usage.PromptTokens).
		Int("tokens_out", usage.CompletionTokens).
		Int("latency_ms", latency).
		Str("prompt", logging.Redact(prompt, g.dev)).
		Str("reply", logging.Truncate(logging.Redact(text, g.dev), 512)).
		Msg("model call ok")
	return text, nil
}

// countUsage fills token counts the provider left at zero using the adapter's
// local counter. Counting errors leave the field at zero.
func (g *Gateway) countUsage(ctx context.Context, msgs []adapter.Message, reply string, u adapter.Usage) adapter.Usage {
	log := logging.With(ctx, g.log)
	if n, err := g.ai.CountTokens(ctx, g.model, msgs); err != nil {
		log.Debug().Err(err).Msg("count prompt tokens")
	} else {
		u.PromptTokens = n
	}
	if u.CompletionTokens == 0 && reply != "" {
		n, err := g.ai.CountTokens(ctx, g.model, []adapter.Message{{Role: adapter.RoleAssistant, Content: reply}})
		if err != nil {
			log.Debug().Err(err).Msg("count completion tokens")
		} else {
			u.CompletionTokens = n
		}
	}
	if sum := u.PromptTokens + u.CompletionTokens; u.TotalTokens < sum {
		u.TotalTokens = sum
	}
	return u
}

// CompleteJSON calls Complete and decodes the first JSON object of the reply into v.
// The raw text is returned so callers can log it when decoding fails.
func (g *Gateway) CompleteJSON(ctx context.Context, prompt string, v any) (string, error) {
	text, err := g.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := DecodeObject(text, v); err != nil {
		return text, err
	}
	return text, nil
}

// IsUnavailable reports whether err came from the model call rather than decoding.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrAIUnavailable)
}
