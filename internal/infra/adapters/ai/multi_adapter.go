package ai

import (
	"context"
	"sort"
	"strings"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*MultiAIAdapter)(nil)

// MultiAIAdapter routes each call to a provider adapter by model name.
type MultiAIAdapter struct {
	defaultProvider string // gemini | openai | compatible | static
	byProvider      map[string]adapter.AIServiceAdapter
	modelToProvider map[string]string
}

// NewMultiAIAdapter does not inject any default model; it only knows a default provider.
// Each provider adapter is responsible for its own default model.
func NewMultiAIAdapter(
	defaultProvider string,
	byProvider map[string]adapter.AIServiceAdapter,
	modelToProvider map[string]string,
) *MultiAIAdapter {
	return &MultiAIAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		byProvider:      byProvider,
		modelToProvider: modelToProvider,
	}
}

func (m *MultiAIAdapter) resolveProvider(model string) string {
	if p := m.modelToProvider[model]; p != "" {
		return strings.ToLower(p)
	}
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "gemini") && m.byProvider["gemini"] != nil:
		return "gemini"
	case strings.HasPrefix(l, "gpt") && m.byProvider["openai"] != nil:
		return "openai"
	default:
		return m.defaultProvider
	}
}

func (m *MultiAIAdapter) pick(model string) (adapter.AIServiceAdapter, error) {
	if a := m.byProvider[m.resolveProvider(model)]; a != nil {
		return a, nil
	}
	// last resort: first available in name order
	names := make([]string, 0, len(m.byProvider))
	for name := range m.byProvider {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if a := m.byProvider[name]; a != nil {
			return a, nil
		}
	}
	return nil, domain.ErrAIUnavailable
}

func (m *MultiAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(m.modelToProvider)+4)

	for model := range m.modelToProvider {
		if _, ok := seen[model]; !ok {
			seen[model] = struct{}{}
			out = append(out, model)
		}
	}
	for _, a := range m.byProvider {
		list, _ := a.ListModels(ctx)
		for _, name := range list {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MultiAIAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	a, err := m.pick(model)
	if err != nil {
		return adapter.ModelInfo{Name: model}, nil
	}
	return a.GetModelInfo(model)
}

func (m *MultiAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	a, err := m.pick(model)
	if err != nil {
		return 0, err
	}
	return a.CountTokens(ctx, model, messages)
}

func (m *MultiAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	a, err := m.pick(model)
	if err != nil {
		return "", err
	}
	return a.Chat(ctx, model, messages)
}

func (m *MultiAIAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	a, err := m.pick(model)
	if err != nil {
		return "", adapter.Usage{}, err
	}
	return a.ChatWithUsage(ctx, model, messages)
}
