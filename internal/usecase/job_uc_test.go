package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/model"
	"workflow-analyst/internal/domain/ports/adapter"
	"workflow-analyst/internal/infra/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []adapter.JobEvent
	err    error
}

func (p *recordingPublisher) PublishJobEvent(_ context.Context, ev adapter.JobEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) statuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Status)
	}
	return out
}

func newJobUC(t *testing.T) (*jobUC, *memory.JobStore, *recordingPublisher) {
	t.Helper()
	store := memory.NewJobStore()
	pub := &recordingPublisher{}
	return NewJobUseCase(store, pub, "job:", nil), store, pub
}

func TestJobUC_Lifecycle(t *testing.T) {
	ctx := context.Background()
	uc, store, pub := newJobUC(t)

	job, err := uc.CreateJob(ctx, "j1", model.JobTypeWorkflowGeneration, map[string]string{"userPrompt": "hi"})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.JSONEq(t, `{"userPrompt":"hi"}`, string(job.Payload))

	_, err = store.Get(ctx, "job:j1")
	require.NoError(t, err, "record should be stored under the key prefix")

	_, err = uc.UpdateStatus(ctx, "j1", model.JobStatusProcessing, model.JobPatch{})
	require.NoError(t, err)

	done, err := uc.CompleteJob(ctx, "j1", map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, done.Status)
	assert.JSONEq(t, `{"n":1}`, string(done.Result))
	assert.False(t, done.UpdatedAt.Before(done.CreatedAt))

	got, err := uc.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, done.Result, got.Result)
	assert.Empty(t, got.Error)

	assert.Equal(t, []string{"pending", "processing", "completed"}, pub.statuses())
}

func TestJobUC_RejectsBackwardTransitions(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newJobUC(t)
	_, err := uc.CreateJob(ctx, "j2", model.JobTypeWorkflowGeneration, nil)
	require.NoError(t, err)
	_, err = uc.FailJob(ctx, "j2", errors.New("x"))
	require.NoError(t, err)

	for _, st := range []model.JobStatus{model.JobStatusPending, model.JobStatusProcessing, model.JobStatusCompleted} {
		_, err = uc.UpdateStatus(ctx, "j2", st, model.JobPatch{})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "failed -> %s", st)
	}
	got, err := uc.GetJob(ctx, "j2")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
}

func TestJobUC_NotFoundAndCorrupt(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newJobUC(t)

	_, err := uc.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.UpdateStatus(ctx, "missing", model.JobStatusProcessing, model.JobPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Set(ctx, "job:bad", "not json"))
	_, err = uc.GetJob(ctx, "bad")
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)
	assert.False(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, store.Set(ctx, "job:weird", `{"id":"weird","status":"exploded"}`))
	_, err = uc.GetJob(ctx, "weird")
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)
}

func TestJobUC_FailJobSanitizes(t *testing.T) {
	ctx := context.Background()
	uc, _, pub := newJobUC(t)
	_, err := uc.CreateJob(ctx, "j3", model.JobTypeWorkflowGeneration, nil)
	require.NoError(t, err)

	cause := fmt.Errorf("%w: dial tcp 10.0.0.7:443: api key sk-secret rejected", domain.ErrAIUnavailable)
	failed, err := uc.FailJob(ctx, "j3", cause)
	require.NoError(t, err)
	assert.Equal(t, "AI service is unavailable. Please try again later.", failed.Error)
	assert.Contains(t, failed.ErrorDetails, "sk-secret")

	statuses := pub.statuses()
	assert.Equal(t, "failed", statuses[len(statuses)-1])
	assert.NotContains(t, pub.events[len(pub.events)-1].Error, "sk-secret")
}

func TestJobUC_PublishErrorIsNotFatal(t *testing.T) {
	store := memory.NewJobStore()
	uc := NewJobUseCase(store, &recordingPublisher{err: errors.New("nats down")}, "", nil)
	_, err := uc.CreateJob(context.Background(), "j4", model.JobTypeWorkflowGeneration, nil)
	assert.NoError(t, err)
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "Workflow generation timed out. Please try again."},
		{fmt.Errorf("wrap: %w", domain.ErrQueueFull), "Server is busy. Please try again shortly."},
		{domain.NewValidationError(MsgPromptRequired), MsgPromptRequired},
		{errors.New("pq: relation does not exist"), "Workflow generation failed."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeError(tt.err))
	}
}
