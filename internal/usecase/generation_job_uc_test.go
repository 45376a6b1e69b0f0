package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/model"
	"workflow-analyst/internal/domain/ports/adapter"
	"workflow-analyst/internal/infra/memory"
)

// heldQueue keeps submitted tasks until the test runs them.
type heldQueue struct {
	mu    sync.Mutex
	tasks []adapter.Task
	err   error
}

func (q *heldQueue) Submit(_ string, task adapter.Task) (adapter.TaskHandle, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return doneHandle{}, nil
}

func (q *heldQueue) runAll(ctx context.Context) []error {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()
	errs := make([]error, 0, len(tasks))
	for _, t := range tasks {
		errs = append(errs, t(ctx))
	}
	return errs
}

type doneHandle struct{}

func (doneHandle) Wait(context.Context) error { return nil }
func (doneHandle) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (doneHandle) Cancel() {}

type panickyWorkflow struct{ WorkflowUseCase }

func (panickyWorkflow) Generate(context.Context, model.GenerateRequest) (*model.GenerateResult, error) {
	panic("nil map write")
}

func newGenerationUC(t *testing.T, wf WorkflowUseCase, q adapter.TaskQueue) (*generationJobUC, *jobUC) {
	t.Helper()
	jobs := NewJobUseCase(memory.NewJobStore(), nil, "job:", nil)
	return NewGenerationJobUseCase(jobs, wf, q, nil), jobs
}

func TestGenerationJob_SubmitThenComplete(t *testing.T) {
	ctx := context.Background()
	q := &heldQueue{}
	wf := NewWorkflowUseCase(&stubCompleter{reply: "not json at all"}, nil, false)
	uc, _ := newGenerationUC(t, wf, q)

	job, h, err := uc.Submit(ctx, model.GenerateRequest{UserPrompt: "  customer order flow  "})
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.NotEmpty(t, job.ID)
	assert.JSONEq(t, `{"userPrompt":"customer order flow","currentNodes":null,"currentEdges":null,"conversationHistory":null,"questionCount":0}`, string(job.Payload))

	view, err := uc.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, view.Status)
	assert.Equal(t, QueuedEstimate, view.EstimatedTimeRemaining)
	assert.Empty(t, view.Result)

	for _, e := range q.runAll(ctx) {
		require.NoError(t, e)
	}

	view, err = uc.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, view.Status)
	assert.Equal(t, "Analysis completed successfully!", view.Message)
	var res model.GenerateResult
	require.NoError(t, json.Unmarshal(view.Result, &res))
	assert.NotEmpty(t, res.Nodes)
	assert.Empty(t, view.Error)
}

func TestGenerationJob_RejectsBlankPrompt(t *testing.T) {
	q := &heldQueue{}
	uc, _ := newGenerationUC(t, NewWorkflowUseCase(&stubCompleter{}, nil, false), q)
	_, _, err := uc.Submit(context.Background(), model.GenerateRequest{UserPrompt: " \n"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Empty(t, q.tasks)
}

func TestGenerationJob_QueueFullMarksFailed(t *testing.T) {
	ctx := context.Background()
	uc, jobs := newGenerationUC(t, NewWorkflowUseCase(&stubCompleter{}, nil, false), &heldQueue{err: domain.ErrQueueFull})

	job, h, err := uc.Submit(ctx, model.GenerateRequest{UserPrompt: "x"})
	assert.ErrorIs(t, err, domain.ErrQueueFull)
	assert.Nil(t, h)
	require.NotNil(t, job)

	stored, err := jobs.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, stored.Status)
	assert.Equal(t, "Server is busy. Please try again shortly.", stored.Error)
}

func TestGenerationJob_ProviderFailureIsSanitized(t *testing.T) {
	ctx := context.Background()
	q := &heldQueue{}
	cause := fmt.Errorf("%w: 401 invalid key sk-live-123", domain.ErrAIUnavailable)
	uc, _ := newGenerationUC(t, NewWorkflowUseCase(&stubCompleter{err: cause}, nil, false), q)

	job, _, err := uc.Submit(ctx, model.GenerateRequest{UserPrompt: "x"})
	require.NoError(t, err)
	errs := q.runAll(ctx)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrAIUnavailable)

	view, err := uc.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, view.Status)
	assert.Equal(t, "AI service is unavailable. Please try again later.", view.Error)
	b, _ := json.Marshal(view)
	assert.NotContains(t, string(b), "sk-live-123")
}

func TestGenerationJob_TimeoutStillRecordsFailure(t *testing.T) {
	q := &heldQueue{}
	uc, _ := newGenerationUC(t, NewWorkflowUseCase(&stubCompleter{err: context.DeadlineExceeded}, nil, false), q)

	job, _, err := uc.Submit(context.Background(), model.GenerateRequest{UserPrompt: "x"})
	require.NoError(t, err)

	tctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-tctx.Done()
	q.runAll(tctx)

	view, err := uc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, view.Status)
	assert.Equal(t, "Workflow generation timed out. Please try again.", view.Error)
}

func TestGenerationJob_PanicBecomesFailure(t *testing.T) {
	ctx := context.Background()
	q := &heldQueue{}
	uc, _ := newGenerationUC(t, panickyWorkflow{}, q)

	job, _, err := uc.Submit(ctx, model.GenerateRequest{UserPrompt: "x"})
	require.NoError(t, err)
	errs := q.runAll(ctx)
	require.Error(t, errs[0])

	view, err := uc.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, view.Status)
	assert.Equal(t, "Workflow generation failed.", view.Error)
}

func TestGenerationJob_StatusUnknownID(t *testing.T) {
	uc, _ := newGenerationUC(t, NewWorkflowUseCase(&stubCompleter{}, nil, false), &heldQueue{})
	_, err := uc.Status(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewJobStatusView_Estimates(t *testing.T) {
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	job := &model.Job{ID: "j", Status: model.JobStatusProcessing, CreatedAt: created, UpdatedAt: created}

	v := NewJobStatusView(job, created.Add(30*time.Second))
	assert.Equal(t, 30, v.RuntimeSeconds)
	assert.Equal(t, "60 seconds", v.EstimatedTimeRemaining)

	v = NewJobStatusView(job, created.Add(5*time.Minute))
	assert.Equal(t, "0 seconds", v.EstimatedTimeRemaining)

	job.Status = model.JobStatusFailed
	job.Error = "Workflow generation failed."
	job.ErrorDetails = "stack trace"
	v = NewJobStatusView(job, created)
	assert.Empty(t, v.EstimatedTimeRemaining)
	assert.Equal(t, "Workflow generation failed.", v.Error)
}
