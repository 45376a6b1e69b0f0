package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/model"
	"workflow-analyst/internal/domain/ports/adapter"
	"workflow-analyst/internal/infra/logging"
	"workflow-analyst/internal/infra/metrics"
)

// Poll endpoint estimates.
const (
	QueuedEstimate      = "30-120 seconds"
	processingBudgetSec = 90
)

// Compile-time check
var _ GenerationJobUseCase = (*generationJobUC)(nil)

// GenerationJobUseCase runs the generate flow in the background and reports on it.
type GenerationJobUseCase interface {
	// Submit stores a pending job and queues it. On domain.ErrQueueFull the job is
	// already marked failed and is returned alongside the error.
	Submit(ctx context.Context, req model.GenerateRequest) (*model.Job, adapter.TaskHandle, error)
	Status(ctx context.Context, id string) (*JobStatusView, error)
}

type generationJobUC struct {
	jobs     JobUseCase
	workflow WorkflowUseCase
	queue    adapter.TaskQueue
	log      *zerolog.Logger
	now      func() time.Time
}

func NewGenerationJobUseCase(jobs JobUseCase, workflow WorkflowUseCase, queue adapter.TaskQueue, logger *zerolog.Logger) *generationJobUC {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "generation_jobs").Logger()
	return &generationJobUC{jobs: jobs, workflow: workflow, queue: queue, log: &l, now: time.Now}
}

func (g *generationJobUC) Submit(ctx context.Context, req model.GenerateRequest) (*model.Job, adapter.TaskHandle, error) {
	req.UserPrompt = strings.TrimSpace(req.UserPrompt)
	if req.UserPrompt == "" {
		return nil, nil, domain.NewValidationError(MsgPromptRequired)
	}
	job, err := g.jobs.CreateJob(ctx, "", model.JobTypeWorkflowGeneration, req)
	if err != nil {
		return nil, nil, err
	}
	id := job.ID
	h, err := g.queue.Submit("generate:"+id, func(tctx context.Context) error {
		return g.run(logging.WithTraceID(tctx, logging.TraceIDFrom(ctx)), id, req)
	})
	if err != nil {
		metrics.IncJobRejected()
		logging.With(logging.WithJobID(ctx, id), g.log).Warn().Err(err).Msg("job not queued")
		if failed, ferr := g.jobs.FailJob(ctx, id, err); ferr == nil {
			job = failed
		}
		return job, nil, err
	}
	return job, h, nil
}

// run is the background unit. Status writes use a context detached from the task
// so a timed-out task can still record its failure.
func (g *generationJobUC) run(ctx context.Context, id string, req model.GenerateRequest) (err error) {
	ctx = logging.WithJobID(ctx, id)
	log := logging.With(ctx, g.log)
	wctx := context.WithoutCancel(ctx)
	start := time.Now()
	metrics.JobStarted()
	status := model.JobStatusFailed
	defer func() {
		metrics.JobFinished()
		metrics.ObserveJobDuration(string(status), time.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in generation job: %v", r)
			log.Error().Str("stack", string(debug.Stack())).Msg("job panicked")
			if _, ferr := g.jobs.FailJob(wctx, id, err); ferr != nil {
				log.Error().Err(ferr).Msg("record job failure")
			}
		}
	}()

	if _, err := g.jobs.UpdateStatus(wctx, id, model.JobStatusProcessing, model.JobPatch{}); err != nil {
		log.Error().Err(err).Msg("mark job processing")
		return err
	}

	res, err := g.workflow.Generate(ctx, req)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		log.Error().Err(err).Msg("generation failed")
		if _, ferr := g.jobs.FailJob(wctx, id, err); ferr != nil {
			log.Error().Err(ferr).Msg("record job failure")
		}
		return err
	}
	if _, err := g.jobs.CompleteJob(wctx, id, res); err != nil {
		log.Error().Err(err).Msg("record job result")
		return err
	}
	status = model.JobStatusCompleted
	log.Info().Dur("elapsed", time.Since(start)).Msg("job completed")
	return nil
}

// JobStatusView is the poll response body.
type JobStatusView struct {
	JobID                  string          `json:"jobId"`
	Status                 model.JobStatus `json:"status"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt"`
	RuntimeSeconds         int             `json:"runtimeSeconds"`
	Message                string          `json:"message"`
	EstimatedTimeRemaining string          `json:"estimatedTimeRemaining,omitempty"`
	Result                 json.RawMessage `json:"result,omitempty"`
	Error                  string          `json:"error,omitempty"`
}

func (g *generationJobUC) Status(ctx context.Context, id string) (*JobStatusView, error) {
	job, err := g.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	v := NewJobStatusView(job, g.now())
	return &v, nil
}

// NewJobStatusView renders job for polling at time now. ErrorDetails is never exposed.
func NewJobStatusView(job *model.Job, now time.Time) JobStatusView {
	runtime := int(job.Runtime(now) / time.Second)
	v := JobStatusView{
		JobID:          job.ID,
		Status:         job.Status,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
		RuntimeSeconds: runtime,
	}
	switch job.Status {
	case model.JobStatusPending:
		v.Message = "Job is queued and waiting to be processed..."
		v.EstimatedTimeRemaining = QueuedEstimate
	case model.JobStatusProcessing:
		v.Message = "Analyzing your workflow with the AI model..."
		v.EstimatedTimeRemaining = fmt.Sprintf("%d seconds", max(0, processingBudgetSec-runtime))
	case model.JobStatusCompleted:
		v.Message = "Analysis completed successfully!"
		v.Result = job.Result
	case model.JobStatusFailed:
		v.Message = "Analysis failed. Please try again."
		v.Error = job.Error
	default:
		v.Message = "Unknown job status"
	}
	return v
}
