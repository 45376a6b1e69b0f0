package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/model"
	"workflow-analyst/internal/domain/ports/adapter"
	"workflow-analyst/internal/domain/ports/repository"
	"workflow-analyst/internal/infra/logging"
	"workflow-analyst/internal/infra/metrics"
)

// Compile-time check
var _ JobUseCase = (*jobUC)(nil)

// JobUseCase owns the job record lifecycle on top of a JobStore.
type JobUseCase interface {
	CreateJob(ctx context.Context, id, jobType string, payload any) (*model.Job, error)
	UpdateStatus(ctx context.Context, id string, status model.JobStatus, patch model.JobPatch) (*model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	CompleteJob(ctx context.Context, id string, result any) (*model.Job, error)
	FailJob(ctx context.Context, id string, cause error) (*model.Job, error)
}

type jobUC struct {
	store     repository.JobStore
	events    adapter.JobEventPublisher
	keyPrefix string
	log       *zerolog.Logger
}

// NewJobUseCase wires the store. events may be nil.
func NewJobUseCase(store repository.JobStore, events adapter.JobEventPublisher, keyPrefix string, logger *zerolog.Logger) *jobUC {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "jobs").Logger()
	return &jobUC{store: store, events: events, keyPrefix: keyPrefix, log: &l}
}

func (u *jobUC) key(id string) string { return u.keyPrefix + id }

func (u *jobUC) CreateJob(ctx context.Context, id, jobType string, payload any) (*model.Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode job payload: %w", err)
	}
	job, err := model.NewJob(id, jobType, raw)
	if err != nil {
		return nil, err
	}
	if err := u.save(ctx, job); err != nil {
		return nil, err
	}
	metrics.IncJobTransition(string(job.Status))
	logging.With(logging.WithJobID(ctx, job.ID), u.log).Info().Str("type", jobType).Msg("job created")
	u.publish(ctx, job)
	return job, nil
}

func (u *jobUC) UpdateStatus(ctx context.Context, id string, status model.JobStatus, patch model.JobPatch) (*model.Job, error) {
	job, err := u.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	from := job.Status
	if err := job.Apply(status, patch); err != nil {
		return nil, err
	}
	if err := u.save(ctx, job); err != nil {
		return nil, err
	}
	metrics.IncJobTransition(string(status))
	logging.With(logging.WithJobID(ctx, id), u.log).Debug().
		Str("from", string(from)).
		Str("to", string(status)).
		Msg("job status updated")
	u.publish(ctx, job)
	return job, nil
}

// GetJob returns domain.ErrNotFound for unknown ids and domain.ErrCorruptRecord
// when the stored value cannot be decoded.
func (u *jobUC) GetJob(ctx context.Context, id string) (*model.Job, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	raw, err := u.store.Get(ctx, u.key(id))
	if err != nil {
		return nil, err
	}
	var job model.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("%w: job %s: %v", domain.ErrCorruptRecord, id, err)
	}
	if _, err := model.ParseJobStatus(string(job.Status)); err != nil {
		return nil, fmt.Errorf("%w: job %s: %v", domain.ErrCorruptRecord, id, err)
	}
	return &job, nil
}

func (u *jobUC) CompleteJob(ctx context.Context, id string, result any) (*model.Job, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode job result: %w", err)
	}
	return u.UpdateStatus(ctx, id, model.JobStatusCompleted, model.JobPatch{Result: raw})
}

// FailJob stores a caller-safe message in Error and the full cause in ErrorDetails.
func (u *jobUC) FailJob(ctx context.Context, id string, cause error) (*model.Job, error) {
	if cause == nil {
		cause = errors.New("unknown failure")
	}
	return u.UpdateStatus(ctx, id, model.JobStatusFailed, model.JobPatch{
		Error:        SanitizeError(cause),
		ErrorDetails: cause.Error(),
	})
}

func (u *jobUC) save(ctx context.Context, job *model.Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := u.store.Set(ctx, u.key(job.ID), string(b)); err != nil {
		return fmt.Errorf("store job %s: %w", job.ID, err)
	}
	return nil
}

func (u *jobUC) publish(ctx context.Context, job *model.Job) {
	if u.events == nil {
		return
	}
	ev := adapter.JobEvent{
		JobID:     job.ID,
		Type:      job.Type,
		Status:    string(job.Status),
		Error:     job.Error,
		UpdatedAt: job.UpdatedAt,
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := u.events.PublishJobEvent(pctx, ev); err != nil {
		logging.With(logging.WithJobID(ctx, job.ID), u.log).Warn().Err(err).Msg("publish job event failed")
	}
}

// SanitizeError maps an internal failure to a message that is safe to return to clients.
func SanitizeError(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Msg
	case errors.Is(err, context.DeadlineExceeded):
		return "Workflow generation timed out. Please try again."
	case errors.Is(err, context.Canceled), errors.Is(err, domain.ErrPoolStopped):
		return "Workflow generation was cancelled."
	case errors.Is(err, domain.ErrQueueFull):
		return "Server is busy. Please try again shortly."
	case errors.Is(err, domain.ErrAIUnavailable):
		return "AI service is unavailable. Please try again later."
	default:
		return "Workflow generation failed."
	}
}
