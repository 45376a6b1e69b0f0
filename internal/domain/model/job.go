package model

import (
	"encoding/json"
	"fmt"
	"time"

	"workflow-analyst/internal/domain"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobTypeWorkflowGeneration is the only job type submitted by the async endpoint.
const JobTypeWorkflowGeneration = "workflow-generation"

// ParseJobStatus rejects anything outside the closed set.
func ParseJobStatus(s string) (JobStatus, error) {
	switch st := JobStatus(s); st {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown job status %q", domain.ErrInvalidArgument, s)
	}
}

func (s JobStatus) rank() int {
	switch s {
	case JobStatusPending:
		return 0
	case JobStatusProcessing:
		return 1
	case JobStatusCompleted, JobStatusFailed:
		return 2
	default:
		return -1
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed:
		return true
	case JobStatusPending, JobStatusProcessing:
		return false
	default:
		return false
	}
}

// CanTransitionTo allows forward moves only: pending -> processing -> completed|failed.
// A pending job may also fail or complete directly.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	from, to := s.rank(), next.rank()
	if from < 0 || to < 0 || s.IsTerminal() {
		return false
	}
	return to > from
}

// Job is the record kept in the job store, serialized as JSON.
type Job struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Status       JobStatus       `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	Error        string          `json:"error,omitempty"`
	ErrorDetails string          `json:"errorDetails,omitempty"`
}

func NewJob(id, jobType string, payload json.RawMessage) (*Job, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if jobType == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	return &Job{
		ID:        id,
		Type:      jobType,
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Payload:   payload,
	}, nil
}

// JobPatch carries optional fields merged into a job on a status update.
type JobPatch struct {
	Result       json.RawMessage
	Error        string
	ErrorDetails string
}

// Apply moves the job to next and merges the patch.
func (j *Job) Apply(next JobStatus, p JobPatch) error {
	if !j.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, j.Status, next)
	}
	j.Status = next
	if p.Result != nil {
		j.Result = p.Result
	}
	if p.Error != "" {
		j.Error = p.Error
	}
	if p.ErrorDetails != "" {
		j.ErrorDetails = p.ErrorDetails
	}
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// Runtime is the time elapsed since the job was created.
func (j *Job) Runtime(now time.Time) time.Duration {
	if now.Before(j.CreatedAt) {
		return 0
	}
	return now.Sub(j.CreatedAt)
}
