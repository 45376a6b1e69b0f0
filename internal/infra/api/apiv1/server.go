package apiv1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/model"
	"workflow-analyst/internal/infra/logging"
	"workflow-analyst/internal/usecase"
)

const maxBodyBytes = 4 << 20

// Compile-time check
var _ ServerInterface = (*Server)(nil)

// Server implements the workflow HTTP API on top of the use cases.
type Server struct {
	workflow usecase.WorkflowUseCase
	jobs     usecase.GenerationJobUseCase
	log      *zerolog.Logger
	dev      bool
}

func NewServer(workflow usecase.WorkflowUseCase, jobs usecase.GenerationJobUseCase, logger *zerolog.Logger, dev bool) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "api").Logger()
	return &Server{workflow: workflow, jobs: jobs, log: &l, dev: dev}
}

func (s *Server) GenerateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.workflow.Generate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, "Failed to generate workflow")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) AnalyzeWorkflow(w http.ResponseWriter, r *http.Request) {
	var req model.AnalyzeRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.workflow.Analyze(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, "Failed to analyze workflow")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) OptimizeWorkflow(w http.ResponseWriter, r *http.Request) {
	var req model.OptimizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.workflow.Optimize(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, "Failed to optimize workflow")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) StartAnalysis(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if !s.decode(w, r, &req) {
		return
	}
	// The job outlives the request.
	job, _, err := s.jobs.Submit(context.WithoutCancel(r.Context()), req)
	if err != nil {
		s.writeError(w, r, err, "Failed to start analysis")
		return
	}
	logging.With(logging.WithJobID(r.Context(), job.ID), s.log).Info().Msg("analysis job queued")
	writeJSON(w, http.StatusAccepted, StartAnalysisResponse{
		JobID:         job.ID,
		Status:        string(job.Status),
		Message:       "Workflow analysis started. Use the jobId to check status.",
		EstimatedTime: usecase.QueuedEstimate,
	})
}

func (s *Server) CheckStatus(w http.ResponseWriter, r *http.Request, params CheckStatusParams) {
	if params.JobID == nil || strings.TrimSpace(*params.JobID) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "jobId is required"})
		return
	}
	id := strings.TrimSpace(*params.JobID)
	view, err := s.jobs.Status(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, JobNotFoundResponse{
			Error:   "Job not found",
			JobID:   id,
			Message: "The job may have expired or never existed. Please start a new analysis.",
		})
		return
	case err != nil:
		s.writeError(w, r, err, "Failed to check job status")
		return
	}
	code := http.StatusOK
	if view.Status == model.JobStatusFailed {
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, view)
}

// decode reads a JSON body. An empty body decodes to the zero request so validation reports
// the missing field.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	logging.With(r.Context(), s.log).Debug().Err(err).Msg("bad request body")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Request body too large"})
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
	return false
}

// writeError is the single place where domain errors become HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Msg})
		return
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	case errors.Is(err, domain.ErrQueueFull), errors.Is(err, domain.ErrPoolStopped):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: usecase.SanitizeError(err)})
		return
	}

	logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
	body := ErrorResponse{Error: fallback}
	if s.dev {
		body.Details = err.Error()
	} else if errors.Is(err, domain.ErrAIUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		body.Details = usecase.SanitizeError(err)
	}
	writeJSON(w, http.StatusInternalServerError, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		_, _ = fmt.Fprintf(w, `{"error":"encode response"}`)
	}
}
