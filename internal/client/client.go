// Package client talks to the workflow API and keeps the local state of a design session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"workflow-analyst/internal/domain/model"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, http.StatusText(e.Status), e.Message, e.Details)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// Submission is the answer to an async submit.
type Submission struct {
	JobID         string `json:"jobId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	EstimatedTime string `json:"estimatedTime"`
}

// JobStatus is one poll answer.
type JobStatus struct {
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

func (s *JobStatus) Terminal() bool { return s.Status.IsTerminal() }

// Generated decodes the result of a completed job.
func (s *JobStatus) Generated() (*model.GenerateResult, error) {
	if len(s.Result) == 0 {
		return nil, fmt.Errorf("job %s has no result", s.JobID)
	}
	var res model.GenerateResult
	if err := json.Unmarshal(s.Result, &res); err != nil {
		return nil, fmt.Errorf("decode job result: %w", err)
	}
	return &res, nil
}

type Client struct {
	base string
	http *http.Client
}

// New returns a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResult, error) {
	var out model.GenerateResult
	if _, err := c.do(ctx, http.MethodPost, "/api/generate-workflow", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Analyze(ctx context.Context, req model.AnalyzeRequest) (*model.AnalysisResult, error) {
	var out model.AnalyzeResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/analyze-workflow", req, &out); err != nil {
		return nil, err
	}
	if out.AnalysisResult == nil {
		return nil, errors.New("server returned no analysisResult")
	}
	return out.AnalysisResult, nil
}

func (c *Client) Optimize(ctx context.Context, req model.OptimizeRequest) (*model.OptimizeResult, error) {
	var out model.OptimizeResult
	if _, err := c.do(ctx, http.MethodPost, "/api/optimize-workflow", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Submit(ctx context.Context, req model.GenerateRequest) (*Submission, error) {
	var out Submission
	if _, err := c.do(ctx, http.MethodPost, "/api/start-analysis", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status polls once. A failed job is answered with 500 by the server; it is returned as a
// status, not an error.
func (c *Client) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	var out JobStatus
	code, err := c.do(ctx, http.MethodGet, "/api/check-status?jobId="+url.QueryEscape(jobID), nil, &out)
	if err != nil && !(code == http.StatusInternalServerError && out.Status == model.JobStatusFailed) {
		return nil, err
	}
	return &out, nil
}

// Wait polls every interval until the job is terminal or ctx ends. onPoll may be nil.
// On failure the last status seen, if any, is returned with the error.
func (c *Client) Wait(ctx context.Context, jobID string, interval time.Duration, onPoll func(*JobStatus)) (*JobStatus, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	var last *JobStatus
	for {
		st, err := c.Status(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			return last, err
		}
		last = st
		if onPoll != nil {
			onPoll(st)
		}
		if st.Terminal() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-t.C:
		}
	}
}

// do sends body as JSON and decodes the answer into out. On non-2xx it still decodes into
// out so callers can read structured failure bodies, and returns an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, out); err != nil {
				return resp.StatusCode, fmt.Errorf("decode response: %w", err)
			}
		}
		return resp.StatusCode, nil
	}

	if out != nil {
		_ = json.Unmarshal(raw, out)
	}
	var eb struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if json.Unmarshal(raw, &eb) != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(raw))
	}
	return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: eb.Error, Details: eb.Details}
}
