package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-analyst/internal/domain/model"
)

func TestClient_GenerateSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate-workflow", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req model.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "order flow", req.UserPrompt)
		assert.Equal(t, 2, req.QuestionCount)
		_, _ = w.Write([]byte(`{"nodes":[{"id":"a","type":"input","position":{"x":0,"y":0},"data":{"label":"A"}}],"edges":[],"followUpQuestion":"next?"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL+"/", time.Second).Generate(context.Background(), model.GenerateRequest{UserPrompt: "order flow", QuestionCount: 2})
	require.NoError(t, err)
	require.Len(t, res.Nodes, 1)
	assert.Equal(t, "next?", *res.FollowUpQuestion)
}

func TestClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"userPrompt is required"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Generate(context.Background(), model.GenerateRequest{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "userPrompt is required", ae.Message)
}

func TestClient_StatusTreatsFailedJobAsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("jobId") {
		case "bad":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"jobId":"bad","status":"failed","message":"Analysis failed. Please try again.","error":"Workflow generation failed."}`))
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Failed to check job status"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Job not found","jobId":"x","message":"gone"}`))
		}
	}))
	defer srv.Close()
	c := New(srv.URL, time.Second)

	st, err := c.Status(context.Background(), "bad")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, st.Status)
	assert.True(t, st.Terminal())

	_, err = c.Status(context.Background(), "broken")
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))

	_, err = c.Status(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestClient_WaitPollsUntilTerminal(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := polls.Add(1)
		status := "processing"
		if n >= 3 {
			status = "completed"
		}
		_, _ = w.Write([]byte(`{"jobId":"j","status":"` + status + `","result":{"nodes":[]}}`))
	}))
	defer srv.Close()

	var seen []model.JobStatus
	st, err := New(srv.URL, time.Second).Wait(context.Background(), "j", time.Millisecond, func(s *JobStatus) {
		seen = append(seen, s.Status)
	})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, st.Status)
	assert.Equal(t, []model.JobStatus{"processing", "processing", "completed"}, seen)
}

func TestClient_WaitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"jobId":"j","status":"pending"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	st, err := New(srv.URL, time.Second).Wait(ctx, "j", 5*time.Millisecond, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, st)
	assert.Equal(t, model.JobStatusPending, st.Status)
}
