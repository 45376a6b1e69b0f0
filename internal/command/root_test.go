package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
)

func executeCommand(cmd *cobra.Command, stdin string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

const diagram = `{"nodes":[{"id":"s","type":"input","position":{"x":0,"y":0},"data":{"label":"Order received"}},` +
	`{"id":"e","type":"output","position":{"x":0,"y":120},"data":{"label":"Shipped"}}],` +
	`"edges":[{"id":"s-e","source":"s","target":"e"}]`

// fakeServer answers like the workflow API. The first generate call asks a question.
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	var generates, polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate-workflow", func(w http.ResponseWriter, r *http.Request) {
		if generates.Add(1) == 1 {
			_, _ = w.Write([]byte(diagram + `,"followUpQuestion":"Who approves refunds?"}`))
			return
		}
		_, _ = w.Write([]byte(diagram + `,"followUpQuestion":null}`))
	})
	mux.HandleFunc("/api/analyze-workflow", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"analysisResult":{"overallScore":72,"weakPoints":[{"nodeId":"s","title":"Manual entry","description":"typed by hand"}]}}`))
	})
	mux.HandleFunc("/api/optimize-workflow", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AnalysisResult *json.RawMessage `json:"analysisResult"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.AnalysisResult == nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"analysisResult is required"}`))
			return
		}
		_, _ = w.Write([]byte(`{"optimizedWorkflow":` + diagram + `},"improvements":[],"optimizationSummary":{"originalScore":72,"optimizedScore":91}}`))
	})
	mux.HandleFunc("/api/start-analysis", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"jobId":"job-1","status":"pending","message":"Workflow analysis started.","estimatedTime":"30-60 seconds"}`))
	})
	mux.HandleFunc("/api/check-status", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("jobId") {
		case "job-1":
			if polls.Add(1) < 2 {
				_, _ = w.Write([]byte(`{"jobId":"job-1","status":"processing","message":"Analyzing"}`))
				return
			}
			_, _ = w.Write([]byte(`{"jobId":"job-1","status":"completed","message":"Analysis complete!","result":` + diagram + `,"followUpQuestion":null}}`))
		case "job-bad":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"jobId":"job-bad","status":"failed","message":"Analysis failed. Please try again.","error":"Workflow generation failed."}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Job not found","jobId":"x","message":"The job may have expired or never existed."}`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRootCommandVersion(t *testing.T) {
	output, err := executeCommand(NewRootCmd("test"), "", "--version")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(output, "flowchat version test") {
		t.Fatalf("expected version output, got %q", output)
	}
}

func TestChatDialogueAnalyzeOptimizeSave(t *testing.T) {
	srv := fakeServer(t)
	path := filepath.Join(t.TempDir(), "session.json")

	stdin := "Legal reviews every refund\n/analyze\n/optimize\n/quit\n"
	output, err := executeCommand(NewRootCmd("test"), stdin,
		"chat", "--server", srv.URL, "--save", path, "we ship customer orders")
	if err != nil {
		t.Fatalf("chat: %v\n%s", err, output)
	}
	for _, want := range []string{
		"Who approves refunds?",
		"Order received",
		"Type /analyze",
		"Manual entry",
		"Score 72 -> 91",
		"saved session to",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	wf, err := readWorkflow(path)
	if err != nil {
		t.Fatalf("read saved session: %v", err)
	}
	if len(wf.Nodes) != 2 || wf.AnalysisResult == nil || wf.OptimizeResult == nil {
		t.Fatalf("saved session incomplete: %+v", wf)
	}
	if len(wf.ConversationHistory) < 4 {
		t.Errorf("conversation not saved: %d messages", len(wf.ConversationHistory))
	}
}

func TestChatOptimizeBeforeAnalyze(t *testing.T) {
	srv := fakeServer(t)
	output, err := executeCommand(NewRootCmd("test"), "/optimize\n/bogus\n", "chat", "--server", srv.URL)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(output, "analyze the workflow before optimizing") {
		t.Errorf("expected optimize guard, got:\n%s", output)
	}
	if !strings.Contains(output, "unknown command /bogus") {
		t.Errorf("expected unknown command notice, got:\n%s", output)
	}
}

func TestAnalyzeFileJSON(t *testing.T) {
	srv := fakeServer(t)
	path := filepath.Join(t.TempDir(), "wf.json")
	if err := os.WriteFile(path, []byte(diagram+"}"), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(NewRootCmd("test"), "", "analyze", "--server", srv.URL, "--json", path)
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, output)
	}
	var resp struct {
		AnalysisResult struct {
			OverallScore float64 `json:"overallScore"`
		} `json:"analysisResult"`
	}
	if err := json.Unmarshal([]byte(output), &resp); err != nil {
		t.Fatalf("output is not json: %v\n%s", err, output)
	}
	if resp.AnalysisResult.OverallScore != 72 {
		t.Errorf("score = %v", resp.AnalysisResult.OverallScore)
	}
}

func TestOptimizeAnalyzesFirstAndWritesOut(t *testing.T) {
	srv := fakeServer(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "wf.json")
	out := filepath.Join(dir, "opt.json")
	if err := os.WriteFile(in, []byte(diagram+"}"), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(NewRootCmd("test"), "", "optimize", "--server", srv.URL, "--out", out, in)
	if err != nil {
		t.Fatalf("optimize: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Score 72 -> 91") {
		t.Errorf("missing summary:\n%s", output)
	}
	if _, err := readWorkflow(out); err != nil {
		t.Errorf("optimized workflow not written: %v", err)
	}
}

func TestAnalyzeRejectsEmptyWorkflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`{"nodes":[],"edges":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := executeCommand(NewRootCmd("test"), "", "analyze", path); err == nil {
		t.Fatal("expected error for a workflow without nodes")
	}
}

func TestSubmitWait(t *testing.T) {
	srv := fakeServer(t)
	output, err := executeCommand(NewRootCmd("test"), "",
		"submit", "--server", srv.URL, "--wait", "--interval", "5ms", "orders", "are", "shipped")
	if err != nil {
		t.Fatalf("submit: %v\n%s", err, output)
	}
	if !strings.Contains(output, "processing") || !strings.Contains(output, "completed") {
		t.Errorf("expected both states in output:\n%s", output)
	}
	if !strings.Contains(output, "Shipped") {
		t.Errorf("expected rendered result:\n%s", output)
	}
}

func TestSubmitPrintsJobID(t *testing.T) {
	srv := fakeServer(t)
	output, err := executeCommand(NewRootCmd("test"), "", "submit", "--server", srv.URL, "orders")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.HasPrefix(output, "job-1 ") {
		t.Errorf("output = %q", output)
	}
}

func TestStatusFailedAndMissing(t *testing.T) {
	srv := fakeServer(t)

	output, err := executeCommand(NewRootCmd("test"), "", "status", "--server", srv.URL, "job-bad")
	if err != nil {
		t.Fatalf("failed job should print, got %v", err)
	}
	if !strings.Contains(output, "Workflow generation failed.") {
		t.Errorf("output = %q", output)
	}

	output, err = executeCommand(NewRootCmd("test"), "", "status", "--server", srv.URL, "nope")
	if err == nil {
		t.Fatal("expected error for unknown job")
	}
	if !strings.Contains(output, "Job not found") {
		t.Errorf("output = %q", output)
	}
}
