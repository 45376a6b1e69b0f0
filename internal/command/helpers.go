package command

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"workflow-analyst/internal/domain/model"
)

// workflowFile is the on-disk form of a diagram. Saved chat sessions carry the
// conversation and analysis as well.
type workflowFile struct {
	Nodes               []model.Node                `json:"nodes"`
	Edges               []model.Edge                `json:"edges"`
	ConversationHistory []model.ConversationMessage `json:"conversationHistory,omitempty"`
	AnalysisResult      *model.AnalysisResult       `json:"analysisResult,omitempty"`
	OptimizeResult      *model.OptimizeResult       `json:"optimizeResult,omitempty"`
}

func readWorkflow(path string) (*workflowFile, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var wf workflowFile
	if err := json.NewDecoder(r).Decode(&wf); err != nil {
		return nil, fmt.Errorf("read workflow %s: %w", path, err)
	}
	if len(wf.Nodes) == 0 {
		return nil, fmt.Errorf("workflow %s has no nodes", path)
	}
	if wf.Edges == nil {
		wf.Edges = []model.Edge{}
	}
	return &wf, nil
}

func writeWorkflow(path string, wf *workflowFile) error {
	b, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
