package model

import (
	"encoding/json"
	"strings"
)

// Node types understood by the flowchart renderer.
const (
	NodeTypeStart   = "input"
	NodeTypeProcess = "default"
	NodeTypeEnd     = "output"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type NodeData struct {
	Label string `json:"label"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Optimization annotates a node or edge produced by the optimize pass.
type Optimization struct {
	Type               string `json:"type,omitempty"`
	ChangeType         string `json:"changeType,omitempty"`
	Description        string `json:"description,omitempty"`
	AIAgent            string `json:"aiAgent,omitempty"`
	ImprovementDetails string `json:"improvementDetails,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Node is one flowchart step. Style and unknown keys (Extra) are passed through untouched.
type Node struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Position     Position       `json:"position"`
	Data         NodeData       `json:"data"`
	Style        map[string]any `json:"style,omitempty"`
	Optimization *Optimization  `json:"optimization,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type Edge struct {
	ID           string         `json:"id"`
	Source       string         `json:"source"`
	Target       string         `json:"target"`
	Type         string         `json:"type,omitempty"`
	Animated     bool           `json:"animated,omitempty"`
	Style        map[string]any `json:"style,omitempty"`
	Label        string         `json:"label,omitempty"`
	Optimization *Optimization  `json:"optimization,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// ConversationMessage is one chat turn; Sender is "user" or "ai".
type ConversationMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// ConversationTail renders the last n messages as "sender: text" lines.
func ConversationTail(history []ConversationMessage, n int) string {
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, m.Sender+": "+m.Text)
	}
	return strings.Join(lines, "\n")
}

// WorkflowStats is the client-side summary shown next to the diagram.
type WorkflowStats struct {
	TotalProcesses          int `json:"totalProcesses"`
	DecisionPoints          int `json:"decisionPoints"`
	AutomationOpportunities int `json:"automationOpportunities"`
}

// StructureStats describes a diagram for the analysis prompt.
type StructureStats struct {
	NodeCount      int
	EdgeCount      int
	DecisionPoints int
	ProcessSteps   int
	StartNodes     int
	EndNodes       int
}

func isDecisionLabel(label string, includeReview bool) bool {
	l := strings.ToLower(label)
	if strings.Contains(label, "?") || strings.Contains(l, "decision") || strings.Contains(l, "approve") {
		return true
	}
	return includeReview && strings.Contains(l, "review")
}

// ComputeWorkflowStats counts decisions and process steps the way the chat view does.
func ComputeWorkflowStats(nodes []Node) WorkflowStats {
	var st WorkflowStats
	for _, n := range nodes {
		if isDecisionLabel(n.Data.Label, false) {
			st.DecisionPoints++
			continue
		}
		if n.Type == NodeTypeProcess {
			st.TotalProcesses++
		}
	}
	st.AutomationOpportunities = st.TotalProcesses * 3 / 10
	return st
}

// ComputeStructureStats counts node kinds for analysis; review steps count as decisions.
func ComputeStructureStats(nodes []Node, edges []Edge) StructureStats {
	st := StructureStats{NodeCount: len(nodes), EdgeCount: len(edges)}
	for _, n := range nodes {
		if isDecisionLabel(n.Data.Label, true) {
			st.DecisionPoints++
		}
		l := strings.ToLower(n.Data.Label)
		switch n.Type {
		case NodeTypeStart:
			st.StartNodes++
		case NodeTypeEnd:
			st.EndNodes++
		case NodeTypeProcess:
			if !strings.Contains(n.Data.Label, "?") && !strings.Contains(l, "decision") {
				st.ProcessSteps++
			}
		}
	}
	return st
}

// NodeLabels joins every node label with spaces.
func NodeLabels(nodes []Node) string {
	labels := make([]string, 0, len(nodes))
	for _, n := range nodes {
		labels = append(labels, n.Data.Label)
	}
	return strings.Join(labels, " ")
}

func (n NodeData) MarshalJSON() ([]byte, error) { return encodeLoose(n, n.Extra) }

func (n *NodeData) UnmarshalJSON(b []byte) error {
	var err error
	n.Extra, err = decodeLoose(b, n)
	return err
}

func (o Optimization) MarshalJSON() ([]byte, error) { return encodeLoose(o, o.Extra) }

func (o *Optimization) UnmarshalJSON(b []byte) error {
	var err error
	o.Extra, err = decodeLoose(b, o)
	return err
}

func (n Node) MarshalJSON() ([]byte, error) { return encodeLoose(n, n.Extra) }

func (n *Node) UnmarshalJSON(b []byte) error {
	var err error
	n.Extra, err = decodeLoose(b, n)
	return err
}

func (e Edge) MarshalJSON() ([]byte, error) { return encodeLoose(e, e.Extra) }

func (e *Edge) UnmarshalJSON(b []byte) error {
	var err error
	e.Extra, err = decodeLoose(b, e)
	return err
}
