package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"workflow-analyst/internal/domain/model"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
	aiStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("157"))
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	startStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	endStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
)

// RenderMessage formats one conversation entry.
func RenderMessage(m model.ConversationMessage) string {
	if m.Sender == model.SenderUser {
		return userStyle.Render("you> ") + m.Text
	}
	return aiStyle.Render("ai> ") + m.Text
}

// OrderNodes walks the diagram from its start nodes along edges, then appends
// anything unreachable in input order. Each node appears once.
func OrderNodes(nodes []model.Node, edges []model.Edge) []model.Node {
	byID := make(map[string]model.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	next := make(map[string][]string)
	for _, e := range edges {
		next[e.Source] = append(next[e.Source], e.Target)
	}

	seen := make(map[string]bool, len(nodes))
	out := make([]model.Node, 0, len(nodes))
	var walk func(id string)
	walk = func(id string) {
		n, ok := byID[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, n)
		for _, t := range next[id] {
			walk(t)
		}
	}
	for _, n := range nodes {
		if n.Type == model.NodeTypeStart {
			walk(n.ID)
		}
	}
	for _, n := range nodes {
		walk(n.ID)
	}
	return out
}

// RenderDiagram prints the diagram as a numbered step list.
func RenderDiagram(nodes []model.Node, edges []model.Edge) string {
	if len(nodes) == 0 {
		return metaStyle.Render("(no workflow yet)")
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Workflow: %d steps, %d connections", len(nodes), len(edges))))
	b.WriteString("\n")
	for i, n := range OrderNodes(nodes, edges) {
		style := stepStyle
		switch n.Type {
		case model.NodeTypeStart:
			style = startStyle
		case model.NodeTypeEnd:
			style = endStyle
		}
		line := fmt.Sprintf("%2d. %s", i+1, n.Data.Label)
		if n.Optimization != nil && n.Optimization.Type != "" {
			line += metaStyle.Render(" [" + n.Optimization.Type + "]")
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderStats prints the side panel of the chat view.
func RenderStats(s *Session) string {
	lines := []string{
		headerStyle.Render("Progress"),
		fmt.Sprintf("Questions: %d/%d (%d%%)", min(s.QuestionCount, MaxQuestions), MaxQuestions, s.Progress()),
		fmt.Sprintf("Processes: %d", s.Stats.TotalProcesses),
		fmt.Sprintf("Decisions: %d", s.Stats.DecisionPoints),
		fmt.Sprintf("Automation candidates: %d", s.Stats.AutomationOpportunities),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// RenderAnalysis summarizes an analysis result.
func RenderAnalysis(r *model.AnalysisResult) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Efficiency score: %g/100", r.OverallScore)))
	if ic := r.IndustryContext; ic != nil && ic.DetectedIndustry != "" {
		b.WriteString(metaStyle.Render(fmt.Sprintf("  (%s, confidence %g)", ic.DetectedIndustry, ic.Confidence)))
	}
	b.WriteString("\n")
	if len(r.WeakPoints) > 0 {
		b.WriteString(warnStyle.Render("Weak points") + "\n")
		for _, w := range r.WeakPoints {
			fmt.Fprintf(&b, "  - %s: %s\n", w.Title, w.Description)
		}
	}
	if len(r.AutomationOpportunities) > 0 {
		b.WriteString(successStyle.Render("Automation opportunities") + "\n")
		for _, a := range r.AutomationOpportunities {
			fmt.Fprintf(&b, "  - %s: %s\n", a.Title, a.Description)
		}
	}
	if len(r.PrioritizedRecommendations) > 0 {
		b.WriteString(headerStyle.Render("Recommendations") + "\n")
		for _, rec := range r.PrioritizedRecommendations {
			fmt.Fprintf(&b, "  [%s] %s\n", rec.Priority, rec.Title)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderOptimization shows the optimized diagram and its summary.
func RenderOptimization(r *model.OptimizeResult) string {
	var b strings.Builder
	if r.OptimizedWorkflow != nil {
		b.WriteString(RenderDiagram(r.OptimizedWorkflow.Nodes, r.OptimizedWorkflow.Edges))
		b.WriteString("\n")
	}
	if s := r.OptimizationSummary; s != nil {
		b.WriteString(successStyle.Render(fmt.Sprintf("Score %g -> %g", s.OriginalScore, s.OptimizedScore)))
		if len(s.ImprovementAreas) > 0 {
			b.WriteString(metaStyle.Render("  " + strings.Join(s.ImprovementAreas, ", ")))
		}
		b.WriteString("\n")
	}
	for _, imp := range r.Improvements {
		fmt.Fprintf(&b, "  - %s: %s\n", imp.Title, imp.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderJob prints one poll answer relative to now.
func RenderJob(st *JobStatus, now time.Time) string {
	style := stepStyle
	switch st.Status {
	case model.JobStatusCompleted:
		style = successStyle
	case model.JobStatusFailed:
		style = endStyle
	}
	line := fmt.Sprintf("%s %s  %s", style.Render(string(st.Status)), st.JobID, st.Message)
	meta := []string{"started " + humanize.RelTime(st.CreatedAt, now, "ago", "from now")}
	if st.EstimatedTimeRemaining != "" {
		meta = append(meta, "eta "+st.EstimatedTimeRemaining)
	}
	if st.Error != "" {
		meta = append(meta, "error: "+st.Error)
	}
	return line + "\n" + metaStyle.Render("  "+strings.Join(meta, " | "))
}
