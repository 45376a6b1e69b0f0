// Package prompt builds the model prompts for the generate, analyze and optimize passes
// and holds the industry knowledge they share with the fallbacks.
package prompt

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"workflow-analyst/internal/domain/model"
)

const (
	// HistoryWindow is how many trailing conversation messages go into a prompt.
	HistoryWindow = 10
	// MaxQuestions bounds the clarifying dialogue.
	MaxQuestions = 5
	// DefaultScore is assumed when an analysis carries no score.
	DefaultScore = 70
)

var funcs = template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"join": func(s []string) string { return strings.Join(s, ", ") },
}

var (
	generateT = template.Must(template.New("generate").Funcs(funcs).Parse(generateTmpl))
	analyzeT  = template.Must(template.New("analyze").Funcs(funcs).Parse(analyzeTmpl))
	optimizeT = template.Must(template.New("optimize").Funcs(funcs).Parse(optimizeTmpl))
)

// IsFinalQuestion reports whether questionCount has reached the last dialogue turn.
func IsFinalQuestion(questionCount int) bool {
	return questionCount >= MaxQuestions-1
}

// Generate renders the diagram prompt. The detection is returned so callers can pick
// a matching fallback and follow-up question.
func Generate(req model.GenerateRequest) (string, Detection, error) {
	conv := model.ConversationTail(req.ConversationHistory, HistoryWindow)
	det := DetectForGenerate(req.UserPrompt + " " + conv)
	data := struct {
		Conversation   string
		NodeCount      int
		EdgeCount      int
		QuestionCount  int
		QuestionNumber int
		MaxQuestions   int
		Industry       string
		Confidence     int
		UserPrompt     string
		Final          bool
	}{
		Conversation:   conv,
		NodeCount:      len(req.CurrentNodes),
		EdgeCount:      len(req.CurrentEdges),
		QuestionCount:  req.QuestionCount,
		QuestionNumber: req.QuestionCount + 1,
		MaxQuestions:   MaxQuestions,
		Industry:       det.Industry,
		Confidence:     det.Confidence,
		UserPrompt:     req.UserPrompt,
		Final:          IsFinalQuestion(req.QuestionCount),
	}
	s, err := render(generateT, data)
	return s, det, err
}

// Analyze renders the analysis prompt for a finished diagram.
func Analyze(req model.AnalyzeRequest) (string, Detection, error) {
	conv := model.ConversationTail(req.ConversationHistory, HistoryWindow)
	det := DetectForAnalysis(model.NodeLabels(req.Nodes) + " " + conv)
	data := struct {
		Industry     string
		Confidence   int
		Conversation string
		Stats        model.StructureStats
		ClientStats  *model.WorkflowStats
		Nodes        []model.Node
		Edges        []model.Edge
		Profile      Profile
	}{
		Industry:     det.Industry,
		Confidence:   det.Confidence,
		Conversation: conv,
		Stats:        model.ComputeStructureStats(req.Nodes, req.Edges),
		ClientStats:  req.WorkflowStats,
		Nodes:        req.Nodes,
		Edges:        req.Edges,
		Profile:      ProfileFor(det.Industry),
	}
	s, err := render(analyzeT, data)
	return s, det, err
}

// Optimize renders the optimization prompt. req.AnalysisResult must be non-nil.
func Optimize(req model.OptimizeRequest) (string, error) {
	if req.AnalysisResult == nil {
		return "", fmt.Errorf("optimize prompt: analysis result is nil")
	}
	industry := General
	if ic := req.AnalysisResult.IndustryContext; ic != nil && ic.DetectedIndustry != "" {
		industry = ic.DetectedIndustry
	}
	data := struct {
		Industry     string
		Score        string
		Conversation string
		Nodes        []model.Node
		Edges        []model.Edge
		Analysis     *model.AnalysisResult
	}{
		Industry:     industry,
		Score:        FormatScore(ScoreOrDefault(req.AnalysisResult.OverallScore)),
		Conversation: model.ConversationTail(req.ConversationHistory, HistoryWindow),
		Nodes:        req.OriginalNodes,
		Edges:        req.OriginalEdges,
		Analysis:     req.AnalysisResult,
	}
	return render(optimizeT, data)
}

// ScoreOrDefault substitutes DefaultScore for a zero score.
func ScoreOrDefault(score float64) float64 {
	if score == 0 {
		return DefaultScore
	}
	return score
}

// FormatScore prints a score without a trailing ".0".
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
