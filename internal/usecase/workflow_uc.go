// File: internal/usecase/workflow_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/model"
	"workflow-analyst/internal/infra/logging"
	"workflow-analyst/internal/infra/metrics"
	"workflow-analyst/internal/prompt"
)

// Compile-time check
var _ WorkflowUseCase = (*workflowUC)(nil)

// Input validation messages returned verbatim to clients.
const (
	MsgPromptRequired   = "userPrompt is required"
	MsgNodesRequired    = "Workflow nodes are required for analysis"
	MsgOriginalRequired = "Original workflow nodes are required for optimization"
	MsgAnalysisRequired = "Analysis results are required for optimization"
)

type WorkflowUseCase interface {
	Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResult, error)
	Analyze(ctx context.Context, req model.AnalyzeRequest) (*model.AnalyzeResponse, error)
	Optimize(ctx context.Context, req model.OptimizeRequest) (*model.OptimizeResult, error)
}

// Completer sends a prompt and decodes the first JSON object of the reply into v.
// Transport failures wrap domain.ErrAIUnavailable; anything else is a decode failure.
type Completer interface {
	CompleteJSON(ctx context.Context, prompt string, v any) (raw string, err error)
}

type workflowUC struct {
	llm Completer
	log *zerolog.Logger
	dev bool
}

func NewWorkflowUseCase(llm Completer, logger *zerolog.Logger, dev bool) *workflowUC {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "workflow").Logger()
	return &workflowUC{llm: llm, log: &l, dev: dev}
}

// complete returns (raw, true, nil) when v was filled, (raw, false, nil) when the caller should fall back.
func (w *workflowUC) complete(ctx context.Context, kind, p string, v any) (string, bool, error) {
	raw, err := w.llm.CompleteJSON(ctx, p, v)
	if err == nil {
		return raw, true, nil
	}
	if errors.Is(err, domain.ErrAIUnavailable) || ctx.Err() != nil {
		return raw, false, err
	}
	w.noteFallback(ctx, kind, raw, err)
	return raw, false, nil
}

func (w *workflowUC) noteFallback(ctx context.Context, kind, raw string, err error) {
	metrics.IncLLMFallback(kind)
	logging.With(ctx, w.log).Warn().
		Err(err).
		Str("kind", kind).
		Str("raw", logging.Truncate(logging.Redact(raw, w.dev), 1024)).
		Msg("model output unusable, using fallback")
}

func (w *workflowUC) Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResult, error) {
	defer logging.TraceDuration(logging.With(ctx, w.log), "WorkflowUC.Generate")()
	if strings.TrimSpace(req.UserPrompt) == "" {
		return nil, domain.NewValidationError(MsgPromptRequired)
	}
	p, det, err := prompt.Generate(req)
	if err != nil {
		return nil, err
	}

	var res model.GenerateResult
	_, ok, err := w.complete(ctx, "generate", p, &res)
	if err != nil {
		return nil, err
	}
	if !ok {
		res = generateFallback(det.Industry, req.QuestionCount)
	}

	if res.Nodes == nil {
		res.Nodes = []model.Node{}
	}
	if res.Edges == nil {
		res.Edges = []model.Edge{}
	}
	switch {
	case prompt.IsFinalQuestion(req.QuestionCount):
		res.FollowUpQuestion = nil
	case res.FollowUpQuestion == nil || strings.TrimSpace(*res.FollowUpQuestion) == "":
		q := prompt.FollowUpQuestion(det.Industry, req.QuestionCount)
		res.FollowUpQuestion = &q
	}
	return &res, nil
}

func (w *workflowUC) Analyze(ctx context.Context, req model.AnalyzeRequest) (*model.AnalyzeResponse, error) {
	defer logging.TraceDuration(logging.With(ctx, w.log), "WorkflowUC.Analyze")()
	if len(req.Nodes) == 0 {
		return nil, domain.NewValidationError(MsgNodesRequired)
	}
	p, det, err := prompt.Analyze(req)
	if err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	raw, ok, err := w.complete(ctx, "analyze", p, &envelope)
	if err != nil {
		return nil, err
	}
	var result *model.AnalysisResult
	if ok {
		if result, err = unwrapAnalysis(envelope); err != nil {
			w.noteFallback(ctx, "analyze", raw, err)
		}
	}
	if result == nil {
		result = analysisFallback(req.Nodes, det)
	}
	backfillAnalysis(result)
	return &model.AnalyzeResponse{AnalysisResult: result}, nil
}

func (w *workflowUC) Optimize(ctx context.Context, req model.OptimizeRequest) (*model.OptimizeResult, error) {
	defer logging.TraceDuration(logging.With(ctx, w.log), "WorkflowUC.Optimize")()
	if len(req.OriginalNodes) == 0 {
		return nil, domain.NewValidationError(MsgOriginalRequired)
	}
	if req.AnalysisResult == nil || (req.AnalysisResult.WeakPoints == nil && req.AnalysisResult.Extra["weakPoints"] == nil) {
		return nil, domain.NewValidationError(MsgAnalysisRequired)
	}
	p, err := prompt.Optimize(req)
	if err != nil {
		return nil, err
	}

	var res model.OptimizeResult
	_, ok, err := w.complete(ctx, "optimize", p, &res)
	if err != nil {
		return nil, err
	}
	score := prompt.ScoreOrDefault(req.AnalysisResult.OverallScore)
	if !ok {
		res = optimizeFallback(req.OriginalNodes, req.OriginalEdges, score)
	}
	backfillOptimize(&res, score)
	return &res, nil
}

// unwrapAnalysis accepts {"analysisResult": {...}} or a bare result object.
func unwrapAnalysis(envelope map[string]json.RawMessage) (*model.AnalysisResult, error) {
	var result model.AnalysisResult
	if inner, ok := envelope["analysisResult"]; ok && string(inner) != "null" {
		if err := json.Unmarshal(inner, &result); err != nil {
			return nil, fmt.Errorf("decode analysisResult: %w", err)
		}
		return &result, nil
	}
	b, err := json.Marshal(envelope)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return nil, fmt.Errorf("decode bare analysis: %w", err)
	}
	return &result, nil
}

var (
	startStyle = map[string]any{
		"background": "#e8f5e8", "color": "#2d5a2d", "border": "2px solid #4caf50",
		"borderRadius": "12px", "padding": "12px", "fontWeight": "500",
	}
	processStyle = map[string]any{
		"background": "#e3f2fd", "color": "#1565c0", "border": "2px solid #2196f3",
		"borderRadius": "12px", "padding": "12px", "fontWeight": "500",
	}
	endStyle = map[string]any{
		"background": "#ffebee", "color": "#c62828", "border": "2px solid #f44336",
		"borderRadius": "12px", "padding": "12px", "fontWeight": "500",
	}
)

func copyStyle(s map[string]any) map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func generateFallback(industry string, questionCount int) model.GenerateResult {
	fb := prompt.FallbackFor(industry)
	last := len(fb.Steps) - 1
	nodes := make([]model.Node, 0, len(fb.Steps))
	edges := make([]model.Edge, 0, last)
	for i, step := range fb.Steps {
		n := model.Node{
			ID:       fmt.Sprintf("node-%d", i+1),
			Type:     model.NodeTypeProcess,
			Position: model.Position{X: 250, Y: float64(80 + i*120)},
			Data:     model.NodeData{Label: step},
			Style:    copyStyle(processStyle),
		}
		switch i {
		case 0:
			n.Type, n.Style = model.NodeTypeStart, copyStyle(startStyle)
		case last:
			n.Type, n.Style = model.NodeTypeEnd, copyStyle(endStyle)
		}
		nodes = append(nodes, n)
		if i < last {
			edges = append(edges, model.Edge{
				ID:       fmt.Sprintf("edge-%d", i+1),
				Source:   fmt.Sprintf("node-%d", i+1),
				Target:   fmt.Sprintf("node-%d", i+2),
				Type:     "smoothstep",
				Animated: true,
				Style:    map[string]any{"stroke": "#2196f3", "strokeWidth": 3},
			})
		}
	}
	res := model.GenerateResult{Nodes: nodes, Edges: edges}
	if !prompt.IsFinalQuestion(questionCount) {
		q := fb.Question
		res.FollowUpQuestion = &q
	}
	return res
}

func analysisFallback(nodes []model.Node, det prompt.Detection) *model.AnalysisResult {
	weakID := nodes[0].ID
	for _, n := range nodes {
		l := strings.ToLower(n.Data.Label)
		if strings.Contains(l, "review") || strings.Contains(l, "approve") {
			weakID = n.ID
			break
		}
	}
	return &model.AnalysisResult{
		OverallScore: prompt.DefaultScore,
		IndustryContext: &model.IndustryContext{
			DetectedIndustry:         det.Industry,
			Confidence:               float64(det.Confidence),
			IndustrySpecificInsights: fmt.Sprintf("Based on %s industry patterns, this workflow could benefit from automation and streamlining.", det.Industry),
		},
		WeakPoints: []model.WeakPoint{{
			ID:                    "weakness-1",
			Type:                  "manual-process",
			NodeID:                weakID,
			Title:                 "Manual processing steps",
			Description:           "Several steps in the workflow require manual intervention which could cause delays",
			Impact:                "medium",
			ImprovementSuggestion: "Consider automating routine decisions and implementing approval thresholds",
		}},
		RepetitiveProcesses: []model.RepetitiveProcess{},
		AutomationOpportunities: []model.AutomationOpportunity{{
			ID:                       "automation-1",
			Type:                     "ai-agent",
			NodeID:                   nodes[len(nodes)/2].ID,
			Title:                    "Process automation opportunity",
			Description:              "This step could be enhanced with AI-powered automation",
			AIAgentType:              "workflow-orchestrator",
			ImplementationComplexity: "medium",
			ExpectedBenefit:          "Reduced processing time and improved consistency",
			EstimatedTimeSaving:      "30%",
		}},
		ImprovementMetrics: &model.ImprovementMetrics{
			PotentialTimeSaving:     "35%",
			ErrorReductionPotential: "45%",
			AutomationCoverage:      "25%",
			ProcessEfficiencyGain:   "40%",
		},
		PrioritizedRecommendations: []model.Recommendation{{
			Priority:    "high",
			Category:    "automation",
			Title:       "Implement workflow automation",
			Description: "Add AI agents to handle routine tasks and decision-making",
			Impact:      "Improve efficiency and reduce manual errors",
			Effort:      "medium",
		}},
	}
}

func backfillAnalysis(r *model.AnalysisResult) {
	if r.IndustryContext == nil {
		r.IndustryContext = &model.IndustryContext{}
	}
	if r.WeakPoints == nil {
		r.WeakPoints = []model.WeakPoint{}
	}
	if r.RepetitiveProcesses == nil {
		r.RepetitiveProcesses = []model.RepetitiveProcess{}
	}
	if r.AutomationOpportunities == nil {
		r.AutomationOpportunities = []model.AutomationOpportunity{}
	}
	if r.ImprovementMetrics == nil {
		r.ImprovementMetrics = &model.ImprovementMetrics{}
	}
	if r.PrioritizedRecommendations == nil {
		r.PrioritizedRecommendations = []model.Recommendation{}
	}
}

const optimizedPrefix = "optimized-"

func optimizeFallback(nodes []model.Node, edges []model.Edge, score float64) model.OptimizeResult {
	optNodes := make([]model.Node, 0, len(nodes))
	origIDs := make([]string, 0, len(nodes))
	optIDs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		n.ID = optimizedPrefix + n.ID
		n.Optimization = &model.Optimization{
			Type:               "improved",
			ChangeType:         "process-improvement",
			Description:        "General process optimization applied",
			ImprovementDetails: "Enhanced for better efficiency and reliability",
		}
		optNodes = append(optNodes, n)
		origIDs = append(origIDs, strings.TrimPrefix(n.ID, optimizedPrefix))
		optIDs = append(optIDs, n.ID)
	}
	optEdges := make([]model.Edge, 0, len(edges))
	for _, e := range edges {
		e.ID = optimizedPrefix + e.ID
		e.Source = optimizedPrefix + e.Source
		e.Target = optimizedPrefix + e.Target
		e.Optimization = &model.Optimization{
			Type:        "improved",
			Description: "Connection optimized for better flow",
		}
		optEdges = append(optEdges, e)
	}
	return model.OptimizeResult{
		OptimizedWorkflow: &model.OptimizedWorkflow{Nodes: optNodes, Edges: optEdges},
		Improvements: []model.Improvement{{
			Category:         "Process Optimization",
			Title:            "General workflow improvement",
			Description:      "Applied systematic optimizations to improve workflow efficiency",
			OriginalNodeIDs:  origIDs,
			OptimizedNodeIDs: optIDs,
			Impact:           "Improved overall process flow and efficiency",
			Metrics: &model.ImprovementImpact{
				TimeSaving:     "25%",
				ErrorReduction: "30%",
				EfficiencyGain: "20%",
			},
		}},
		OptimizationSummary: &model.OptimizationSummary{
			OriginalScore:                score,
			OptimizedScore:               math.Min(95, score+20),
			ImprovementAreas:             []string{"Process Flow", "Error Handling", "Efficiency"},
			AIAgentsIntegrated:           1,
			ProcessesStreamlined:         1,
			ErrorHandlingAdded:           1,
			OverallImprovementPercentage: "25%",
			KeyBenefits:                  []string{"Faster processing", "Better reliability", "Improved user experience"},
		},
	}
}

func backfillOptimize(r *model.OptimizeResult, score float64) {
	if r.OptimizedWorkflow == nil {
		r.OptimizedWorkflow = &model.OptimizedWorkflow{}
	}
	if r.OptimizedWorkflow.Nodes == nil {
		r.OptimizedWorkflow.Nodes = []model.Node{}
	}
	if r.OptimizedWorkflow.Edges == nil {
		r.OptimizedWorkflow.Edges = []model.Edge{}
	}
	if r.Improvements == nil {
		r.Improvements = []model.Improvement{}
	}
	if r.OptimizationSummary == nil {
		r.OptimizationSummary = &model.OptimizationSummary{
			OriginalScore:                score,
			OptimizedScore:               85,
			ImprovementAreas:             []string{"General Improvements"},
			OverallImprovementPercentage: "15%",
		}
	}
}
