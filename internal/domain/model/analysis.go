package model

import "encoding/json"

// GenerateRequest is the body of a generate or async submit call.
type GenerateRequest struct {
	UserPrompt          string                `json:"userPrompt"`
	CurrentNodes        []Node                `json:"currentNodes"`
	CurrentEdges        []Edge                `json:"currentEdges"`
	ConversationHistory []ConversationMessage `json:"conversationHistory"`
	QuestionCount       int                   `json:"questionCount"`
}

// GenerateResult is a diagram plus the next question, or null once the dialogue is over.
type GenerateResult struct {
	Nodes            []Node  `json:"nodes"`
	Edges            []Edge  `json:"edges"`
	FollowUpQuestion *string `json:"followUpQuestion"`

	Extra map[string]json.RawMessage `json:"-"`
}

type AnalyzeRequest struct {
	Nodes               []Node                `json:"nodes"`
	Edges               []Edge                `json:"edges"`
	ConversationHistory []ConversationMessage `json:"conversationHistory"`
	WorkflowStats       *WorkflowStats        `json:"workflowStats,omitempty"`
}

type IndustryContext struct {
	DetectedIndustry         string  `json:"detectedIndustry,omitempty"`
	Confidence               float64 `json:"confidence"`
	IndustrySpecificInsights string  `json:"industrySpecificInsights,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type WeakPoint struct {
	ID                    string `json:"id"`
	Type                  string `json:"type"`
	NodeID                string `json:"nodeId,omitempty"`
	Title                 string `json:"title"`
	Description           string `json:"description"`
	Impact                string `json:"impact,omitempty"`
	ImprovementSuggestion string `json:"improvementSuggestion,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type RepetitiveProcess struct {
	ID                       string   `json:"id"`
	Type                     string   `json:"type"`
	NodeIDs                  []string `json:"nodeIds,omitempty"`
	Title                    string   `json:"title"`
	Description              string   `json:"description"`
	ConsolidationOpportunity string   `json:"consolidationOpportunity,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type AutomationOpportunity struct {
	ID                       string `json:"id"`
	Type                     string `json:"type"`
	NodeID                   string `json:"nodeId,omitempty"`
	Title                    string `json:"title"`
	Description              string `json:"description"`
	AIAgentType              string `json:"aiAgentType,omitempty"`
	ImplementationComplexity string `json:"implementationComplexity,omitempty"`
	ExpectedBenefit          string `json:"expectedBenefit,omitempty"`
	EstimatedTimeSaving      string `json:"estimatedTimeSaving,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type ImprovementMetrics struct {
	PotentialTimeSaving     string `json:"potentialTimeSaving,omitempty"`
	ErrorReductionPotential string `json:"errorReductionPotential,omitempty"`
	AutomationCoverage      string `json:"automationCoverage,omitempty"`
	ProcessEfficiencyGain   string `json:"processEfficiencyGain,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type Recommendation struct {
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact,omitempty"`
	Effort      string `json:"effort,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// AnalysisResult is the analyze pass output. A nil slice means the LLM omitted the field.
type AnalysisResult struct {
	OverallScore               float64                 `json:"overallScore"`
	IndustryContext            *IndustryContext        `json:"industryContext"`
	WeakPoints                 []WeakPoint             `json:"weakPoints"`
	RepetitiveProcesses        []RepetitiveProcess     `json:"repetitiveProcesses"`
	AutomationOpportunities    []AutomationOpportunity `json:"automationOpportunities"`
	ImprovementMetrics         *ImprovementMetrics     `json:"improvementMetrics"`
	PrioritizedRecommendations []Recommendation        `json:"prioritizedRecommendations"`

	Extra map[string]json.RawMessage `json:"-"`
}

type AnalyzeResponse struct {
	AnalysisResult *AnalysisResult `json:"analysisResult"`
}

type OptimizeRequest struct {
	OriginalNodes       []Node                `json:"originalNodes"`
	OriginalEdges       []Edge                `json:"originalEdges"`
	AnalysisResult      *AnalysisResult       `json:"analysisResult"`
	ConversationHistory []ConversationMessage `json:"conversationHistory"`
}

type OptimizedWorkflow struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	Extra map[string]json.RawMessage `json:"-"`
}

type ImprovementImpact struct {
	TimeSaving     string `json:"timeSaving,omitempty"`
	ErrorReduction string `json:"errorReduction,omitempty"`
	EfficiencyGain string `json:"efficiencyGain,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type Improvement struct {
	Category         string             `json:"category"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	OriginalNodeIDs  []string           `json:"originalNodeIds,omitempty"`
	OptimizedNodeIDs []string           `json:"optimizedNodeIds,omitempty"`
	Impact           string             `json:"impact,omitempty"`
	AIAgent          string             `json:"aiAgent,omitempty"`
	Metrics          *ImprovementImpact `json:"metrics,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type OptimizationSummary struct {
	OriginalScore                float64  `json:"originalScore"`
	OptimizedScore               float64  `json:"optimizedScore"`
	ImprovementAreas             []string `json:"improvementAreas,omitempty"`
	AIAgentsIntegrated           int      `json:"aiAgentsIntegrated,omitempty"`
	ProcessesStreamlined         int      `json:"processesStreamlined,omitempty"`
	ErrorHandlingAdded           int      `json:"errorHandlingAdded,omitempty"`
	OverallImprovementPercentage string   `json:"overallImprovementPercentage,omitempty"`
	KeyBenefits                  []string `json:"keyBenefits,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type OptimizeResult struct {
	OptimizedWorkflow   *OptimizedWorkflow   `json:"optimizedWorkflow"`
	Improvements        []Improvement        `json:"improvements"`
	OptimizationSummary *OptimizationSummary `json:"optimizationSummary"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (g GenerateResult) MarshalJSON() ([]byte, error) { return encodeLoose(g, g.Extra) }

func (g *GenerateResult) UnmarshalJSON(b []byte) error {
	var err error
	g.Extra, err = decodeLoose(b, g)
	return err
}

func (i IndustryContext) MarshalJSON() ([]byte, error) { return encodeLoose(i, i.Extra) }

func (i *IndustryContext) UnmarshalJSON(b []byte) error {
	var err error
	i.Extra, err = decodeLoose(b, i)
	return err
}

func (w WeakPoint) MarshalJSON() ([]byte, error) { return encodeLoose(w, w.Extra) }

func (w *WeakPoint) UnmarshalJSON(b []byte) error {
	var err error
	w.Extra, err = decodeLoose(b, w)
	return err
}

func (r RepetitiveProcess) MarshalJSON() ([]byte, error) { return encodeLoose(r, r.Extra) }

func (r *RepetitiveProcess) UnmarshalJSON(b []byte) error {
	var err error
	r.Extra, err = decodeLoose(b, r)
	return err
}

func (a AutomationOpportunity) MarshalJSON() ([]byte, error) { return encodeLoose(a, a.Extra) }

func (a *AutomationOpportunity) UnmarshalJSON(b []byte) error {
	var err error
	a.Extra, err = decodeLoose(b, a)
	return err
}

func (i ImprovementMetrics) MarshalJSON() ([]byte, error) { return encodeLoose(i, i.Extra) }

func (i *ImprovementMetrics) UnmarshalJSON(b []byte) error {
	var err error
	i.Extra, err = decodeLoose(b, i)
	return err
}

func (r Recommendation) MarshalJSON() ([]byte, error) { return encodeLoose(r, r.Extra) }

func (r *Recommendation) UnmarshalJSON(b []byte) error {
	var err error
	r.Extra, err = decodeLoose(b, r)
	return err
}

func (a AnalysisResult) MarshalJSON() ([]byte, error) { return encodeLoose(a, a.Extra) }

func (a *AnalysisResult) UnmarshalJSON(b []byte) error {
	var err error
	a.Extra, err = decodeLoose(b, a)
	return err
}

func (o OptimizedWorkflow) MarshalJSON() ([]byte, error) { return encodeLoose(o, o.Extra) }

func (o *OptimizedWorkflow) UnmarshalJSON(b []byte) error {
	var err error
	o.Extra, err = decodeLoose(b, o)
	return err
}

func (i ImprovementImpact) MarshalJSON() ([]byte, error) { return encodeLoose(i, i.Extra) }

func (i *ImprovementImpact) UnmarshalJSON(b []byte) error {
	var err error
	i.Extra, err = decodeLoose(b, i)
	return err
}

func (i Improvement) MarshalJSON() ([]byte, error) { return encodeLoose(i, i.Extra) }

func (i *Improvement) UnmarshalJSON(b []byte) error {
	var err error
	i.Extra, err = decodeLoose(b, i)
	return err
}

func (o OptimizationSummary) MarshalJSON() ([]byte, error) { return encodeLoose(o, o.Extra) }

func (o *OptimizationSummary) UnmarshalJSON(b []byte) error {
	var err error
	o.Extra, err = decodeLoose(b, o)
	return err
}

func (o OptimizeResult) MarshalJSON() ([]byte, error) { return encodeLoose(o, o.Extra) }

func (o *OptimizeResult) UnmarshalJSON(b []byte) error {
	var err error
	o.Extra, err = decodeLoose(b, o)
	return err
}
