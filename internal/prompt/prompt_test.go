package prompt

import (
	"strings"
	"testing"

	"workflow-analyst/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Detection
	}{
		{"nothing", "we paint fences", Detection{General, 0}},
		{"ecommerce", "Customer places an ORDER and we ship the product", Detection{"ecommerce", 3}},
		{"healthcare", "patient books an appointment for treatment", Detection{"healthcare", 3}},
		// "payment" scores for ecommerce and finance; the earlier row wins ties.
		{"tie keeps first", "payment", Detection{"ecommerce", 1}},
		{"multiword keyword", "our social media campaign", Detection{"marketing", 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectForGenerate(tt.text))
		})
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	text := "order shipping inventory delivery warehouse tracking"
	first := DetectForGenerate(text)
	for i := 0; i < 50; i++ {
		require.Equal(t, first, DetectForGenerate(text))
	}
}

func TestDetectForAnalysis(t *testing.T) {
	assert.Equal(t, Detection{"hr", 2}, DetectForAnalysis("New employee onboarding"))
	// the general profile keywords never win on their own
	assert.Equal(t, Detection{General, 0}, DetectForAnalysis("review the workflow task"))
	assert.Equal(t, "general", ProfileFor("marketing").Name)
	assert.Contains(t, ProfileFor("finance").CommonIssues, "manual approvals")
}

func TestFollowUpQuestion(t *testing.T) {
	assert.Equal(t, questionBank["healthcare"][1], FollowUpQuestion("healthcare", 1))
	assert.Equal(t, questionBank["healthcare"][0], FollowUpQuestion("healthcare", 3))
	assert.Equal(t, questionBank["default"][2], FollowUpQuestion("logistics", 2))
}

func TestFallbackFor(t *testing.T) {
	assert.Equal(t, "E-commerce Order Process", FallbackFor("ecommerce").Title)
	assert.Equal(t, "Business Process", FallbackFor("sales").Title)
	assert.Len(t, FallbackFor("healthcare").Steps, 5)
}

func TestGeneratePrompt(t *testing.T) {
	req := model.GenerateRequest{
		UserPrompt:    "Customers place orders online",
		CurrentNodes:  []model.Node{{ID: "a"}},
		QuestionCount: 1,
		ConversationHistory: []model.ConversationMessage{
			{Sender: "user", Text: "hello"},
			{Sender: "ai", Text: "what process?"},
		},
	}
	p, det, err := Generate(req)
	require.NoError(t, err)
	assert.Equal(t, "ecommerce", det.Industry)
	assert.Contains(t, p, `USER'S NEW INPUT: "Customers place orders online"`)
	assert.Contains(t, p, "user: hello\nai: what process?")
	assert.Contains(t, p, "Question 2/5")
	assert.Contains(t, p, "Existing nodes: 1 nodes")
	assert.NotContains(t, p, "FINAL WORKFLOW GENERATION")

	req.QuestionCount = 4
	p, _, err = Generate(req)
	require.NoError(t, err)
	assert.Contains(t, p, "FINAL WORKFLOW GENERATION")
	assert.Contains(t, p, `"followUpQuestion": null`)
}

func TestGeneratePromptKeepsLastTenMessages(t *testing.T) {
	var hist []model.ConversationMessage
	for i := 0; i < 12; i++ {
		hist = append(hist, model.ConversationMessage{Sender: "user", Text: string(rune('a' + i))})
	}
	p, _, err := Generate(model.GenerateRequest{UserPrompt: "x", ConversationHistory: hist})
	require.NoError(t, err)
	assert.NotContains(t, p, "user: b\n")
	assert.Contains(t, p, "user: c\n")
	assert.Contains(t, p, "user: l")
}

func TestAnalyzePrompt(t *testing.T) {
	req := model.AnalyzeRequest{
		Nodes: []model.Node{
			{ID: "n1", Type: "input", Data: model.NodeData{Label: "Patient arrives"}},
			{ID: "n2", Type: "default", Data: model.NodeData{Label: "Approve treatment?"}},
			{ID: "n3", Type: "output", Data: model.NodeData{Label: "Discharge"}},
		},
		Edges: []model.Edge{{Source: "n1", Target: "n2"}, {Source: "n2", Target: "n3", Label: "Yes"}},
	}
	p, det, err := Analyze(req)
	require.NoError(t, err)
	assert.Equal(t, "healthcare", det.Industry)
	assert.Contains(t, p, "1. [input] Patient arrives (ID: n1)")
	assert.Contains(t, p, "2. n2 → n3 (Yes)")
	assert.Contains(t, p, "Decision Points: 1")
	assert.Contains(t, p, `"detectedIndustry": "healthcare"`)
	assert.Contains(t, p, "appointment scheduling, patient communication")
}

func TestOptimizePrompt(t *testing.T) {
	req := model.OptimizeRequest{
		OriginalNodes: []model.Node{{ID: "n1", Type: "input", Data: model.NodeData{Label: "Start"}}},
		AnalysisResult: &model.AnalysisResult{
			WeakPoints: []model.WeakPoint{{Title: "Slow review", Description: "manual"}},
		},
	}
	p, err := Optimize(req)
	require.NoError(t, err)
	assert.Contains(t, p, "Industry Context: general")
	assert.Contains(t, p, "Original Efficiency Score: 70/100")
	assert.Contains(t, p, "1. Slow review: manual")
	assert.Contains(t, p, `"originalScore": 70,`)
	assert.True(t, strings.Contains(p, "Repetitive Processes: 0\nNone"))

	_, err = Optimize(model.OptimizeRequest{})
	assert.Error(t, err)
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "72.5", FormatScore(72.5))
	assert.Equal(t, "80", FormatScore(80))
}
