package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"workflow-analyst/internal/domain/model"
)

// MaxQuestions is the length of the design dialogue.
const MaxQuestions = 5

const welcome = "Hello! I'm your AI Workflow Analyst. I create realistic, industry-specific workflow diagrams " +
	"by understanding your business processes.\n\nI'll detect your industry and ask up to 5 questions to " +
	"gather the details needed for an accurate workflow. Describe your business process to get started!"

// API is the part of Client a Session needs.
type API interface {
	Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResult, error)
	Analyze(ctx context.Context, req model.AnalyzeRequest) (*model.AnalysisResult, error)
	Optimize(ctx context.Context, req model.OptimizeRequest) (*model.OptimizeResult, error)
}

// Session holds the diagram, conversation and question counter of one design dialogue.
type Session struct {
	api API

	Conversation  []model.ConversationMessage
	Nodes         []model.Node
	Edges         []model.Edge
	QuestionCount int
	Stats         model.WorkflowStats
	Analysis      *model.AnalysisResult
	Optimized     *model.OptimizeResult
}

func NewSession(api API) *Session {
	return &Session{
		api:          api,
		Conversation: []model.ConversationMessage{{Sender: model.SenderAI, Text: welcome}},
		Nodes:        []model.Node{},
		Edges:        []model.Edge{},
	}
}

// Done reports whether the dialogue has reached its last question.
func (s *Session) Done() bool { return s.QuestionCount >= MaxQuestions }

// Progress is the dialogue completion in percent.
func (s *Session) Progress() int {
	return min(s.QuestionCount, MaxQuestions) * 100 / MaxQuestions
}

// LastMessage returns the newest conversation entry.
func (s *Session) LastMessage() model.ConversationMessage {
	return s.Conversation[len(s.Conversation)-1]
}

// Send posts the user's answer and records the assistant's reply in the conversation.
// Request failures become an assistant message as well; the error is returned too.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if s.Done() {
		return errors.New("the dialogue is complete; analyze or optimize the workflow")
	}
	history := append([]model.ConversationMessage(nil), s.Conversation...)
	s.Conversation = append(s.Conversation, model.ConversationMessage{Sender: model.SenderUser, Text: text})

	res, err := s.api.Generate(ctx, model.GenerateRequest{
		UserPrompt:          text,
		CurrentNodes:        s.Nodes,
		CurrentEdges:        s.Edges,
		ConversationHistory: history,
		QuestionCount:       s.QuestionCount,
	})
	if err != nil {
		s.say(generateErrorMessage(err))
		return err
	}

	if len(res.Nodes) > 0 {
		s.Nodes = res.Nodes
		s.Edges = res.Edges
		if s.Edges == nil {
			s.Edges = []model.Edge{}
		}
		s.Stats = model.ComputeWorkflowStats(s.Nodes)
	}

	if res.FollowUpQuestion != nil && *res.FollowUpQuestion != "" && s.QuestionCount < MaxQuestions-1 {
		s.say(*res.FollowUpQuestion)
		s.QuestionCount++
		return nil
	}
	if len(res.Nodes) > 0 {
		s.say(fmt.Sprintf("Perfect! I've created your workflow diagram with %d steps and %d connections. "+
			"It includes the processes, decision points and business flows from our conversation.\n\n"+
			"Your workflow is complete and ready for analysis!", len(res.Nodes), len(res.Edges)))
	} else {
		s.say("I've analyzed your process and created a workflow diagram. Review it to see all the steps, " +
			"decision points and connections in your business process.")
	}
	s.QuestionCount = MaxQuestions
	return nil
}

// Analyze runs the analysis pass on the current diagram.
func (s *Session) Analyze(ctx context.Context) (*model.AnalysisResult, error) {
	if len(s.Nodes) == 0 {
		return nil, errors.New("no workflow yet: describe your process first")
	}
	stats := s.Stats
	res, err := s.api.Analyze(ctx, model.AnalyzeRequest{
		Nodes:               s.Nodes,
		Edges:               s.Edges,
		ConversationHistory: s.Conversation,
		WorkflowStats:       &stats,
	})
	if err != nil {
		s.say("I encountered an issue analyzing your workflow. Please try again in a moment.")
		return nil, err
	}
	s.Analysis = res
	s.say(fmt.Sprintf("Workflow analysis complete! I found %d weak points, %d automation opportunities "+
		"and %d areas for improvement.\n\nOverall efficiency score: %g/100",
		len(res.WeakPoints), len(res.AutomationOpportunities), len(res.RepetitiveProcesses), res.OverallScore))
	return res, nil
}

// Optimize runs the optimize pass; Analyze must have succeeded first.
func (s *Session) Optimize(ctx context.Context) (*model.OptimizeResult, error) {
	if len(s.Nodes) == 0 || s.Analysis == nil {
		return nil, errors.New("analyze the workflow before optimizing it")
	}
	res, err := s.api.Optimize(ctx, model.OptimizeRequest{
		OriginalNodes:       s.Nodes,
		OriginalEdges:       s.Edges,
		AnalysisResult:      s.Analysis,
		ConversationHistory: s.Conversation,
	})
	if err != nil {
		s.say("I encountered an issue optimizing your workflow. Please try again in a moment.")
		return nil, err
	}
	s.Optimized = res
	if sum := res.OptimizationSummary; sum != nil {
		s.say(fmt.Sprintf("Workflow optimization complete! Score %g -> %g.", sum.OriginalScore, sum.OptimizedScore))
	}
	return res, nil
}

func (s *Session) say(text string) {
	s.Conversation = append(s.Conversation, model.ConversationMessage{Sender: model.SenderAI, Text: text})
}

func generateErrorMessage(err error) string {
	msg := "I encountered an issue analyzing your process. "
	switch code := StatusOf(err); {
	case code == http.StatusTooManyRequests:
		return msg + "The AI service is currently busy. Please try again in a moment."
	case code >= 500:
		return msg + "There's a temporary service issue. Please try again."
	default:
		return msg + "Please try rephrasing your workflow description or providing more specific details."
	}
}
