package prompt

import "strings"

// General is the industry reported when no keyword matches.
const General = "general"

// Industry is one row of a keyword table. Tables are ordered so detection is deterministic.
type Industry struct {
	Name     string
	Keywords []string
}

// Profile adds analysis hints to an industry.
type Profile struct {
	Industry
	CommonIssues    []string
	AutomationAreas []string
}

// Detection is the outcome of keyword matching. Confidence is the number of matched keywords.
type Detection struct {
	Industry   string `json:"industry"`
	Confidence int    `json:"confidence"`
}

var generateIndustries = []Industry{
	{"ecommerce", []string{"order", "customer", "payment", "shipping", "inventory", "cart", "checkout", "product"}},
	{"healthcare", []string{"patient", "appointment", "medical", "diagnosis", "treatment", "insurance", "prescription"}},
	{"manufacturing", []string{"production", "quality", "assembly", "materials", "inspection", "packaging", "delivery"}},
	{"finance", []string{"transaction", "approval", "compliance", "audit", "risk", "account", "payment", "verification"}},
	{"hr", []string{"employee", "hiring", "onboarding", "performance", "payroll", "leave", "training"}},
	{"marketing", []string{"campaign", "lead", "conversion", "content", "social media", "analytics", "roi"}},
	{"education", []string{"student", "course", "assessment", "grading", "enrollment", "curriculum"}},
	{"support", []string{"ticket", "issue", "resolution", "escalation", "customer service", "feedback"}},
	{"sales", []string{"prospect", "quote", "proposal", "negotiation", "contract", "closing", "follow-up"}},
	{"logistics", []string{"warehouse", "shipping", "tracking", "delivery", "inventory", "distribution"}},
}

var analysisProfiles = []Profile{
	{
		Industry:        Industry{"ecommerce", []string{"order", "customer", "payment", "shipping", "inventory"}},
		CommonIssues:    []string{"payment failures", "inventory sync", "shipping delays", "customer communication"},
		AutomationAreas: []string{"inventory updates", "payment processing", "shipping notifications", "customer support"},
	},
	{
		Industry:        Industry{"healthcare", []string{"patient", "appointment", "medical", "diagnosis", "treatment"}},
		CommonIssues:    []string{"appointment scheduling", "patient communication", "record keeping", "compliance"},
		AutomationAreas: []string{"appointment reminders", "record updates", "prescription processing", "insurance verification"},
	},
	{
		Industry:        Industry{"manufacturing", []string{"production", "quality", "assembly", "materials", "inspection"}},
		CommonIssues:    []string{"quality control", "material shortages", "production bottlenecks", "equipment downtime"},
		AutomationAreas: []string{"quality monitoring", "inventory management", "production scheduling", "maintenance alerts"},
	},
	{
		Industry:        Industry{"finance", []string{"transaction", "approval", "compliance", "audit", "risk"}},
		CommonIssues:    []string{"manual approvals", "compliance tracking", "risk assessment", "audit preparation"},
		AutomationAreas: []string{"transaction monitoring", "compliance checks", "risk scoring", "report generation"},
	},
	{
		Industry:        Industry{"hr", []string{"employee", "hiring", "onboarding", "performance", "payroll"}},
		CommonIssues:    []string{"manual onboarding", "performance tracking", "leave management", "compliance"},
		AutomationAreas: []string{"onboarding workflows", "performance reviews", "leave approvals", "payroll processing"},
	},
}

var generalProfile = Profile{
	Industry:        Industry{General, []string{"process", "workflow", "task", "approval", "review"}},
	CommonIssues:    []string{"manual processes", "communication gaps", "approval delays", "data inconsistency"},
	AutomationAreas: []string{"task automation", "notification systems", "data synchronization", "report generation"},
}

// Detect scores text against table. Ties keep the earlier row.
func Detect(table []Industry, text string) Detection {
	lower := strings.ToLower(text)
	best := Detection{Industry: General}
	for _, ind := range table {
		if ind.Name == General {
			continue
		}
		score := 0
		for _, kw := range ind.Keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > best.Confidence {
			best = Detection{Industry: ind.Name, Confidence: score}
		}
	}
	return best
}

// DetectForGenerate uses the ten-industry table.
func DetectForGenerate(text string) Detection {
	return Detect(generateIndustries, text)
}

// DetectForAnalysis uses the analysis profiles.
func DetectForAnalysis(text string) Detection {
	table := make([]Industry, 0, len(analysisProfiles))
	for _, p := range analysisProfiles {
		table = append(table, p.Industry)
	}
	return Detect(table, text)
}

// ProfileFor returns the analysis profile for name, or the general profile.
func ProfileFor(name string) Profile {
	for _, p := range analysisProfiles {
		if p.Name == name {
			return p
		}
	}
	return generalProfile
}

var questionBank = map[string][]string{
	"ecommerce": {
		"How do you handle inventory shortages - backorders, substitutions, or immediate cancellation?",
		"What approval process do you have for high-value orders or suspicious transactions?",
		"How do you manage returns and refunds in your current process?",
	},
	"healthcare": {
		"What patient consent and privacy protocols must be followed in this workflow?",
		"How do you handle emergency situations or urgent cases in this process?",
		"What documentation and compliance requirements need to be included?",
	},
	"manufacturing": {
		"What quality control checkpoints are required at each stage?",
		"How do you handle defects or failures during the production process?",
		"What regulatory compliance or safety protocols must be followed?",
	},
	"default": {
		"What happens when this process encounters an exception or error?",
		"Who are the key stakeholders that need to approve or review steps?",
		"What systems or tools are currently used in this process?",
	},
}

// FollowUpQuestion picks a canned question for industry, cycling by questionCount.
func FollowUpQuestion(industry string, questionCount int) string {
	qs, ok := questionBank[industry]
	if !ok {
		qs = questionBank["default"]
	}
	if questionCount < 0 {
		questionCount = 0
	}
	return qs[questionCount%len(qs)]
}

// Fallback is a linear placeholder process used when the model reply is unusable.
type Fallback struct {
	Title    string
	Steps    []string
	Question string
}

var fallbacks = map[string]Fallback{
	"ecommerce": {
		Title:    "E-commerce Order Process",
		Steps:    []string{"Order Received", "Payment Validation", "Inventory Check", "Fulfillment", "Shipping"},
		Question: "What payment methods do you accept, and do you have automated inventory management?",
	},
	"healthcare": {
		Title:    "Patient Care Workflow",
		Steps:    []string{"Patient Registration", "Medical Assessment", "Treatment Plan", "Care Delivery", "Follow-up"},
		Question: "What type of medical practice is this for, and do you have electronic health records integration?",
	},
	"default": {
		Title:    "Business Process",
		Steps:    []string{"Process Start", "Input Processing", "Decision Point", "Action Taken", "Process Complete"},
		Question: "What industry or type of business process are you looking to map out?",
	},
}

// FallbackFor returns the placeholder process for industry, or the generic one.
func FallbackFor(industry string) Fallback {
	if fb, ok := fallbacks[industry]; ok {
		return fb
	}
	return fallbacks["default"]
}
