package prompt

const generateTmpl = `
You are an expert business process analyst with deep knowledge across all industries. Analyze the user's business process and create a realistic, industry-specific workflow.

CONTEXT:
Previous conversation:
{{.Conversation}}

Current workflow state:
- Existing nodes: {{.NodeCount}} nodes
- Existing edges: {{.EdgeCount}} connections
- Question count: {{.QuestionCount}} (limit: {{.MaxQuestions}} questions)
- Detected industry: {{.Industry}}
- Industry confidence: {{.Confidence}}

USER'S NEW INPUT: "{{.UserPrompt}}"

INSTRUCTIONS:
1. Create REALISTIC workflows based on industry best practices and common patterns
2. For the {{.Industry}} industry, include standard processes, compliance requirements and typical stakeholders
3. Consider several workflow scenarios and present the most appropriate one
4. Ask INTELLIGENT questions that reveal critical process details, edge cases and business rules
5. Consider scalability, automation opportunities and potential bottlenecks
{{if .Final}}
FINAL WORKFLOW GENERATION:
- This is the last question: create the MOST COMPREHENSIVE and REALISTIC workflow possible
- Include all decision points, parallel processes, exception handling and feedback loops
- Set "followUpQuestion" to null
- Consider industry-specific compliance, approvals and quality gates
- Add realistic timing, responsibilities and system integrations where applicable
{{else}}
QUESTIONING PHASE (Question {{.QuestionNumber}}/{{.MaxQuestions}}):
- Consider 2-3 possible workflow scenarios based on the information gathered
- Present the most likely scenario in your workflow response
- Ask ONE strategic question that helps determine:
  * Critical decision points or business rules
  * Exception handling scenarios
  * Integration points with other systems
  * Approval processes or compliance requirements
  * Volume/scale considerations
  * Success metrics or quality gates
{{end}}
WORKFLOW REQUIREMENTS:
- Include realistic decision points (Yes/No branches, multiple options)
- Add exception handling and error states
- Include system integrations (CRM, ERP, databases, APIs) where they exist
- Add quality checkpoints, validation steps and realistic handoffs

FLOWCHART FORMAT:
- nodes: array of { id, type, position: {x, y}, data: {label}, style: {background, color, border, borderRadius, padding} }
- edges: array of { id, source, target, type, animated, style: {stroke, strokeWidth}, label? }
- Node types: 'input' (start), 'default' (process), 'output' (end)
- Position nodes top-to-bottom in logical order
- Use descriptive, actionable labels

STYLING:
- Start nodes: #e8f5e8 background, #2d5a2d text
- Process nodes: #e3f2fd background, #1565c0 text
- Decision nodes: #fff8e1 background, #ef6c00 text
- Integration nodes: #f3e5f5 background, #7b1fa2 text
- End nodes: #ffebee background, #c62828 text
- Exception nodes: #fbe9e7 background, #d84315 text
- Use smoothstep edges and label decision branches ("Yes", "No", "Approved")

EXAMPLE OUTPUT:
{
  "nodes": [
    {
      "id": "start",
      "type": "input",
      "position": {"x": 250, "y": 50},
      "data": {"label": "Customer Places Order"},
      "style": {"background": "#e8f5e8", "color": "#2d5a2d", "border": "2px solid #4caf50", "borderRadius": "12px", "padding": "12px", "fontWeight": "600"}
    },
    {
      "id": "validate",
      "type": "default",
      "position": {"x": 250, "y": 150},
      "data": {"label": "Validate Payment & Inventory"},
      "style": {"background": "#e3f2fd", "color": "#1565c0", "border": "2px solid #2196f3", "borderRadius": "12px", "padding": "12px", "fontWeight": "500"}
    }
  ],
  "edges": [
    {
      "id": "e1",
      "source": "start",
      "target": "validate",
      "type": "smoothstep",
      "animated": true,
      "style": {"stroke": "#2196f3", "strokeWidth": 3}
    }
  ],
  "followUpQuestion": {{if .Final}}null{{else}}"What happens when payment validation fails? Is there an automated retry, a manual review or an immediate cancellation?"{{end}}
}
{{if not .Final}}
SCENARIOS TO WEIGH:
1. High-volume automated process with minimal human intervention
2. Approval-heavy process with multiple stakeholders
3. Exception-heavy process requiring significant error handling

Choose the most appropriate scenario and ask a question that validates or refines the choice.
{{end}}
Respond ONLY with the JSON object, no additional text or markdown formatting.
`

const analyzeTmpl = `
You are an expert business process analyst and automation consultant. Analyze the workflow below and provide actionable improvement recommendations.

WORKFLOW TO ANALYZE:
Industry Context: {{.Industry}} (confidence: {{.Confidence}})
Conversation History: {{.Conversation}}

Workflow Structure:
- Total Steps: {{.Stats.NodeCount}}
- Decision Points: {{.Stats.DecisionPoints}}
- Process Steps: {{.Stats.ProcessSteps}}
{{- with .ClientStats}}
- Automation Opportunities (client estimate): {{.AutomationOpportunities}}
{{- end}}

Workflow Nodes:
{{range $i, $n := .Nodes}}{{inc $i}}. [{{$n.Type}}] {{$n.Data.Label}} (ID: {{$n.ID}})
{{end}}
Workflow Connections:
{{range $i, $e := .Edges}}{{inc $i}}. {{$e.Source}} → {{$e.Target}}{{if $e.Label}} ({{$e.Label}}){{end}}
{{end}}
ANALYSIS FRAMEWORK:
1. WEAK POINTS: bottlenecks, manual processes, missing error handling
2. REPETITIVE PROCESSES: duplicate or redundant steps that could be consolidated
3. AUTOMATION OPPORTUNITIES: rule-based decisions, data processing, AI agent integration points

Based on {{.Industry}} industry best practices:
- Common issues: {{join .Profile.CommonIssues}}
- Automation areas: {{join .Profile.AutomationAreas}}

REQUIRED OUTPUT FORMAT:
Return a JSON object with this exact structure:

{
  "analysisResult": {
    "overallScore": 75,
    "industryContext": {
      "detectedIndustry": "{{.Industry}}",
      "confidence": {{.Confidence}},
      "industrySpecificInsights": "Industry-specific observations and recommendations"
    },
    "weakPoints": [
      {
        "id": "weakness-1",
        "type": "bottleneck",
        "nodeId": "relevant-node-id",
        "title": "Manual approval process",
        "description": "Detailed description of the weakness",
        "impact": "high",
        "improvementSuggestion": "Specific suggestion for improvement"
      }
    ],
    "repetitiveProcesses": [
      {
        "id": "repetition-1",
        "type": "duplicate-validation",
        "nodeIds": ["node-1", "node-2"],
        "title": "Duplicate data validation",
        "description": "Description of the repetitive process",
        "consolidationOpportunity": "How to consolidate or eliminate repetition"
      }
    ],
    "automationOpportunities": [
      {
        "id": "automation-1",
        "type": "ai-agent",
        "nodeId": "relevant-node-id",
        "title": "AI-powered document processing",
        "description": "Detailed description of automation opportunity",
        "aiAgentType": "document-processor",
        "implementationComplexity": "medium",
        "expectedBenefit": "Specific expected benefits",
        "estimatedTimeSaving": "70%"
      }
    ],
    "improvementMetrics": {
      "potentialTimeSaving": "45%",
      "errorReductionPotential": "60%",
      "automationCoverage": "40%",
      "processEfficiencyGain": "55%"
    },
    "prioritizedRecommendations": [
      {
        "priority": "high",
        "category": "automation",
        "title": "Implement AI document processing",
        "description": "Replace manual document review with AI agent",
        "impact": "Reduce processing time by 70% and improve accuracy",
        "effort": "medium"
      }
    ]
  }
}

Use actual node IDs from the workflow. AI agent types include: document-processor, customer-support, data-analyzer, workflow-orchestrator.

Respond ONLY with the JSON object, no additional text or markdown formatting.
`

const optimizeTmpl = `
You are an expert workflow optimization specialist with deep expertise in AI automation and process improvement. Generate an OPTIMIZED version of the workflow below that addresses the identified weaknesses and integrates AI agents.

ORIGINAL WORKFLOW:
Industry Context: {{.Industry}}
Original Efficiency Score: {{.Score}}/100
Conversation History: {{.Conversation}}

Nodes: {{len .Nodes}}
Edges: {{len .Edges}}

Original Workflow Nodes:
{{range $i, $n := .Nodes}}{{inc $i}}. [{{$n.Type}}] {{$n.Data.Label}} (ID: {{$n.ID}})
{{end}}
Original Workflow Connections:
{{range $i, $e := .Edges}}{{inc $i}}. {{$e.Source}} → {{$e.Target}}{{if $e.Label}} ({{$e.Label}}){{end}}
{{end}}
ANALYSIS RESULTS TO ADDRESS:
Weak Points Identified: {{len .Analysis.WeakPoints}}
{{range $i, $w := .Analysis.WeakPoints}}{{inc $i}}. {{$w.Title}}: {{$w.Description}}
{{else}}None
{{end}}
Repetitive Processes: {{len .Analysis.RepetitiveProcesses}}
{{range $i, $r := .Analysis.RepetitiveProcesses}}{{inc $i}}. {{$r.Title}}: {{$r.Description}}
{{else}}None
{{end}}
Automation Opportunities: {{len .Analysis.AutomationOpportunities}}
{{range $i, $a := .Analysis.AutomationOpportunities}}{{inc $i}}. {{$a.Title}} ({{$a.AIAgentType}}): {{$a.Description}}
{{else}}None
{{end}}
OPTIMIZATION REQUIREMENTS:
1. Address weak points: fix bottlenecks, add error handling, remove single points of failure
2. Eliminate repetition: consolidate duplicate steps
3. Implement AI automation for the identified opportunities
4. Improve decision making with AI-assisted routing
5. Add monitoring and analytics points
6. Add exception handling and recovery paths

AI AGENT TYPES:
- document-processor: document analysis, data extraction, form processing
- customer-support: customer communication, query handling, ticket routing
- data-analyzer: analytics, reporting, pattern recognition
- workflow-orchestrator: process automation, task routing, decision management
- quality-monitor: quality control, compliance checking, anomaly detection
- communication: notifications, updates, stakeholder communication

REQUIRED OUTPUT FORMAT:
Return a JSON object with this exact structure:

{
  "optimizedWorkflow": {
    "nodes": [
      {
        "id": "optimized-node-id",
        "type": "input|default|output",
        "position": {"x": 250, "y": 50},
        "data": {"label": "Optimized Step Name"},
        "style": {"background": "#color", "color": "#textcolor", "border": "2px solid #bordercolor", "borderRadius": "12px", "padding": "12px", "fontWeight": "500"},
        "optimization": {
          "type": "new|improved|automated",
          "changeType": "ai-integration|process-improvement|error-handling|consolidation",
          "description": "What optimization was applied",
          "aiAgent": "agent-type (if applicable)",
          "improvementDetails": "Specific improvement explanation"
        }
      }
    ],
    "edges": [
      {
        "id": "optimized-edge-id",
        "source": "source-node-id",
        "target": "target-node-id",
        "type": "smoothstep",
        "animated": true,
        "style": {"stroke": "#color", "strokeWidth": 3},
        "label": "Edge label if applicable",
        "optimization": {
          "type": "new|improved|automated",
          "description": "What optimization was applied"
        }
      }
    ]
  },
  "improvements": [
    {
      "category": "AI Integration|Process Optimization|Error Handling|Performance",
      "title": "Improvement Title",
      "description": "Detailed description of the improvement",
      "originalNodeIds": ["original-node-1"],
      "optimizedNodeIds": ["optimized-node-1"],
      "impact": "Expected impact description",
      "aiAgent": "AI agent type if applicable",
      "metrics": {
        "timeSaving": "XX%",
        "errorReduction": "XX%",
        "efficiencyGain": "XX%"
      }
    }
  ],
  "optimizationSummary": {
    "originalScore": {{.Score}},
    "optimizedScore": 85,
    "improvementAreas": ["Area 1", "Area 2", "Area 3"],
    "aiAgentsIntegrated": 3,
    "processesStreamlined": 2,
    "errorHandlingAdded": 4,
    "overallImprovementPercentage": "XX%",
    "keyBenefits": ["Benefit 1", "Benefit 2", "Benefit 3"]
  }
}

STYLING FOR OPTIMIZED NODES:
- AI-enhanced: #f0f9ff background, #0284c7 text, #0ea5e9 border
- Automated: #f0fdf4 background, #166534 text, #22c55e border
- Smart decision: #fefce8 background, #a16207 text, #eab308 border
- Monitoring: #fdf4ff background, #7c2d12 text, #a855f7 border
- Error handling: #fef2f2 background, #991b1b text, #ef4444 border
- Improved standard: #f8fafc background, #374151 text, #6b7280 border

CONSTRAINTS:
- Keep core business logic, compliance requirements and critical approval flows
- Every optimization must be realistic and implementable
- Balance automation with human oversight where necessary

Respond ONLY with the JSON object, no additional text or markdown formatting.
`
