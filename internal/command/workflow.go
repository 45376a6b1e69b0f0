package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"workflow-analyst/internal/client"
	"workflow-analyst/internal/domain/model"
)

// NewAnalyzeCmd analyzes a saved workflow.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <workflow.json|->",
		Short: "Analyze a saved workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := readWorkflow(args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			stats := model.ComputeWorkflowStats(wf.Nodes)
			res, err := newClient(cmd).Analyze(cmd.Context(), model.AnalyzeRequest{
				Nodes:               wf.Nodes,
				Edges:               wf.Edges,
				ConversationHistory: wf.ConversationHistory,
				WorkflowStats:       &stats,
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if jsonMode(cmd) {
				return printJSON(cmd.OutOrStdout(), model.AnalyzeResponse{AnalysisResult: res})
			}
			fmt.Fprintln(cmd.OutOrStdout(), client.RenderAnalysis(res))
			return nil
		},
	}
	return cmd
}

// NewOptimizeCmd optimizes a saved workflow, analyzing it first when the file has no analysis.
func NewOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize <workflow.json|->",
		Short: "Optimize a saved workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := readWorkflow(args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			c := newClient(cmd)
			if wf.AnalysisResult == nil {
				stats := model.ComputeWorkflowStats(wf.Nodes)
				wf.AnalysisResult, err = c.Analyze(cmd.Context(), model.AnalyzeRequest{
					Nodes:               wf.Nodes,
					Edges:               wf.Edges,
					ConversationHistory: wf.ConversationHistory,
					WorkflowStats:       &stats,
				})
				if err != nil {
					return writeCommandError(cmd, err)
				}
			}
			res, err := c.Optimize(cmd.Context(), model.OptimizeRequest{
				OriginalNodes:       wf.Nodes,
				OriginalEdges:       wf.Edges,
				AnalysisResult:      wf.AnalysisResult,
				ConversationHistory: wf.ConversationHistory,
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if out, _ := cmd.Flags().GetString("out"); out != "" && res.OptimizedWorkflow != nil {
				if err := writeWorkflow(out, &workflowFile{
					Nodes: res.OptimizedWorkflow.Nodes,
					Edges: res.OptimizedWorkflow.Edges,
				}); err != nil {
					return writeCommandError(cmd, err)
				}
			}
			if jsonMode(cmd) {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), client.RenderOptimization(res))
			return nil
		},
	}
	cmd.Flags().String("out", "", "write the optimized workflow to this file")
	return cmd
}
