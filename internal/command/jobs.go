package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"workflow-analyst/internal/client"
	"workflow-analyst/internal/domain/model"
)

// NewSubmitCmd queues an async generation job.
func NewSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <description...>",
		Short: "Queue a workflow generation job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(cmd)
			sub, err := c.Submit(cmd.Context(), model.GenerateRequest{
				UserPrompt:          strings.Join(args, " "),
				CurrentNodes:        []model.Node{},
				CurrentEdges:        []model.Edge{},
				ConversationHistory: []model.ConversationMessage{},
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}

			wait, _ := cmd.Flags().GetBool("wait")
			if !wait {
				if jsonMode(cmd) {
					return printJSON(cmd.OutOrStdout(), sub)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (estimated %s)\n", sub.JobID, sub.Message, sub.EstimatedTime)
				return nil
			}
			interval, _ := cmd.Flags().GetDuration("interval")
			return waitForJob(cmd, c, sub.JobID, interval)
		},
	}
	cmd.Flags().Bool("wait", false, "poll until the job finishes")
	cmd.Flags().Duration("interval", 2*time.Second, "poll interval with --wait")
	return cmd
}

// NewStatusCmd polls a job once.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <jobId>",
		Short: "Show the status of a generation job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(cmd)
			if wait, _ := cmd.Flags().GetBool("wait"); wait {
				interval, _ := cmd.Flags().GetDuration("interval")
				return waitForJob(cmd, c, args[0], interval)
			}
			st, err := c.Status(cmd.Context(), args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			return printJob(cmd, st)
		},
	}
	cmd.Flags().Bool("wait", false, "poll until the job finishes")
	cmd.Flags().Duration("interval", 2*time.Second, "poll interval with --wait")
	return cmd
}

func waitForJob(cmd *cobra.Command, c *client.Client, jobID string, interval time.Duration) error {
	var last model.JobStatus
	st, err := c.Wait(cmd.Context(), jobID, interval, func(st *client.JobStatus) {
		if st.Status != last && !jsonMode(cmd) {
			fmt.Fprintln(cmd.OutOrStdout(), client.RenderJob(st, time.Now()))
		}
		last = st.Status
	})
	if err != nil {
		return writeCommandError(cmd, err)
	}
	if jsonMode(cmd) {
		return printJSON(cmd.OutOrStdout(), st)
	}
	if err := printResult(cmd, st); err != nil {
		return err
	}
	if st.Status == model.JobStatusFailed {
		return errors.New("job failed")
	}
	return nil
}

func printJob(cmd *cobra.Command, st *client.JobStatus) error {
	if jsonMode(cmd) {
		return printJSON(cmd.OutOrStdout(), st)
	}
	fmt.Fprintln(cmd.OutOrStdout(), client.RenderJob(st, time.Now()))
	return printResult(cmd, st)
}

func printResult(cmd *cobra.Command, st *client.JobStatus) error {
	if st.Status != model.JobStatusCompleted || len(st.Result) == 0 {
		return nil
	}
	res, err := st.Generated()
	if err != nil {
		return writeCommandError(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), client.RenderDiagram(res.Nodes, res.Edges))
	if res.FollowUpQuestion != nil {
		fmt.Fprintln(cmd.OutOrStdout(), client.RenderMessage(model.ConversationMessage{Sender: model.SenderAI, Text: *res.FollowUpQuestion}))
	}
	return nil
}

func userMessage(text string) model.ConversationMessage {
	return model.ConversationMessage{Sender: model.SenderUser, Text: text}
}
