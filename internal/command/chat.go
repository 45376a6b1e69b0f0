package command

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"workflow-analyst/internal/client"
)

const chatHelp = `Commands:
  /diagram   show the current workflow
  /stats     show dialogue progress
  /analyze   analyze the workflow
  /optimize  optimize the analyzed workflow
  /save FILE write the session to FILE
  /quit      leave`

// NewChatCmd creates the interactive design dialogue.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [description]",
		Short: "Build a workflow through a short question dialogue",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			save, _ := cmd.Flags().GetString("save")
			s := client.NewSession(newClient(cmd))
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, client.RenderMessage(s.LastMessage()))
			fmt.Fprintln(out, chatHelp)

			if first := strings.TrimSpace(strings.Join(args, " ")); first != "" {
				fmt.Fprintln(out, client.RenderMessage(userMessage(first)))
				chatSend(cmd, s, first)
			}

			err := chatLoop(cmd, s, cmd.InOrStdin())
			if save != "" {
				if werr := saveSession(save, s); werr != nil {
					return writeCommandError(cmd, werr)
				}
				fmt.Fprintf(out, "saved session to %s\n", save)
			}
			return err
		},
	}
	cmd.Flags().String("save", "", "write the session to this file on exit")
	return cmd
}

func chatLoop(cmd *cobra.Command, s *client.Session, in io.Reader) error {
	out := cmd.OutOrStdout()
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, "you> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			chatSend(cmd, s, line)
			continue
		}

		name, arg, _ := strings.Cut(line, " ")
		switch name {
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(out, chatHelp)
		case "/diagram":
			fmt.Fprintln(out, client.RenderDiagram(s.Nodes, s.Edges))
		case "/stats":
			fmt.Fprintln(out, client.RenderStats(s))
		case "/analyze":
			res, err := s.Analyze(cmd.Context())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
				continue
			}
			fmt.Fprintln(out, client.RenderMessage(s.LastMessage()))
			fmt.Fprintln(out, client.RenderAnalysis(res))
		case "/optimize":
			res, err := s.Optimize(cmd.Context())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
				continue
			}
			fmt.Fprintln(out, client.RenderOptimization(res))
		case "/save":
			if arg == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error: /save needs a file name")
				continue
			}
			if err := saveSession(strings.TrimSpace(arg), s); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
				continue
			}
			fmt.Fprintf(out, "saved session to %s\n", arg)
		default:
			fmt.Fprintf(cmd.ErrOrStderr(), "unknown command %s\n", name)
		}
	}
}

func chatSend(cmd *cobra.Command, s *client.Session, text string) {
	out := cmd.OutOrStdout()
	err := s.Send(cmd.Context(), text)
	fmt.Fprintln(out, client.RenderMessage(s.LastMessage()))
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
		return
	}
	fmt.Fprintln(out, client.RenderDiagram(s.Nodes, s.Edges))
	if s.Done() {
		fmt.Fprintln(out, "Type /analyze to review the workflow.")
	}
}

func saveSession(path string, s *client.Session) error {
	return writeWorkflow(path, &workflowFile{
		Nodes:               s.Nodes,
		Edges:               s.Edges,
		ConversationHistory: s.Conversation,
		AnalysisResult:      s.Analysis,
		OptimizeResult:      s.Optimized,
	})
}
