package command

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"workflow-analyst/internal/client"
)

const AppName = "flowchat"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

const defaultServer = "http://localhost:8080"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Flowchat - describe a business process, get a flowchart",
		Long:          "Flowchat talks to the workflow analyst server: it builds a flowchart through a short dialogue, then analyzes and optimizes it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	server := os.Getenv("FLOWCHAT_SERVER")
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().String("server", server, "workflow analyst server URL (env FLOWCHAT_SERVER)")
	cmd.PersistentFlags().Duration("timeout", 3*time.Minute, "per-request timeout")
	cmd.PersistentFlags().Bool("json", false, "output in JSON format")

	cmd.AddCommand(
		NewChatCmd(),
		NewAnalyzeCmd(),
		NewOptimizeCmd(),
		NewSubmitCmd(),
		NewStatusCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}

func newClient(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return client.New(server, timeout)
}

func jsonMode(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
