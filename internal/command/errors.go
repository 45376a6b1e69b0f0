package command

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"workflow-analyst/internal/client"
)

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())

	switch code := client.StatusOf(err); {
	case code == http.StatusServiceUnavailable:
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: the server job queue is full. Retry shortly.")
	case code == 0 && err != nil:
		if server, _ := cmd.Flags().GetString("server"); server != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Hint: is the server running at %s?\n", server)
		}
	}
	return err
}
