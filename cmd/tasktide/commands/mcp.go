package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tasktide/internal/mcp"
)

// mcpCmd serves the board over the Model Context Protocol
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the board to MCP clients over stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout.

Tools:
  list_board     - the partitioned board of a project
  blocked_by     - the incomplete tasks blocking a task
  move_task      - move a task to a column
  complete_task  - complete or reopen a task

Logs go to stderr so they do not corrupt the protocol stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(getContext())
		defer cancel()

		c, err := followBoard(ctx)
		if err != nil {
			return err
		}
		return mcp.Serve(mcp.NewServer(c.Coordinator, Version))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
