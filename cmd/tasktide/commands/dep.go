package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// depCmd represents the dependency command
var depCmd = &cobra.Command{
	Use:     "dep",
	Aliases: []string{"dependency"},
	Short:   "Manage blocked-by dependencies",
	Long: `Manage blocked-by dependencies between tasks.

A task is blocked while any task it depends on is incomplete. Blocked tasks
cannot be completed.

Examples:
  # Task 12 waits on task 7
  tasktide dep add 12 7

  # Drop the link again
  tasktide dep remove 12 7`,
}

var depAddCmd = &cobra.Command{
	Use:   "add <task> <blocker>",
	Short: "Block a task by another task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeDependency(args, true)
	},
}

var depRemoveCmd = &cobra.Command{
	Use:     "remove <task> <blocker>",
	Aliases: []string{"rm"},
	Short:   "Remove a blocked-by dependency",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeDependency(args, false)
	},
}

func init() {
	rootCmd.AddCommand(depCmd)
	depCmd.AddCommand(depAddCmd, depRemoveCmd)
}

func changeDependency(args []string, add bool) error {
	taskID, err := parseID("task", args[0])
	if err != nil {
		return err
	}
	blockerID, err := parseID("blocker", args[1])
	if err != nil {
		return err
	}

	ctx := getContext()
	c, err := loadBoard(ctx)
	if err != nil {
		return err
	}

	if add {
		err = c.Coordinator.AddDependency(ctx, taskID, blockerID)
	} else {
		err = c.Coordinator.RemoveDependency(ctx, taskID, blockerID)
	}
	if err != nil {
		return fmt.Errorf("failed to update dependency: %w", err)
	}
	flushNotices(c)
	return nil
}
