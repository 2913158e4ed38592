package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"tasktide/internal/application/dto"
	"tasktide/internal/markdown"
)

// boardCmd shows the partitioned board
var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the board of the selected project",
	Long: `Show the board of the selected project, column by column.

Unassigned tasks are listed first, followed by To Do, Working, Reviewing and
Completed. Blocked tasks are marked with the tasks they wait on.

Examples:
  tasktide board
  tasktide board --project "Web Site"
  tasktide board -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadBoard(getContext())
		if err != nil {
			return err
		}

		view, err := c.GetBoard.Execute(c.Store.ActiveProjectID())
		if err != nil {
			return err
		}
		if formatter.Structured() {
			return formatter.Print(view)
		}

		if view.Project != nil {
			printer.Header("%s", view.Project.Name)
		} else {
			printer.Header("No project")
		}
		for _, column := range view.Columns {
			printColumn(column)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
}

func printColumn(column dto.ColumnDTO) {
	printer.Println("")
	printer.Println("%s (%d)", column.Title, len(column.Tasks))
	if len(column.Tasks) == 0 {
		printer.Subtle("  -")
		return
	}
	for _, t := range column.Tasks {
		line := "  #" + strconv.FormatInt(t.ID, 10) + " " + markdown.Truncate(t.Title, 60)
		if t.DateLabel != "" {
			line += "  [" + t.DateLabel + "]"
		}
		if t.Blocked {
			line += "  blocked by " + joinIDs(t.BlockedBy)
		}
		printer.Println("%s", line)
	}
}
