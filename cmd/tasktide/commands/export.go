package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasktide/internal/infrastructure/export"
)

// exportCmd writes the board as markdown files
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every project and task as markdown files",
	Long: `Export the board as a tree of markdown files with YAML frontmatter:

  <dir>/<id>-<project>/project.md
  <dir>/<id>-<project>/<id>-<task>.md
  <dir>/inbox/<id>-<task>.md

Running the export again updates the tree and removes files of deleted tasks.

Examples:
  tasktide export --dir ~/notes/board`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")

		c, err := loadBoard(getContext())
		if err != nil {
			return err
		}

		result, err := export.New(dir, c.Store.Columns(), logger).Export(c.Store.Snapshot())
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if formatter.Structured() {
			return formatter.Print(result)
		}
		printer.Success("Exported %d projects and %d tasks to %s", result.Projects, result.Tasks, dir)
		if result.Removed > 0 {
			printer.Info("Removed %d stale files", result.Removed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("dir", "tasktide-export", "Export directory")
}
