package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tasktide/internal/application/dto"
)

// projectCmd represents the project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long: `Manage projects - each project has its own board.

The selected project is saved in the config file and used by every other
command unless --project is given.

Examples:
  tasktide project list
  tasktide project create "Web Site" --color "#336699"
  tasktide project select "Web Site"
  tasktide project select none    # clear the saved selection`,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadBoard(getContext())
		if err != nil {
			return err
		}

		tasks := c.Store.Tasks()
		active := c.Store.ActiveProjectID()
		projects := make([]dto.ProjectDTO, 0)
		for _, p := range c.Store.Projects() {
			projects = append(projects, dto.ProjectToDTO(p, tasks, active))
		}

		if formatter.Structured() {
			return formatter.Print(projects)
		}
		if len(projects) == 0 {
			printer.Info("No projects yet. Create one with: tasktide project create <name>")
			return nil
		}

		rows := make([][]string, 0, len(projects))
		for _, p := range projects {
			marker := ""
			if p.Active {
				marker = "*"
			}
			rows = append(rows, []string{marker, strconv.FormatInt(p.ID, 10), p.Name, p.Color, strconv.Itoa(p.TaskCount)})
		}
		printer.Table([]string{"", "ID", "NAME", "COLOR", "TASKS"}, rows)
		return nil
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := getContext()
		c, err := loadBoard(ctx)
		if err != nil {
			return err
		}

		color, _ := cmd.Flags().GetString("color")
		project, err := c.Coordinator.AddProject(ctx, args[0], color)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		if selectNew, _ := cmd.Flags().GetBool("select"); selectNew {
			if err := saveSelection(project.ID); err != nil {
				return err
			}
		}

		if formatter.Structured() {
			return formatter.Print(dto.ProjectToDTO(project, nil, &project.ID))
		}
		flushNotices(c)
		printer.Println("%d", project.ID)
		return nil
	},
}

var projectEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Rename or recolor a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := getContext()
		c, err := loadBoard(ctx)
		if err != nil {
			return err
		}
		projectID, err := resolveProject(c, args[0])
		if err != nil {
			return err
		}
		if projectID == nil {
			return fmt.Errorf("a project is required")
		}

		name, _ := cmd.Flags().GetString("name")
		color, _ := cmd.Flags().GetString("color")
		project, err := c.Coordinator.EditProject(ctx, *projectID, name, color)
		if err != nil {
			return fmt.Errorf("failed to edit project: %w", err)
		}

		if formatter.Structured() {
			return formatter.Print(dto.ProjectToDTO(project, c.Store.Tasks(), c.Store.ActiveProjectID()))
		}
		flushNotices(c)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a project; its tasks are kept without a project",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := getContext()
		c, err := loadBoard(ctx)
		if err != nil {
			return err
		}
		projectID, err := resolveProject(c, args[0])
		if err != nil {
			return err
		}
		if projectID == nil {
			return fmt.Errorf("a project is required")
		}

		if err := c.Coordinator.RemoveProject(ctx, *projectID); err != nil {
			return err
		}
		if cfg.Board.ActiveProject == *projectID {
			if err := saveSelection(0); err != nil {
				return err
			}
		}
		flushNotices(c)
		return nil
	},
}

var projectSelectCmd = &cobra.Command{
	Use:   "select <id|name|none>",
	Short: "Select the project other commands operate on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadBoard(getContext())
		if err != nil {
			return err
		}
		projectID, err := resolveProject(c, args[0])
		if err != nil {
			return err
		}

		var id int64
		if projectID != nil {
			id = *projectID
		}
		if err := saveSelection(id); err != nil {
			return err
		}

		if projectID == nil {
			printer.Success("Project selection cleared")
			return nil
		}
		project, _ := c.Store.Project(id)
		printer.Success("Selected project %q", project.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd, projectCreateCmd, projectEditCmd, projectDeleteCmd, projectSelectCmd)

	projectCreateCmd.Flags().String("color", "#64748b", "Project color: hex or hsl(...)")
	projectCreateCmd.Flags().Bool("select", false, "Select the new project")
	projectEditCmd.Flags().String("name", "", "New name")
	projectEditCmd.Flags().String("color", "", "New color")
}

// saveSelection persists the selected project (0 clears it)
func saveSelection(projectID int64) error {
	cfg.Board.ActiveProject = projectID
	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}
