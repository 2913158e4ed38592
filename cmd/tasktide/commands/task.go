package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tasktide/cmd/tasktide/output"
	"tasktide/internal/application/dto"
	"tasktide/internal/application/usecase/task"
	"tasktide/internal/di"
	"tasktide/internal/domain/entity"
	"tasktide/internal/markdown"
)

const dateLayout = "2006-01-02"

// taskCmd represents the task command
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long: `Manage tasks on the board - create, edit, move, complete, delete and query tasks.

Every task belongs to at most one project and sits in one of the workflow
columns or in Unassigned. A task blocked by incomplete tasks cannot be moved
into Completed until its blockers are done.

Examples:
  # List tasks of the selected project
  tasktide task list

  # List tasks in a specific column
  tasktide task list --column working

  # Create a new task due on a date
  tasktide task create --title "Fix login bug" --end 2025-12-31

  # Move a task
  tasktide task move 12 reviewing

  # Complete and reopen
  tasktide task complete 12
  tasktide task reopen 12`,
}

// taskListCmd lists tasks
var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks with optional filtering.

Output formats:
  text - Human-readable table (default)
  json - JSON output for scripting
  yaml - YAML output

Examples:
  # Tasks in To Do
  tasktide task list --column "To Do"

  # Tasks waiting for a column
  tasktide task list --unassigned

  # Blocked tasks across every project
  tasktide task list --blocked --all-projects -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadBoard(getContext())
		if err != nil {
			return err
		}

		filter := task.ListTasksFilter{}
		filter.AllProjects, _ = cmd.Flags().GetBool("all-projects")
		filter.Unassigned, _ = cmd.Flags().GetBool("unassigned")
		filter.BlockedOnly, _ = cmd.Flags().GetBool("blocked")
		if column, _ := cmd.Flags().GetString("column"); column != "" {
			id, err := entity.ResolveColumn(c.Store.Columns(), column)
			if err != nil {
				return err
			}
			if id == nil {
				filter.Unassigned = true
			} else {
				filter.ColumnID = id
			}
		}

		tasks, err := c.ListTasks.Execute(filter)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if formatter.Structured() {
			return formatter.Print(tasks)
		}
		if len(tasks) == 0 {
			printer.Info("No tasks found")
			return nil
		}
		printTaskTable(tasks, filter.AllProjects)
		return nil
	},
}

// taskShowCmd shows one task
var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show task details",
	Long: `Show the details of a task with its description rendered as markdown.

Examples:
  tasktide task show 12
  tasktide task show 12 -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}
		c, err := loadBoard(getContext())
		if err != nil {
			return err
		}

		t, err := c.ListTasks.Get(id)
		if err != nil {
			return fmt.Errorf("task %d: %w", id, err)
		}
		if formatter.Structured() {
			return formatter.Print(t)
		}

		printer.Header("#%d %s", t.ID, t.Title)
		printer.Println("Column:   %s", t.ColumnName)
		if t.ProjectName != "" {
			printer.Println("Project:  %s", t.ProjectName)
		}
		if t.DateLabel != "" {
			printer.Println("Dates:    %s", t.DateLabel)
		}
		if t.Blocked {
			printer.Warning("Blocked by %s", joinIDs(t.BlockedBy))
		}
		if strings.TrimSpace(t.Description) != "" {
			printer.Println("")
			printer.Println("%s", markdown.Render(output.TerminalWidth(80), 2, t.Description))
		}
		return nil
	},
}

// taskCreateCmd creates a task
var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new task",
	Long: `Create a new task in the selected project.

Without --column the task is created in Unassigned. Dates use YYYY-MM-DD.

Examples:
  tasktide task create --title "Write release notes"
  tasktide task create --title "Ship" --column todo --end 2025-06-30
  tasktide task create --title "Inbox item" --project none`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := getContext()
		c, err := loadBoard(ctx)
		if err != nil {
			return err
		}

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		req := dto.CreateTaskRequest{
			Title:       title,
			Description: description,
			ProjectID:   c.Store.ActiveProjectID(),
		}
		if column, _ := cmd.Flags().GetString("column"); column != "" {
			if req.ColumnID, err = entity.ResolveColumn(c.Store.Columns(), column); err != nil {
				return err
			}
		}
		if req.StartDate, err = dateFlag(cmd, "start"); err != nil {
			return err
		}
		if req.EndDate, err = dateFlag(cmd, "end"); err != nil {
			return err
		}

		saved, err := c.Coordinator.AddTask(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return printTask(c, saved)
	},
}

// taskEditCmd edits a task
var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task",
	Long: `Edit the title, description, dates or project of a task.

Only the flags given are changed.

Examples:
  tasktide task edit 12 --title "Fix login bug on mobile"
  tasktide task edit 12 --end 2025-07-01
  tasktide task edit 12 --clear-dates
  tasktide task edit 12 --move-to-project none`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}
		ctx := getContext()
		c, err := loadBoard(ctx)
		if err != nil {
			return err
		}

		req := dto.UpdateTaskRequest{}
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			req.Title = &title
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			req.Description = &description
		}
		req.ClearDates, _ = cmd.Flags().GetBool("clear-dates")
		if req.StartDate, err = dateFlag(cmd, "start"); err != nil {
			return err
		}
		if req.EndDate, err = dateFlag(cmd, "end"); err != nil {
			return err
		}
		if ref, _ := cmd.Flags().GetString("move-to-project"); ref != "" {
			projectID, err := resolveProject(c, ref)
			if err != nil {
				return err
			}
			if projectID == nil {
				return errors.New("tasks cannot leave a project once assigned; delete and recreate the task instead")
			}
			req.ProjectID = projectID
		}

		saved, err := c.Coordinator.EditTask(ctx, id, req)
		if err != nil {
			return fmt.Errorf("failed to edit task: %w", err)
		}
		return printTask(c, saved)
	},
}

// taskMoveCmd moves a task between columns
var taskMoveCmd = &cobra.Command{
	Use:   "move <id> <column>",
	Short: "Move a task to a column",
	Long: `Move a task to a column given by id, title or 'unassigned'.

Moving into Completed completes the task and is refused while the task is
blocked, unless --force is given.

Examples:
  tasktide task move 12 working
  tasktide task move 12 4
  tasktide task move 12 unassigned`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}
		ctx := getContext()
		c, err := loadBoard(ctx)
		if err != nil {
			return err
		}

		column, err := entity.ResolveColumn(c.Store.Columns(), args[1])
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		if column != nil && *column == entity.CompletedColumnID && !force {
			if err := c.Coordinator.CheckCompletable(id); err != nil {
				return err
			}
		}

		if err := c.Coordinator.MoveTask(ctx, id, column); err != nil {
			return fmt.Errorf("failed to move task: %w", err)
		}
		return printStoredTask(c, id)
	},
}

// taskCompleteCmd completes a task
var taskCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Complete a task",
	Long: `Complete a task by moving it to Completed.

Blocked tasks are refused unless --force is given.

Examples:
  tasktide task complete 12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setCompleted(cmd, args[0], true)
	},
}

// taskReopenCmd reopens a completed task
var taskReopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Reopen a completed task",
	Long: `Reopen a completed task. It returns to To Do.

Examples:
  tasktide task reopen 12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setCompleted(cmd, args[0], false)
	},
}

// taskDeleteCmd deletes a task
var taskDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task. Tasks it was blocking are no longer blocked by it.

Examples:
  tasktide task delete 12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}
		ctx := getContext()
		c, err := loadBoard(ctx)
		if err != nil {
			return err
		}
		if _, ok := c.Store.Task(id); !ok {
			return fmt.Errorf("%w: %d", entity.ErrTaskNotFound, id)
		}

		if err := c.Coordinator.RemoveTask(ctx, id); err != nil {
			return err
		}
		flushNotices(c)
		return nil
	},
}

// taskBlockedCmd lists the blockers of a task
var taskBlockedCmd = &cobra.Command{
	Use:   "blocked <id>",
	Short: "List the incomplete tasks blocking a task",
	Long: `List the incomplete tasks a task is waiting on.

Examples:
  tasktide task blocked 12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}
		c, err := loadBoard(getContext())
		if err != nil {
			return err
		}
		if _, ok := c.Store.Task(id); !ok {
			return fmt.Errorf("%w: %d", entity.ErrTaskNotFound, id)
		}

		blockers := make([]dto.TaskDTO, 0)
		for _, b := range c.Store.BlockedBy(id) {
			d, err := c.ListTasks.Get(b.ID)
			if err != nil {
				return err
			}
			blockers = append(blockers, d)
		}

		if formatter.Structured() {
			return formatter.Print(blockers)
		}
		if len(blockers) == 0 {
			printer.Info("Task %d is not blocked", id)
			return nil
		}
		printTaskTable(blockers, true)
		return nil
	},
}

// taskBlocksCmd lists the tasks waiting on a task
var taskBlocksCmd = &cobra.Command{
	Use:   "blocks <id>",
	Short: "List the tasks a task is blocking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("task", args[0])
		if err != nil {
			return err
		}
		c, err := loadBoard(getContext())
		if err != nil {
			return err
		}
		if _, ok := c.Store.Task(id); !ok {
			return fmt.Errorf("%w: %d", entity.ErrTaskNotFound, id)
		}

		waiting := make([]dto.TaskDTO, 0)
		for _, d := range c.Store.Dependents(id) {
			t, err := c.ListTasks.Get(d.ID)
			if err != nil {
				return err
			}
			waiting = append(waiting, t)
		}

		if formatter.Structured() {
			return formatter.Print(waiting)
		}
		if len(waiting) == 0 {
			printer.Info("No task waits on task %d", id)
			return nil
		}
		printTaskTable(waiting, true)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskListCmd, taskShowCmd, taskCreateCmd, taskEditCmd, taskBlocksCmd,
		taskMoveCmd, taskCompleteCmd, taskReopenCmd, taskDeleteCmd, taskBlockedCmd)

	taskListCmd.Flags().String("column", "", "Filter by column id or title")
	taskListCmd.Flags().Bool("unassigned", false, "Only tasks without a column")
	taskListCmd.Flags().Bool("blocked", false, "Only blocked tasks")
	taskListCmd.Flags().Bool("all-projects", false, "List tasks of every project")

	taskCreateCmd.Flags().StringP("title", "t", "", "Task title (required)")
	taskCreateCmd.Flags().StringP("description", "d", "", "Task description (markdown)")
	taskCreateCmd.Flags().String("column", "", "Column id or title")
	taskCreateCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	taskCreateCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	_ = taskCreateCmd.MarkFlagRequired("title")

	taskEditCmd.Flags().StringP("title", "t", "", "New title")
	taskEditCmd.Flags().StringP("description", "d", "", "New description (markdown)")
	taskEditCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	taskEditCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	taskEditCmd.Flags().Bool("clear-dates", false, "Remove start and end dates")
	taskEditCmd.Flags().String("move-to-project", "", "Project id or name")

	taskMoveCmd.Flags().Bool("force", false, "Complete even if the task is blocked")
	taskCompleteCmd.Flags().Bool("force", false, "Complete even if the task is blocked")
}

func setCompleted(cmd *cobra.Command, arg string, completed bool) error {
	id, err := parseID("task", arg)
	if err != nil {
		return err
	}
	ctx := getContext()
	c, err := loadBoard(ctx)
	if err != nil {
		return err
	}

	if completed {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			if err := c.Coordinator.CheckCompletable(id); err != nil {
				return err
			}
		}
	}
	if err := c.Coordinator.ToggleComplete(ctx, id, completed); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return printStoredTask(c, id)
}

// dateFlag parses an optional YYYY-MM-DD flag in local time
func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s date %q, use YYYY-MM-DD", name, value)
	}
	return &t, nil
}

// printTask prints a task returned by the data service
func printTask(c *di.Container, t entity.Task) error {
	d := dto.TaskToDTO(t, c.Store.Columns(), c.Store.Projects(), c.Store.BlockedBy(t.ID), time.Now())
	if formatter.Structured() {
		return formatter.Print(d)
	}
	flushNotices(c)
	printTaskTable([]dto.TaskDTO{d}, false)
	return nil
}

// printStoredTask prints a task as the board currently holds it
func printStoredTask(c *di.Container, id int64) error {
	d, err := c.ListTasks.Get(id)
	if err != nil {
		return err
	}
	if formatter.Structured() {
		return formatter.Print(d)
	}
	flushNotices(c)
	printTaskTable([]dto.TaskDTO{d}, false)
	return nil
}

func printTaskTable(tasks []dto.TaskDTO, withProject bool) {
	headers := []string{"ID", "TITLE", "COLUMN", "DATES", "BLOCKED BY"}
	if withProject {
		headers = append(headers, "PROJECT")
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		title := t.Title
		if t.Completed {
			title += " ✓"
		}
		row := []string{
			strconv.FormatInt(t.ID, 10),
			markdown.Truncate(title, 48),
			t.ColumnName,
			t.DateLabel,
			joinIDs(t.BlockedBy),
		}
		if withProject {
			row = append(row, t.ProjectName)
		}
		rows = append(rows, row)
	}
	printer.Table(headers, rows)
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
