package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tasktide/internal/application/dto"
	"tasktide/internal/application/usecase/board"
	taskuc "tasktide/internal/application/usecase/task"
	"tasktide/internal/domain/entity"
)

// NewServer creates a new MCP server exposing the board of the coordinator's user.
func NewServer(coordinator *board.Coordinator, version string) *server.MCPServer {
	s := server.NewMCPServer("TaskTide", version)

	kanban := coordinator.Store()
	boards := taskuc.NewGetBoardUseCase(kanban)
	tasks := taskuc.NewListTasksUseCase(kanban)

	s.AddTool(mcp.NewTool("list_board",
		mcp.WithDescription("List the board of a project partitioned into Unassigned and the workflow columns."),
		mcp.WithNumber("project_id", mcp.Description("Project id (defaults to the active project)")),
	), listBoardHandler(boards))

	s.AddTool(mcp.NewTool("blocked_by",
		mcp.WithDescription("List the incomplete tasks blocking a task."),
		mcp.WithNumber("task_id", mcp.Description("Task id"), mcp.Required()),
	), blockedByHandler(coordinator, tasks))

	s.AddTool(mcp.NewTool("move_task",
		mcp.WithDescription("Move a task to a column. Moving into Completed completes the task; blocked tasks cannot be completed."),
		mcp.WithNumber("task_id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("column", mcp.Description("Column id, column title or 'unassigned'"), mcp.Required()),
	), moveTaskHandler(coordinator, tasks))

	s.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Complete a task, or reopen it with completed=false."),
		mcp.WithNumber("task_id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithBoolean("completed", mcp.Description("Completion state (defaults to true)")),
	), completeTaskHandler(coordinator, tasks))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func listBoardHandler(boards *taskuc.GetBoardUseCase) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var projectID *int64
		if id := mcp.ParseInt64(request, "project_id", 0); id > 0 {
			projectID = entity.Int64Ptr(id)
		}

		view, err := boards.Execute(projectID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(view)
	}
}

func blockedByHandler(coordinator *board.Coordinator, tasks *taskuc.ListTasksUseCase) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID := mcp.ParseInt64(request, "task_id", 0)
		if _, err := tasks.Get(taskID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Task %d: %v", taskID, err)), nil
		}

		blockers := make([]dto.TaskDTO, 0)
		for _, b := range coordinator.Store().BlockedBy(taskID) {
			d, err := tasks.Get(b.ID)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			blockers = append(blockers, d)
		}
		return jsonResult(map[string]interface{}{"task_id": taskID, "blocked_by": blockers})
	}
}

func moveTaskHandler(coordinator *board.Coordinator, tasks *taskuc.ListTasksUseCase) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID := mcp.ParseInt64(request, "task_id", 0)
		column, err := entity.ResolveColumn(coordinator.Store().Columns(), mcp.ParseString(request, "column", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if column != nil && *column == entity.CompletedColumnID {
			if err := coordinator.CheckCompletable(taskID); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}
		if err := coordinator.MoveTask(ctx, taskID, column); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return taskResult(tasks, taskID)
	}
}

func completeTaskHandler(coordinator *board.Coordinator, tasks *taskuc.ListTasksUseCase) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID := mcp.ParseInt64(request, "task_id", 0)
		completed := mcp.ParseBoolean(request, "completed", true)

		if completed {
			if err := coordinator.CheckCompletable(taskID); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}
		if err := coordinator.ToggleComplete(ctx, taskID, completed); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return taskResult(tasks, taskID)
	}
}

func taskResult(tasks *taskuc.ListTasksUseCase, taskID int64) (*mcp.CallToolResult, error) {
	d, err := tasks.Get(taskID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
