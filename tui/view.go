package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tasktide/internal/application/dialog"
	"tasktide/internal/application/dto"
	"tasktide/internal/application/usecase/board"
	"tasktide/internal/markdown"
	"tasktide/tui/style"
)

const (
	minColumnWidth = 24
	cardHeight     = 5 // border, title, date line, border, gap
	chromeHeight   = 9 // header, help, status, column title and borders
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if len(m.board.Columns) == 0 {
		return "No columns"
	}

	header := m.renderHeader()
	help := m.renderHelp()
	status := m.renderStatus()

	if kind, ok := m.container.Dialogs.Active(); ok {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderDialog(kind), status, help)
	}

	visible, _ := m.layout()
	width := m.columnWidth(visible)
	end := m.horizontalScrollOffset + visible
	if end > len(m.board.Columns) {
		end = len(m.board.Columns)
	}

	var columns []string
	for i := m.horizontalScrollOffset; i < end; i++ {
		columns = append(columns, m.renderColumn(m.board.Columns[i], i, width))
	}
	boardView := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	if m.showDetails {
		if task := m.currentTask(); task != nil {
			boardView = lipgloss.JoinVertical(lipgloss.Left, boardView, m.renderDetails(*task))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, boardView, status, help)
}

// layout returns how many columns fit side by side and how many cards fit
// in a column.
func (m Model) layout() (int, int) {
	visible := m.width / (minColumnWidth + 4)
	if visible < 1 {
		visible = 1
	}
	if visible > len(m.board.Columns) {
		visible = len(m.board.Columns)
	}

	cards := (m.height - chromeHeight) / cardHeight
	if cards < 1 {
		cards = 1
	}
	return visible, cards
}

func (m Model) columnWidth(visible int) int {
	if visible < 1 {
		visible = 1
	}
	// 4 = border and horizontal padding of a column
	width := m.width/visible - 4
	if width < minColumnWidth {
		width = minColumnWidth
	}
	return width
}

func (m Model) renderHeader() string {
	name := "No project"
	if m.board.Project != nil {
		name = m.board.Project.Name
	}
	projects := len(m.container.Store.Projects())
	return style.ColumnTitleStyle.Render(fmt.Sprintf("TaskTide · %s", name)) +
		style.SubtleStyle.Render(fmt.Sprintf("  (%d projects)", projects))
}

// renderColumn renders a single column with scrolling support
func (m Model) renderColumn(col dto.ColumnDTO, colIndex int, width int) string {
	isFocused := colIndex == m.focusedColumn

	title := style.ColumnTitleStyle.Width(width).Render(fmt.Sprintf("%s (%d)", col.Title, len(col.Tasks)))

	offset := 0
	if colIndex < len(m.scrollOffsets) {
		offset = m.scrollOffsets[colIndex]
	}
	_, maxVisible := m.layout()
	end := offset + maxVisible
	if end > len(col.Tasks) {
		end = len(col.Tasks)
	}

	var cards []string
	if offset > 0 {
		cards = append(cards, style.SubtleStyle.Width(width).Align(lipgloss.Center).Render("▲ more above ▲"))
	}
	for i := offset; i < end; i++ {
		cards = append(cards, renderTaskCard(col.Tasks[i], width, isFocused && i == m.focusedTask))
	}
	if end < len(col.Tasks) {
		cards = append(cards, style.SubtleStyle.Width(width).Align(lipgloss.Center).Render("▼ more below ▼"))
	}
	if len(col.Tasks) == 0 {
		cards = append(cards, style.SubtleStyle.Width(width).Render("(empty)"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", strings.Join(cards, "\n"))

	height := m.height - chromeHeight + 2
	if isFocused {
		return style.FocusedColumnStyle.Height(height).Render(content)
	}
	return style.ColumnStyle.Height(height).Render(content)
}

func (m Model) renderDetails(task dto.TaskDTO) string {
	lines := []string{style.ColumnTitleStyle.Render(fmt.Sprintf("#%d %s", task.ID, task.Title))}
	if task.ProjectName != "" {
		lines = append(lines, "Project: "+task.ProjectName)
	}
	if task.DateLabel != "" {
		lines = append(lines, "Dates:   "+task.DateLabel)
	}
	if task.Blocked {
		lines = append(lines, style.ErrorNoticeStyle.Render(blockedNotice(task).Message))
	}
	if strings.TrimSpace(task.Description) != "" {
		lines = append(lines, markdown.Render(m.width-4, 0, task.Description))
	}
	return style.DialogStyle.Width(m.width - 4).Render(strings.Join(lines, "\n"))
}

func (m Model) renderDialog(kind dialog.Kind) string {
	var body string
	switch kind {
	case dialog.AddTask:
		column := "Unassigned"
		if m.focusedColumn < len(m.board.Columns) {
			column = m.board.Columns[m.focusedColumn].Title
		}
		body = fmt.Sprintf("New task in %s\n\n%s\n\nenter save · esc cancel", column, m.input.View())
	case dialog.EditTask:
		body = fmt.Sprintf("Rename task\n\n%s\n\nenter save · esc cancel", m.input.View())
	case dialog.DeleteTask:
		title := "this task"
		if id := m.container.Dialogs.Selected(kind); id != nil {
			if t, ok := m.container.Store.Task(*id); ok {
				title = fmt.Sprintf("%q", t.Title)
			}
		}
		body = fmt.Sprintf("Delete %s?\n\n%s confirm · %s cancel", title, keys.Confirm.Help().Key, keys.Cancel.Help().Key)
	default:
		body = string(kind)
	}
	return style.DialogStyle.Render(body)
}

func (m Model) renderStatus() string {
	if m.notice == nil {
		return ""
	}
	switch m.notice.Level {
	case board.NoticeError, board.NoticeWarning:
		return style.ErrorNoticeStyle.Render(m.notice.Message)
	default:
		return style.NoticeStyle.Render(m.notice.Message)
	}
}

// renderHelp renders the help text at the bottom
func (m Model) renderHelp() string {
	bindings := []struct {
		keys, help string
	}{
		{keys.Left.Help().Key + "," + keys.Right.Help().Key, "columns"},
		{keys.Up.Help().Key + "," + keys.Down.Help().Key, "tasks"},
		{keys.MoveLeft.Help().Key + "," + keys.MoveRight.Help().Key, "move"},
		{keys.Complete.Help().Key, "complete"},
		{keys.Add.Help().Key, "add"},
		{keys.Edit.Help().Key, "edit"},
		{keys.Delete.Help().Key, "delete"},
		{keys.NextProject.Help().Key, "project"},
		{keys.ToggleDetails.Help().Key, "details"},
		{keys.Quit.Help().Key, "quit"},
	}

	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = b.keys + " " + b.help
	}
	return style.HelpStyle.Render(markdown.Wrap(strings.Join(parts, "  •  "), m.width-2))
}
