package tui

import (
	"fmt"
	"strings"

	"tasktide/internal/application/dto"
	"tasktide/internal/markdown"
	"tasktide/tui/style"
)

// renderTaskCard renders one task. Blocked cards get the blocked border and
// list the tasks they wait on.
func renderTaskCard(task dto.TaskDTO, width int, selected bool) string {
	inner := width - 4 // border and padding
	if inner < 8 {
		inner = 8
	}

	title := task.Title
	if task.Completed {
		title = "✓ " + title
	}
	lines := []string{markdown.Truncate(title, inner)}

	var meta []string
	if task.DateLabel != "" {
		meta = append(meta, style.DateStyle(task.Urgency, task.Completed).Render(task.DateLabel))
	}
	if task.Blocked {
		ids := make([]string, len(task.BlockedBy))
		for i, id := range task.BlockedBy {
			ids[i] = fmt.Sprintf("#%d", id)
		}
		meta = append(meta, style.ErrorNoticeStyle.Render("⛔ "+strings.Join(ids, " ")))
	}
	if len(meta) > 0 {
		lines = append(lines, strings.Join(meta, " "))
	} else {
		lines = append(lines, "")
	}

	card := style.CardStyle
	switch {
	case selected:
		card = style.SelectedCardStyle
	case task.Blocked:
		card = style.BlockedCardStyle
	}
	return card.Width(width - 2).Render(strings.Join(lines, "\n"))
}
