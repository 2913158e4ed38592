package style

import (
	"github.com/charmbracelet/lipgloss"

	"tasktide/internal/domain/service"
	"tasktide/internal/infrastructure/config"
)

var (
	ColumnStyle        lipgloss.Style
	FocusedColumnStyle lipgloss.Style
	ColumnTitleStyle   lipgloss.Style
	CardStyle          lipgloss.Style
	SelectedCardStyle  lipgloss.Style
	BlockedCardStyle   lipgloss.Style
	HelpStyle          lipgloss.Style
	NoticeStyle        lipgloss.Style
	ErrorNoticeStyle   lipgloss.Style
	DialogStyle        lipgloss.Style
	SubtleStyle        lipgloss.Style

	urgencyColors map[service.Urgency]lipgloss.Color
	doneColor     lipgloss.Color
)

func init() {
	cfg, err := config.DefaultConfig()
	if err == nil {
		InitStyles(cfg)
	}
}

// InitStyles initializes the styles from config
func InitStyles(cfg *config.Config) {
	styles := cfg.TUI.Styles

	ColumnStyle = columnStyle(styles.Column)
	FocusedColumnStyle = columnStyle(styles.FocusedColumn)
	ColumnTitleStyle = textStyle(styles.ColumnTitle)

	card := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	CardStyle = card.BorderForeground(lipgloss.Color(styles.TaskCard.BorderColor))
	SelectedCardStyle = card.BorderForeground(lipgloss.Color(styles.SelectedCard.BorderColor)).Bold(true)
	BlockedCardStyle = card.BorderForeground(lipgloss.Color(styles.BlockedCard.BorderColor))

	HelpStyle = textStyle(styles.Help)
	NoticeStyle = textStyle(styles.Notice)
	ErrorNoticeStyle = textStyle(styles.ErrorNotice)

	DialogStyle = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color(styles.FocusedColumn.BorderColor)).
		Padding(1, 2)
	SubtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	urgencyColors = map[service.Urgency]lipgloss.Color{
		service.UrgencyOverdue: lipgloss.Color(styles.DueDateUrgency.Overdue),
		service.UrgencyDueSoon: lipgloss.Color(styles.DueDateUrgency.DueSoon),
		service.UrgencyNormal:  lipgloss.Color(styles.DueDateUrgency.Normal),
	}
	doneColor = lipgloss.Color(styles.DueDateUrgency.Done)
}

// DateStyle colors a card's date label by urgency. Completed tasks use the
// done color.
func DateStyle(urgency string, completed bool) lipgloss.Style {
	if completed {
		return lipgloss.NewStyle().Foreground(doneColor)
	}
	if c, ok := urgencyColors[service.Urgency(urgency)]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle().Foreground(urgencyColors[service.UrgencyNormal])
}

func columnStyle(c config.ColumnStyle) lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(c.PaddingVertical, c.PaddingHorizontal).
		Border(getBorder(c.BorderStyle)).
		BorderForeground(lipgloss.Color(c.BorderColor))
}

func textStyle(t config.TextStyle) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(t.PaddingVertical, t.PaddingHorizontal)
	if t.Foreground != "" {
		s = s.Foreground(lipgloss.Color(t.Foreground))
	}
	if t.Background != "" {
		s = s.Background(lipgloss.Color(t.Background))
	}
	if t.Bold {
		s = s.Bold(true)
	}
	if t.Italic {
		s = s.Italic(true)
	}
	if t.Align != "" {
		s = s.Align(getAlign(t.Align))
	}
	return s
}

// getBorder returns the border style based on the name
func getBorder(name string) lipgloss.Border {
	switch name {
	case "normal":
		return lipgloss.NormalBorder()
	case "thick":
		return lipgloss.ThickBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

// getAlign returns the alignment based on the name
func getAlign(name string) lipgloss.Position {
	switch name {
	case "left":
		return lipgloss.Left
	case "right":
		return lipgloss.Right
	default:
		return lipgloss.Center
	}
}
