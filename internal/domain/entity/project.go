package entity

import (
	"regexp"
	"strings"
)

var (
	hexColorRE = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	hslColorRE = regexp.MustCompile(`^hsl\(.+\)$`)
)

// Project groups tasks. Only tasks of the active project are shown on the board.
type Project struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	UserID string `json:"userId"`
}

// Validate checks user supplied fields
func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyProjectName
	}
	if !IsValidColor(p.Color) {
		return ErrInvalidColor
	}
	return nil
}

// IsValidColor accepts hex colors and HSL references such as hsl(var(--chart-1)).
func IsValidColor(color string) bool {
	color = strings.TrimSpace(color)
	return hexColorRE.MatchString(color) || hslColorRE.MatchString(color)
}
