package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// CompletedColumnID is the reserved id of the terminal "Completed" column.
const CompletedColumnID int64 = 4

// TodoColumnID is the first workflow column.
const TodoColumnID int64 = 1

// Column is a fixed stage of the board workflow. Columns are static and
// not persisted per user.
type Column struct {
	ID    int64  `json:"id" yaml:"id" toml:"id"`
	Title string `json:"title" yaml:"title" toml:"title"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon"`
}

// IsTerminal reports whether the column mirrors task completion.
func (c Column) IsTerminal() bool {
	return c.ID == CompletedColumnID
}

// DefaultColumns returns the board workflow in display order.
func DefaultColumns() []Column {
	return []Column{
		{ID: 1, Title: "To Do", Icon: "list"},
		{ID: 2, Title: "Working", Icon: "hammer"},
		{ID: 3, Title: "Reviewing", Icon: "search"},
		{ID: CompletedColumnID, Title: "Completed", Icon: "check-circle"},
	}
}

// FindColumn looks a column up by id
func FindColumn(columns []Column, id int64) (Column, bool) {
	for _, c := range columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

// FindColumnByTitle looks a column up by case-insensitive title
func FindColumnByTitle(columns []Column, title string) (Column, bool) {
	for _, c := range columns {
		if strings.EqualFold(c.Title, strings.TrimSpace(title)) {
			return c, true
		}
	}
	return Column{}, false
}

// UnassignedColumnRef names the missing column in user input
const UnassignedColumnRef = "unassigned"

// ResolveColumn turns a column reference (id, title, or "unassigned") into
// a column id. Unassigned resolves to nil.
func ResolveColumn(columns []Column, ref string) (*int64, error) {
	ref = strings.TrimSpace(ref)
	if strings.EqualFold(ref, UnassignedColumnRef) {
		return nil, nil
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if _, ok := FindColumn(columns, id); ok {
			return Int64Ptr(id), nil
		}
		return nil, fmt.Errorf("%w: %d", ErrColumnNotFound, id)
	}
	if c, ok := FindColumnByTitle(columns, ref); ok {
		return Int64Ptr(c.ID), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, ref)
}
