package service

import (
	"fmt"
	"time"
)

// Urgency classifies a date relative to now for card highlighting.
type Urgency string

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyDueSoon Urgency = "due_soon"
	UrgencyNormal  Urgency = "normal"
)

// DueSoonWindow is how far ahead a date counts as due soon.
const DueSoonWindow = 3 * 24 * time.Hour

const cardDateLayout = "Jan 02"

// DateUrgency classifies date against now
func DateUrgency(date, now time.Time) Urgency {
	if date.Before(now) {
		return UrgencyOverdue
	}
	if date.Before(now.Add(DueSoonWindow)) {
		return UrgencyDueSoon
	}
	return UrgencyNormal
}

// DateText renders the short date label shown on a task card.
func DateText(start, end, completedDate *time.Time) string {
	switch {
	case completedDate != nil:
		return fmt.Sprintf("Done %s", completedDate.Format(cardDateLayout))
	case start == nil && end == nil:
		return "No date"
	case end == nil:
		return fmt.Sprintf("Starts on %s", start.Format(cardDateLayout))
	default:
		return fmt.Sprintf("Due by %s", end.Format(cardDateLayout))
	}
}
