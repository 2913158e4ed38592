package service

import (
	"testing"
	"time"
)

func TestDateText(t *testing.T) {
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)
	done := time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name                  string
		start, end, completed *time.Time
		want                  string
	}{
		{"completed wins", &start, &end, &done, "Done Feb 07"},
		{"no dates", nil, nil, nil, "No date"},
		{"start only", &start, nil, nil, "Starts on Jan 05"},
		{"due", &start, &end, nil, "Due by Feb 09"},
		{"end only", nil, &end, nil, "Due by Feb 09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DateText(tt.start, tt.end, tt.completed); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDateUrgency(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := DateUrgency(now.Add(-time.Minute), now); got != UrgencyOverdue {
		t.Errorf("Expected overdue, got %s", got)
	}
	if got := DateUrgency(now.Add(48*time.Hour), now); got != UrgencyDueSoon {
		t.Errorf("Expected due soon, got %s", got)
	}
	if got := DateUrgency(now.Add(96*time.Hour), now); got != UrgencyNormal {
		t.Errorf("Expected normal, got %s", got)
	}
}
