package board

import (
	"log/slog"
	"sync"
)

// NoticeLevel classifies a user-visible notice
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is a short message surfaced to the user after a mutation.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notifier receives notices produced by the coordinator.
type Notifier interface {
	Notify(notice Notice)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notice)

// Notify calls f(notice)
func (f NotifierFunc) Notify(notice Notice) {
	f(notice)
}

// LogNotifier writes notices to a structured logger
type LogNotifier struct {
	Log *slog.Logger
}

// Notify logs the notice at a level matching its severity
func (n LogNotifier) Notify(notice Notice) {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	switch notice.Level {
	case NoticeError:
		log.Error(notice.Message)
	case NoticeWarning:
		log.Warn(notice.Message)
	default:
		log.Info(notice.Message)
	}
}

// NoticeRecorder keeps every notice in memory. The TUI drains it between
// frames; tests inspect it directly.
type NoticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records the notice
func (r *NoticeRecorder) Notify(notice Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

// Drain returns and clears the recorded notices
func (r *NoticeRecorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}

// Last returns the most recent notice
func (r *NoticeRecorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
