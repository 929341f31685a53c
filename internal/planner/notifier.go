package planner

import "sync"

// Notice sources.
const (
	SourceRoute      = "route"
	SourceBudget     = "budget"
	SourceDeleteStop = "delete-stop"
	SourceInput      = "input"
)

// Notice is a user-facing message about a failure that was recovered from.
type Notice struct {
	Source  string
	Kind    string
	Message string
	Points  []int
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// NopNotifier drops every notice.
type NopNotifier struct{}

func (NopNotifier) Notify(Notice) {}

// NoticeLog collects notices in memory.
type NoticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *NoticeLog) Notify(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

// Notices returns a copy of everything received so far.
func (l *NoticeLog) Notices() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notice, len(l.notices))
	copy(out, l.notices)
	return out
}
