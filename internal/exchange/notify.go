package exchange

import "sync"

type NotificationKind int

const (
	NotifyPending NotificationKind = iota
	NotifySuccess
	NotifyFailure
	// NotifyDismiss removes the notification with the same ID
	NotifyDismiss
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyPending:
		return "pending"
	case NotifySuccess:
		return "success"
	case NotifyFailure:
		return "failure"
	case NotifyDismiss:
		return "dismiss"
	}
	return "unknown"
}

type Notification struct {
	Kind NotificationKind
	ID   string
	Text string
}

type Notifier interface {
	Notify(Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Recorder) Count(kind NotificationKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.items {
		if item.Kind == kind {
			n++
		}
	}
	return n
}
