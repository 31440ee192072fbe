package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"royal-terminal/internal/exchange"
	"royal-terminal/internal/logging"
)

// ToastLifetime is how long success and failure toasts stay on screen
const ToastLifetime = 3 * time.Second

type toast struct {
	id   string
	kind exchange.NotificationKind
	text string
}

// ToastModel stacks transient notifications in the top-right corner. Pending
// toasts stay until dismissed by id; the others expire on their own.
type ToastModel struct {
	toasts  []toast
	spinner spinner.Model
	seq     int
}

// NotificationReceived carries one notification from the exchange goroutine
type NotificationReceived struct {
	Notification exchange.Notification
}

type toastExpired struct {
	id string
}

func NewToastModel() ToastModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return ToastModel{spinner: sp}
}

func (m ToastModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m ToastModel) Len() int {
	return len(m.toasts)
}

// Texts returns the visible toast texts, oldest first
func (m ToastModel) Texts() []string {
	texts := make([]string, len(m.toasts))
	for i, t := range m.toasts {
		texts[i] = t.text
	}
	return texts
}

func (m ToastModel) Update(msg tea.Msg) (ToastModel, tea.Cmd) {
	switch msg := msg.(type) {
	case NotificationReceived:
		return m.push(msg.Notification)

	case toastExpired:
		m.remove(msg.id)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ToastModel) push(n exchange.Notification) (ToastModel, tea.Cmd) {
	if n.Kind == exchange.NotifyDismiss {
		m.remove(n.ID)
		return m, nil
	}

	id := n.ID
	if id == "" {
		m.seq++
		id = fmt.Sprintf("toast-%d", m.seq)
	}
	m.remove(id)
	m.toasts = append(m.toasts, toast{id: id, kind: n.Kind, text: n.Text})
	logging.Debug("Toast %s (%s): %s", id, n.Kind, n.Text)

	if n.Kind == exchange.NotifyPending {
		return m, nil
	}
	return m, tea.Tick(ToastLifetime, func(time.Time) tea.Msg {
		return toastExpired{id: id}
	})
}

func (m *ToastModel) remove(id string) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
			return
		}
	}
}

func (m ToastModel) View() string {
	if len(m.toasts) == 0 {
		return ""
	}

	var rendered []string
	for _, t := range m.toasts {
		switch t.kind {
		case exchange.NotifyPending:
			rendered = append(rendered, ToastPendingStyle.Render(m.spinner.View()+" "+t.text))
		case exchange.NotifySuccess:
			rendered = append(rendered, ToastSuccessStyle.Render("✓ "+t.text))
		default:
			rendered = append(rendered, ToastFailureStyle.Render("✗ "+t.text))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

// NewNotifier returns a notifier for the orchestrator and the channel the UI
// drains with WaitForNotification. Sends never block the exchange goroutine.
func NewNotifier(buffer int) (exchange.Notifier, <-chan exchange.Notification) {
	ch := make(chan exchange.Notification, buffer)
	return exchange.NotifierFunc(func(n exchange.Notification) {
		select {
		case ch <- n:
		default:
			logging.Error("Notification dropped, queue full: %s %s", n.Kind, n.Text)
		}
	}), ch
}

// WaitForNotification waits for the next notification
func WaitForNotification(ch <-chan exchange.Notification) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return NotificationReceived{Notification: n}
	}
}
