package main

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"royal-terminal/internal/catalog"
	"royal-terminal/internal/conversation"
	"royal-terminal/internal/exchange"
	"royal-terminal/internal/logging"
	"royal-terminal/internal/ui"
)

// narrowWidth is the terminal width below which the sidebar takes the whole
// screen and closes after a conversation is created or opened.
const narrowWidth = 100

type appModel struct {
	store         *conversation.Store
	notifications <-chan exchange.Notification

	sidebar ui.SidebarModel
	chat    ui.ChatViewModel
	toasts  ui.ToastModel

	sidebarOpen bool
	sized       bool
	version     uint64

	width  int
	height int
}

type appDeps struct {
	store         *conversation.Store
	orchestrator  *exchange.Orchestrator
	catalog       *catalog.Catalog
	notifications <-chan exchange.Notification
	imagesDir     string
}

func newAppModel(ctx context.Context, deps appDeps, width, height int) appModel {
	m := appModel{
		store:         deps.store,
		notifications: deps.notifications,
		sidebar:       ui.NewSidebarModel(ui.SidebarWidth, height),
		chat:          ui.NewChatViewModel(ctx, deps.store, deps.orchestrator, deps.catalog, deps.imagesDir, width, height),
		toasts:        ui.NewToastModel(),
		sidebarOpen:   width >= narrowWidth,
		width:         width,
		height:        height,
	}
	m.syncStore()
	m.layout()
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(
		m.chat.Init(),
		m.toasts.Init(),
		ui.WaitForNotification(m.notifications),
	)
}

func (m appModel) narrow() bool {
	return m.width < narrowWidth
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m, cmd = m.update(msg)
	m.syncStore()
	return m, cmd
}

func (m appModel) update(msg tea.Msg) (appModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.sized {
			m.sized = true
			m.sidebarOpen = !m.narrow()
		}
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.chat.PickerVisible() {
			return m.updateChat(msg)
		}

		switch msg.String() {
		case "ctrl+n":
			return m.createConversation()

		case "tab":
			if m.sidebar.Focused() {
				return m.focusChat()
			}
			m.sidebarOpen = true
			m.sidebar.Focus()
			m.chat.Blur()
			m.layout()
			return m, nil
		}

		if m.sidebar.Focused() {
			var cmd tea.Cmd
			m.sidebar, cmd = m.sidebar.Update(msg)
			return m, cmd
		}
		return m.updateChat(msg)

	case ui.CreateConversation:
		return m.createConversation()

	case ui.ConversationSelected:
		m.store.Select(msg.ID)
		return m.focusChat()

	case ui.DeleteConversation:
		m.store.Delete(msg.ID)
		logging.Info("Conversation %s deleted", msg.ID)
		return m, nil

	case ui.SidebarClosed:
		return m.focusChat()

	case ui.NotificationReceived:
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.Update(msg)
		return m, tea.Batch(cmd, ui.WaitForNotification(m.notifications))

	case spinner.TickMsg:
		var toastCmd, chatCmd tea.Cmd
		m.toasts, toastCmd = m.toasts.Update(msg)
		m.chat, chatCmd = m.chat.Update(msg)
		return m, tea.Batch(toastCmd, chatCmd)
	}

	// Toast expiry and anything else the children understand
	var toastCmd tea.Cmd
	m.toasts, toastCmd = m.toasts.Update(msg)
	m, chatCmd := m.updateChat(msg)
	return m, tea.Batch(toastCmd, chatCmd)
}

func (m appModel) updateChat(msg tea.Msg) (appModel, tea.Cmd) {
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

func (m appModel) createConversation() (appModel, tea.Cmd) {
	conv := m.store.Create()
	logging.Info("Conversation %s created", conv.ID)
	return m.focusChat()
}

// focusChat returns focus to the composer; narrow terminals also close the
// sidebar.
func (m appModel) focusChat() (appModel, tea.Cmd) {
	m.sidebar.Blur()
	if m.narrow() {
		m.sidebarOpen = false
	}
	m.layout()
	return m, m.chat.Focus()
}

// syncStore refreshes the sidebar and transcript when the store changed
// since the last message.
func (m *appModel) syncStore() {
	v := m.store.Version()
	if v == m.version {
		return
	}
	m.version = v
	m.sidebar.SetConversations(m.store.Snapshot())
	m.chat.Refresh()
}

func (m *appModel) layout() {
	switch {
	case !m.sidebarOpen:
		m.chat.SetSize(m.width, m.height)
	case m.narrow():
		m.sidebar.SetSize(m.width, m.height)
	default:
		m.sidebar.SetSize(ui.SidebarWidth, m.height)
		m.chat.SetSize(m.width-ui.SidebarWidth, m.height)
	}
}

func (m appModel) View() string {
	var base string
	switch {
	case !m.sidebarOpen:
		base = m.chat.View()
	case m.narrow():
		base = m.sidebar.View()
	default:
		base = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), m.chat.View())
	}

	if m.toasts.Len() == 0 {
		return base
	}
	return overlay.New(
		ui.StaticView(m.toasts.View()),
		ui.StaticView(base),
		overlay.Right,
		overlay.Top,
		0,
		0,
	).View()
}
