package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"royal-terminal/internal/models"
)

// SidebarWidth is the panel width on wide terminals
const SidebarWidth = 34

type SidebarModel struct {
	list     list.Model
	activeID string
	width    int
	height   int
	focused  bool
}

type conversationItem struct {
	conv   models.Conversation
	active bool
}

func (i conversationItem) Title() string {
	if i.active {
		return "● " + i.conv.Title
	}
	return i.conv.Title
}

func (i conversationItem) Description() string {
	count := len(i.conv.Messages)
	noun := "messages"
	if count == 1 {
		noun = "message"
	}
	return fmt.Sprintf("%s | %d %s", i.conv.Timestamp.Format("2006-01-02 15:04"), count, noun)
}

func (i conversationItem) FilterValue() string { return i.conv.Title }

type ConversationSelected struct {
	ID string
}

type CreateConversation struct{}

type DeleteConversation struct {
	ID string
}

// SidebarClosed is sent when the sidebar gives focus back to the composer
type SidebarClosed struct{}

func NewSidebarModel(width, height int) SidebarModel {
	l := list.New(nil, CreateThemedDelegate(), max(width-4, 1), max(height-6, 1))
	l.Title = "Conversations"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	ConfigureListStyles(&l)

	// Disable all built-in key bindings except arrows and filter
	l.KeyMap.CursorUp = key.NewBinding(key.WithKeys("up"))
	l.KeyMap.CursorDown = key.NewBinding(key.WithKeys("down"))
	l.KeyMap.NextPage = key.NewBinding()
	l.KeyMap.PrevPage = key.NewBinding()
	l.KeyMap.GoToStart = key.NewBinding()
	l.KeyMap.GoToEnd = key.NewBinding()
	l.KeyMap.Filter = key.NewBinding(key.WithKeys("/"))
	l.KeyMap.ClearFilter = key.NewBinding(key.WithKeys("esc"))
	l.KeyMap.CancelWhileFiltering = key.NewBinding(key.WithKeys("esc"))
	l.KeyMap.AcceptWhileFiltering = key.NewBinding(key.WithKeys("enter"))
	l.KeyMap.ShowFullHelp = key.NewBinding()
	l.KeyMap.CloseFullHelp = key.NewBinding()
	l.KeyMap.Quit = key.NewBinding()
	l.KeyMap.ForceQuit = key.NewBinding()

	return SidebarModel{
		list:   l,
		width:  width,
		height: height,
	}
}

func (m SidebarModel) Init() tea.Cmd {
	return nil
}

// SetConversations replaces the listed conversations, keeping the cursor on
// the active one.
func (m *SidebarModel) SetConversations(conversations []models.Conversation, activeID string) {
	m.activeID = activeID
	items := make([]list.Item, len(conversations))
	cursor := 0
	for i, c := range conversations {
		items[i] = conversationItem{conv: c, active: c.ID == activeID}
		if c.ID == activeID {
			cursor = i
		}
	}
	m.list.SetItems(items)
	m.list.Select(cursor)
}

func (m *SidebarModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(max(width-4, 1), max(height-6, 1))
}

func (m *SidebarModel) Focus() { m.focused = true }
func (m *SidebarModel) Blur()  { m.focused = false }

func (m SidebarModel) Focused() bool {
	return m.focused
}

// SelectedID returns the id under the cursor, or "" for an empty list
func (m SidebarModel) SelectedID() string {
	item, ok := m.list.SelectedItem().(conversationItem)
	if !ok {
		return ""
	}
	return item.conv.ID
}

func (m SidebarModel) Update(msg tea.Msg) (SidebarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			id := m.SelectedID()
			if id == "" {
				return m, nil
			}
			return m, func() tea.Msg {
				return ConversationSelected{ID: id}
			}

		case "ctrl+d":
			id := m.SelectedID()
			if id == "" {
				return m, nil
			}
			return m, func() tea.Msg {
				return DeleteConversation{ID: id}
			}

		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			return m, func() tea.Msg {
				return SidebarClosed{}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m SidebarModel) View() string {
	helpText := "↑/↓ • Enter: Open • Ctrl+N: New • Ctrl+D: Delete • Tab: Close"

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.list.View(),
		HelpTextSimpleStyle.Width(max(m.width-4, 1)).Render(helpText),
	)
	return GetSidebarStyle(m.width, m.height, m.focused).Render(content)
}
