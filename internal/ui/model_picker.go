package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"royal-terminal/internal/catalog"
)

// ModelPickerModel is the overlay foreground listing the catalog
type ModelPickerModel struct {
	models        []catalog.Model
	current       string
	selectedIndex int
	width         int
	height        int
}

// ModelPicked is sent when the user chooses a model
type ModelPicked struct {
	Label string
}

// ModelPickerClosed is sent when the picker is closed without a choice
type ModelPickerClosed struct{}

var (
	pickerUp     = key.NewBinding(key.WithKeys("up", "k"))
	pickerDown   = key.NewBinding(key.WithKeys("down", "j"))
	pickerSelect = key.NewBinding(key.WithKeys("enter"))
	pickerClose  = key.NewBinding(key.WithKeys("esc", "ctrl+l"))
)

func NewModelPickerModel(models []catalog.Model) ModelPickerModel {
	return ModelPickerModel{models: models}
}

// Open positions the cursor on the current model
func (m *ModelPickerModel) Open(current string) {
	m.current = current
	m.selectedIndex = 0
	for i, model := range m.models {
		if model.Label == current {
			m.selectedIndex = i
			break
		}
	}
}

func (m ModelPickerModel) Init() tea.Cmd {
	return nil
}

func (m ModelPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pickerUp):
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
			return m, nil

		case key.Matches(msg, pickerDown):
			if m.selectedIndex < len(m.models)-1 {
				m.selectedIndex++
			}
			return m, nil

		case key.Matches(msg, pickerSelect):
			if len(m.models) == 0 {
				return m, nil
			}
			label := m.models[m.selectedIndex].Label
			return m, func() tea.Msg {
				return ModelPicked{Label: label}
			}

		case key.Matches(msg, pickerClose):
			return m, func() tea.Msg {
				return ModelPickerClosed{}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m ModelPickerModel) overlayWidth() int {
	// Use 50% of window width
	return max(m.width/2, 44)
}

func (m ModelPickerModel) View() string {
	width := m.overlayWidth()

	var content strings.Builder
	content.WriteString(PickerTitleStyle.Render(fmt.Sprintf("Select Model (%d)", len(m.models))))
	content.WriteString("\n\n")

	for i, model := range m.models {
		mark := "  "
		if model.Label == m.current {
			mark = PickerCurrentMarkStyle.Render("✓ ")
		}

		name := model.Label
		switch {
		case model.ImageGeneration:
			name += "  [image]"
		case model.Vision:
			name += "  [vision]"
		}

		indicator := "  "
		if i == m.selectedIndex {
			indicator = "▶ "
		}
		content.WriteString(mark + GetPickerItemStyle(width, i == m.selectedIndex).Render(indicator+name))
		content.WriteString("\n")

		if model.Description != "" {
			content.WriteString(PickerDescriptionStyle.Width(width - 8).Render(model.Description))
			content.WriteString("\n")
		}
	}

	content.WriteString("\n")
	content.WriteString(HelpTextSimpleStyle.Render("↑/↓: Navigate • Enter: Select • Esc: Cancel"))

	return PickerBorderStyle.Width(width - 4).Render(content.String())
}

// ModelPickerOverlayModel wraps the picker with the overlay library
type ModelPickerOverlayModel struct {
	picker  ModelPickerModel
	visible bool
}

func NewModelPickerOverlayModel(models []catalog.Model) ModelPickerOverlayModel {
	return ModelPickerOverlayModel{
		picker: NewModelPickerModel(models),
	}
}

func (m *ModelPickerOverlayModel) Show(current string) {
	m.picker.Open(current)
	m.visible = true
}

func (m *ModelPickerOverlayModel) Hide() {
	m.visible = false
}

func (m ModelPickerOverlayModel) IsVisible() bool {
	return m.visible
}

func (m *ModelPickerOverlayModel) UpdateSize(width, height int) {
	m.picker.width = width
	m.picker.height = height
}

func (m *ModelPickerOverlayModel) UpdatePicker(msg tea.Msg) tea.Cmd {
	if !m.visible {
		return nil
	}

	mdl, cmd := m.picker.Update(msg)
	m.picker = mdl.(ModelPickerModel)
	return cmd
}

func (m ModelPickerOverlayModel) RenderOverlay(backgroundView string) string {
	if !m.visible {
		return backgroundView
	}

	return overlay.New(
		m.picker,
		StaticView(backgroundView),
		overlay.Center,
		overlay.Top,
		0,
		1,
	).View()
}

// StaticView renders fixed content as an overlay layer
type StaticView string

func (v StaticView) Init() tea.Cmd                       { return nil }
func (v StaticView) Update(tea.Msg) (tea.Model, tea.Cmd) { return v, nil }
func (v StaticView) View() string                        { return string(v) }
