package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"
)

// Theme registry for the application
var Theme *tint.Registry

// Common style elements used across all views
var (
	TitleStyle                   lipgloss.Style
	TitleWithPaddingStyle        lipgloss.Style
	BannerStyle                  lipgloss.Style
	errorStyle                   lipgloss.Style
	ErrorMessageStyle            lipgloss.Style
	statusBarStyle               lipgloss.Style
	helpStyle                    lipgloss.Style
	HelpTextSimpleStyle          lipgloss.Style
	BadgeOnStyle                 lipgloss.Style
	BadgeOffStyle                lipgloss.Style
	UserMessageLabelStyle        lipgloss.Style
	AssistantMessageLabelStyle   lipgloss.Style
	UserMessageContentStyle      lipgloss.Style
	AssistantMessageContentStyle lipgloss.Style
	ImagePlaceholderStyle        lipgloss.Style
	MetadataStyle                lipgloss.Style
	SpinnerStyle                 lipgloss.Style
	ViewportBorderStyle          lipgloss.Style
	ScrollIndicatorStyle         lipgloss.Style
	AttachmentStyle              lipgloss.Style

	// Sidebar
	SidebarBorderStyle        lipgloss.Style
	SidebarFocusedBorderStyle lipgloss.Style

	// Model picker overlay
	PickerBorderStyle       lipgloss.Style
	PickerTitleStyle        lipgloss.Style
	PickerSelectedItemStyle lipgloss.Style
	PickerNormalItemStyle   lipgloss.Style
	PickerDescriptionStyle  lipgloss.Style
	PickerCurrentMarkStyle  lipgloss.Style

	// Toasts
	ToastPendingStyle lipgloss.Style
	ToastSuccessStyle lipgloss.Style
	ToastFailureStyle lipgloss.Style
)

func init() {
	tint.NewDefaultRegistry()
	tint.SetTint(tint.TintChalk)
	Theme = tint.DefaultRegistry

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(tint.Purple())

	TitleWithPaddingStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(tint.Purple()).
		Padding(0, 1)

	BannerStyle = lipgloss.NewStyle().
		Foreground(tint.BrightPurple()).
		Bold(true).
		Align(lipgloss.Center).
		Padding(1, 0)

	errorStyle = lipgloss.NewStyle().
		Foreground(tint.Red()).
		Bold(true).
		Padding(1)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(tint.Red())

	statusBarStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(1, 0, 0, 1)

	HelpTextSimpleStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())

	BadgeOnStyle = lipgloss.NewStyle().
		Foreground(tint.Bg()).
		Background(tint.Green()).
		Bold(true).
		Padding(0, 1)

	BadgeOffStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 1)

	UserMessageLabelStyle = lipgloss.NewStyle().
		Foreground(tint.White()).
		Bold(true)

	AssistantMessageLabelStyle = lipgloss.NewStyle().
		Foreground(tint.Purple()).
		Bold(true)

	UserMessageContentStyle = lipgloss.NewStyle().
		Foreground(tint.Fg()).
		Padding(0, 1).
		MarginBottom(1)

	AssistantMessageContentStyle = lipgloss.NewStyle().
		Foreground(tint.Fg()).
		Padding(0, 1).
		MarginBottom(1)

	ImagePlaceholderStyle = lipgloss.NewStyle().
		Foreground(tint.Yellow()).
		Italic(true)

	MetadataStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())

	SpinnerStyle = lipgloss.NewStyle().
		Foreground(tint.Purple())

	ViewportBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.White()).
		Padding(0, 1)

	ScrollIndicatorStyle = lipgloss.NewStyle().
		Foreground(tint.White()).
		Bold(false)

	AttachmentStyle = lipgloss.NewStyle().
		Foreground(tint.Cyan())

	SidebarBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.BrightBlack()).
		Padding(0, 1)

	SidebarFocusedBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.Purple()).
		Padding(0, 1)

	PickerBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.Yellow()).
		Padding(1, 2)

	PickerTitleStyle = lipgloss.NewStyle().
		Foreground(tint.Yellow()).
		Bold(true)

	PickerSelectedItemStyle = lipgloss.NewStyle().
		Foreground(tint.Purple()).
		Background(tint.BrightBlack()).
		Bold(true)

	PickerNormalItemStyle = lipgloss.NewStyle().
		Foreground(tint.Fg())

	PickerDescriptionStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		PaddingLeft(4)

	PickerCurrentMarkStyle = lipgloss.NewStyle().
		Foreground(tint.Green())

	ToastPendingStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.Purple()).
		Foreground(tint.Fg()).
		Padding(0, 1)

	ToastSuccessStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.Green()).
		Foreground(tint.Green()).
		Padding(0, 1)

	ToastFailureStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.Red()).
		Foreground(tint.Red()).
		Padding(0, 1)
}

// ConfigureListStyles configures all list styles to match the application theme
func ConfigureListStyles(l *list.Model) {
	l.Styles.Title = TitleStyle
	l.Styles.TitleBar = lipgloss.NewStyle().
		Padding(0, 0, 1, 0)

	l.Styles.PaginationStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())

	l.Styles.HelpStyle = helpStyle

	l.Styles.FilterPrompt = lipgloss.NewStyle().
		Foreground(tint.Yellow())
	l.Styles.FilterCursor = lipgloss.NewStyle().
		Foreground(tint.Purple())

	l.Styles.StatusBar = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 0, 1, 0)

	l.Styles.NoItems = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())
}

// CreateThemedDelegate creates a themed list delegate with application colors
func CreateThemedDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(tint.Purple()).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(tint.Purple()).
		Padding(0, 0, 0, 1)

	d.Styles.SelectedDesc = lipgloss.NewStyle().
		Foreground(tint.Yellow()).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(tint.Purple()).
		Padding(0, 0, 0, 1)

	d.Styles.NormalTitle = lipgloss.NewStyle().
		Foreground(tint.Fg()).
		Padding(0, 0, 0, 2)

	d.Styles.NormalDesc = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 0, 0, 2)

	d.Styles.DimmedTitle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 0, 0, 2)

	d.Styles.DimmedDesc = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 0, 0, 2)

	return d
}

// RenderBadge renders an on/off indicator such as the search toggle
func RenderBadge(label string, on bool) string {
	if on {
		return BadgeOnStyle.Render(label)
	}
	return BadgeOffStyle.Render(label)
}

// RenderError renders an error message
func RenderError(msg string) string {
	return ErrorMessageStyle.Render("  ✗ " + msg)
}

// RenderViewportWithBorder renders content with a viewport border style
func RenderViewportWithBorder(content string) string {
	return ViewportBorderStyle.Render(content)
}

// GetUserMessageContentStyle returns a style for user message content with given width
func GetUserMessageContentStyle(width int) lipgloss.Style {
	return UserMessageContentStyle.
		Width(max(width-10, 10)).
		Align(lipgloss.Right)
}

// GetAssistantMessageContentStyle returns a style for assistant message content with given width
func GetAssistantMessageContentStyle(width int) lipgloss.Style {
	return AssistantMessageContentStyle.
		Width(max(width-10, 10))
}

// GetSidebarStyle returns the sidebar frame for the given size and focus
func GetSidebarStyle(width, height int, focused bool) lipgloss.Style {
	style := SidebarBorderStyle
	if focused {
		style = SidebarFocusedBorderStyle
	}
	return style.Width(max(width-2, 1)).Height(max(height-2, 1))
}

// GetPickerItemStyle returns item style with dynamic width
func GetPickerItemStyle(width int, selected bool) lipgloss.Style {
	if selected {
		return PickerSelectedItemStyle.Width(width - 8)
	}
	return PickerNormalItemStyle.Width(width - 8)
}
