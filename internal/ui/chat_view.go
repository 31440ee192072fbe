package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"

	"royal-terminal/internal/attachment"
	"royal-terminal/internal/backend"
	"royal-terminal/internal/catalog"
	"royal-terminal/internal/conversation"
	"royal-terminal/internal/exchange"
	"royal-terminal/internal/logging"
	"royal-terminal/internal/models"
)

const (
	titleHeight    = 3
	textareaHeight = 5
	helpHeight     = 2
	padding        = 2

	// WelcomeBanner is shown until the first exchange of the session
	WelcomeBanner = "What can I help with ?"
)

type ChatViewModel struct {
	ctx          context.Context
	store        *conversation.Store
	orchestrator *exchange.Orchestrator
	catalog      *catalog.Catalog
	imagesDir    string

	modelLabel string
	useSearch  bool

	viewport   viewport.Model
	textarea   textarea.Model
	spinner    spinner.Model
	picker     ModelPickerOverlayModel
	mdRenderer *glamour.TermRenderer

	width  int
	height int

	status      string
	statusError bool
}

// ExchangeFinished is sent when a submitted prompt has been answered,
// failed or been superseded.
type ExchangeFinished struct {
	Result exchange.Result
	Err    error
}

// attachmentFailed returns the prompt to the composer when an attachment
// could not be read.
type attachmentFailed struct {
	Input string
	Err   error
}

type imageSaved struct {
	Path string
	Err  error
}

// createMarkdownRenderer creates a markdown renderer with fallback handling
func createMarkdownRenderer(width int) *glamour.TermRenderer {
	wrap := max(width-10, 20)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		return renderer
	}
	logging.Error("Failed to create markdown renderer with auto style: %v, trying fallback", err)

	renderer, err = glamour.NewTermRenderer(glamour.WithWordWrap(wrap))
	if err == nil {
		return renderer
	}
	logging.Error("Failed to create markdown renderer: %v, using plain text", err)
	return nil
}

// safeRenderMarkdown renders markdown, falling back to the raw text on error
// or panic.
func (m *ChatViewModel) safeRenderMarkdown(content string) (out string) {
	out = content
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Panic in markdown rendering: %v", r)
			out = content
		}
	}()

	if m.mdRenderer == nil || content == "" {
		return content
	}

	rendered, err := m.mdRenderer.Render(content)
	if err != nil {
		logging.Error("Markdown rendering error: %v, falling back to plain text", err)
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func NewChatViewModel(ctx context.Context, store *conversation.Store, orch *exchange.Orchestrator, cat *catalog.Catalog, imagesDir string, width, height int) ChatViewModel {
	ta := textarea.New()
	ta.Placeholder = "Ask anything, or drop an image or file path..."
	ta.Focus()
	ta.CharLimit = 8000
	ta.SetWidth(max(width-4, 10))
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	// Keep only essential editing keys
	ta.KeyMap.CharacterForward = key.NewBinding(key.WithKeys("right"))
	ta.KeyMap.CharacterBackward = key.NewBinding(key.WithKeys("left"))
	ta.KeyMap.LineStart = key.NewBinding(key.WithKeys("home"))
	ta.KeyMap.LineEnd = key.NewBinding(key.WithKeys("end"))
	ta.KeyMap.DeleteCharacterBackward = key.NewBinding(key.WithKeys("backspace"))
	ta.KeyMap.DeleteCharacterForward = key.NewBinding(key.WithKeys("delete"))
	ta.KeyMap.DeleteWordBackward = key.NewBinding(key.WithKeys("ctrl+w"))
	ta.KeyMap.LineNext = key.NewBinding()
	ta.KeyMap.LinePrevious = key.NewBinding()
	ta.KeyMap.WordForward = key.NewBinding()
	ta.KeyMap.WordBackward = key.NewBinding()
	ta.KeyMap.DeleteWordForward = key.NewBinding()
	ta.KeyMap.DeleteAfterCursor = key.NewBinding()
	ta.KeyMap.DeleteBeforeCursor = key.NewBinding()
	ta.KeyMap.InsertNewline = key.NewBinding()

	vp := viewport.New(max(width-6, 10), max(height-titleHeight-textareaHeight-helpHeight-padding, 3))
	vp.MouseWheelDelta = 2
	vp.KeyMap.Down = key.NewBinding(key.WithKeys("down"))
	vp.KeyMap.Up = key.NewBinding(key.WithKeys("up"))
	vp.KeyMap.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	vp.KeyMap.PageUp = key.NewBinding(key.WithKeys("pgup"))
	vp.KeyMap.HalfPageDown = key.NewBinding()
	vp.KeyMap.HalfPageUp = key.NewBinding()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	picker := NewModelPickerOverlayModel(cat.Models())
	picker.UpdateSize(width, height)

	m := ChatViewModel{
		ctx:          ctx,
		store:        store,
		orchestrator: orch,
		catalog:      cat,
		imagesDir:    imagesDir,
		modelLabel:   cat.Default().Label,
		viewport:     vp,
		textarea:     ta,
		spinner:      sp,
		picker:       picker,
		mdRenderer:   createMarkdownRenderer(width),
		width:        width,
		height:       height,
	}
	m.Refresh()
	return m
}

func (m ChatViewModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m ChatViewModel) ModelLabel() string {
	return m.modelLabel
}

func (m ChatViewModel) UseSearch() bool {
	return m.useSearch
}

func (m ChatViewModel) Status() string {
	return m.status
}

func (m ChatViewModel) PickerVisible() bool {
	return m.picker.IsVisible()
}

func (m *ChatViewModel) Focus() tea.Cmd {
	return m.textarea.Focus()
}

func (m *ChatViewModel) Blur() {
	m.textarea.Blur()
}

func (m *ChatViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-6, 10)
	m.viewport.Height = max(height-titleHeight-textareaHeight-helpHeight-padding, 3)
	m.textarea.SetWidth(max(width-4, 10))
	m.picker.UpdateSize(width, height)
	m.mdRenderer = createMarkdownRenderer(width)
	m.Refresh()
}

func (m *ChatViewModel) setStatus(text string, isError bool) {
	m.status = text
	m.statusError = isError
}

func (m ChatViewModel) Update(msg tea.Msg) (ChatViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ModelPicked:
		m.modelLabel = msg.Label
		m.picker.Hide()
		m.setStatus("Model: "+msg.Label, false)
		return m, m.textarea.Focus()

	case ModelPickerClosed:
		m.picker.Hide()
		return m, m.textarea.Focus()
	}

	if m.picker.IsVisible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, m.picker.UpdatePicker(msg)
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+l":
			m.textarea.Blur()
			m.picker.Show(m.modelLabel)
			return m, nil

		case "ctrl+t":
			m.useSearch = !m.useSearch
			if m.useSearch {
				m.setStatus("Web search on", false)
			} else {
				m.setStatus("Web search off", false)
			}
			return m, nil

		case "ctrl+o":
			return m, m.saveLatestImage()

		case "enter":
			return m.submit()
		}

	case ExchangeFinished:
		switch {
		case msg.Err != nil:
			m.setStatus(msg.Err.Error(), true)
		case msg.Result.Err != nil:
			m.setStatus("Request failed: "+msg.Result.Err.Error(), true)
		case msg.Result.Reply != nil:
			m.setStatus("", false)
		}
		m.Refresh()
		return m, nil

	case attachmentFailed:
		m.textarea.SetValue(msg.Input)
		m.setStatus(msg.Err.Error(), true)
		return m, nil

	case imageSaved:
		if msg.Err != nil {
			m.setStatus("Could not save image: "+msg.Err.Error(), true)
		} else {
			m.setStatus("Image saved to "+msg.Path, false)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit validates the composer input against the selected model and starts
// the exchange. Attachment files are read in the command.
func (m ChatViewModel) submit() (ChatViewModel, tea.Cmd) {
	input := m.textarea.Value()
	if strings.TrimSpace(input) == "" {
		return m, nil
	}

	detection := attachment.DetectPaths(input)
	prompt := strings.TrimSpace(detection.Query)
	if prompt == "" {
		m.setStatus("Add a prompt to send with the attachment", true)
		return m, nil
	}

	model, err := m.catalog.Lookup(m.modelLabel)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}

	images := detection.Images()
	files := detection.Files()
	if len(images) > 0 && !model.AcceptsImage() {
		if !model.AcceptsFiles() {
			m.setStatus(fmt.Sprintf("%s does not accept images", model.Label), true)
			return m, nil
		}
		// Text-only models take images as plain file attachments
		files = append(files, images...)
		images = nil
	}
	if len(files) > 0 && !model.AcceptsFiles() {
		m.setStatus(fmt.Sprintf("%s does not accept files", model.Label), true)
		return m, nil
	}
	// Only one prompt image; any further images go as files
	if len(images) > 1 {
		files = append(files, images[1:]...)
		images = images[:1]
	}

	convID := m.store.ActiveID()
	sub := backend.Submission{
		Prompt:     prompt,
		ModelLabel: model.Label,
		UseSearch:  m.useSearch,
	}

	m.textarea.Reset()
	m.setStatus("", false)
	return m, m.runExchange(convID, input, sub, images, files)
}

func (m ChatViewModel) runExchange(convID, input string, sub backend.Submission, images, files []string) tea.Cmd {
	ctx := m.ctx
	orch := m.orchestrator
	return func() tea.Msg {
		for _, path := range images {
			uri, err := attachment.LoadImage(path)
			if err != nil {
				logging.Error("Failed to load image %s: %v", path, err)
				return attachmentFailed{Input: input, Err: err}
			}
			sub.Image = uri
		}
		for _, path := range files {
			uri, err := attachment.LoadFile(path)
			if err != nil {
				logging.Error("Failed to load file %s: %v", path, err)
				return attachmentFailed{Input: input, Err: err}
			}
			sub.Files = append(sub.Files, uri)
		}

		result, err := orch.Submit(ctx, convID, sub)
		return ExchangeFinished{Result: result, Err: err}
	}
}

func (m ChatViewModel) saveLatestImage() tea.Cmd {
	conv, ok := m.store.Current()
	if !ok {
		return nil
	}

	var payload string
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].IsImage {
			payload = conv.Messages[i].Content
			break
		}
	}
	if payload == "" {
		return func() tea.Msg {
			return imageSaved{Err: fmt.Errorf("no image in this conversation")}
		}
	}

	dir := m.imagesDir
	return func() tea.Msg {
		path, err := attachment.SaveImage(dir, payload, time.Now())
		if err != nil {
			logging.Error("Failed to save image: %v", err)
		}
		return imageSaved{Path: path, Err: err}
	}
}

// Refresh re-renders the transcript of the active conversation
func (m *ChatViewModel) Refresh() {
	conv, _ := m.store.Current()
	m.viewport.SetContent(m.renderMessages(conv, m.store.ChatStarted()))
	m.viewport.GotoBottom()
}

func (m *ChatViewModel) renderMessages(conv models.Conversation, started bool) string {
	var b strings.Builder

	if !started {
		b.WriteString(BannerStyle.Width(m.viewport.Width).Render(WelcomeBanner))
		b.WriteString("\n\n")
	}

	for _, msg := range conv.Messages {
		if msg.Role == models.RoleUser {
			label := UserMessageLabelStyle.Render("You:")
			b.WriteString(GetUserMessageContentStyle(m.width).Render(label + "\n" + m.safeRenderMarkdown(msg.Content)))
			b.WriteString("\n\n")
			continue
		}

		label := "Assistant:"
		if msg.Model != "" {
			label = fmt.Sprintf("Assistant (%s):", msg.Model)
		}
		body := m.safeRenderMarkdown(msg.Content)
		if msg.IsImage {
			body = renderImagePlaceholder(msg.Content)
		}
		b.WriteString(GetAssistantMessageContentStyle(m.width).Render(AssistantMessageLabelStyle.Render(label) + "\n" + body))
		b.WriteString("\n\n")
	}

	return b.String()
}

func renderImagePlaceholder(payload string) string {
	size := uint64(len(payload)) * 3 / 4
	return ImagePlaceholderStyle.Render(fmt.Sprintf("[image] %s • Ctrl+O: save", humanize.Bytes(size)))
}

func (m ChatViewModel) renderHeader() string {
	title := models.DefaultTitle
	if conv, ok := m.store.Current(); ok {
		title = conv.Title
	}

	parts := []string{
		TitleWithPaddingStyle.Render(title),
		MetadataStyle.Render(m.modelLabel),
		RenderBadge("search", m.useSearch),
	}
	if m.orchestrator.Pending(m.store.ActiveID()) {
		parts = append(parts, m.spinner.View()+MetadataStyle.Render(" waiting for reply"))
	}
	return strings.Join(parts, " ")
}

func (m ChatViewModel) renderStatus() string {
	if m.status == "" {
		return statusBarStyle.Render(" ")
	}
	if m.statusError {
		return RenderError(m.status)
	}
	return statusBarStyle.Render(m.status)
}

func (m ChatViewModel) renderScrollIndicator() string {
	if m.viewport.TotalLineCount() <= m.viewport.Height {
		return ""
	}
	return ScrollIndicatorStyle.Render(fmt.Sprintf("Scroll: %d%% ↕", int(m.viewport.ScrollPercent()*100)))
}

// renderAttachmentHint lists paths the composer will attach on enter
func (m ChatViewModel) renderAttachmentHint() string {
	detection := attachment.DetectPaths(m.textarea.Value())
	if !detection.HasPaths() {
		return ""
	}
	names := make([]string, len(detection.Paths))
	for i, p := range detection.Paths {
		names[i] = filepath.Base(p.Path)
	}
	return AttachmentStyle.Render("📎 " + strings.Join(names, ", "))
}

func (m ChatViewModel) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader() + "\n")
	b.WriteString(m.renderStatus() + "\n")

	b.WriteString(RenderViewportWithBorder(m.viewport.View()))
	b.WriteString("\n")
	if scrollInfo := m.renderScrollIndicator(); scrollInfo != "" {
		b.WriteString(scrollInfo)
	}
	b.WriteString("\n")
	if hint := m.renderAttachmentHint(); hint != "" {
		b.WriteString(hint)
	}
	b.WriteString("\n")

	b.WriteString(m.textarea.View() + "\n")

	helpText := "Enter: Send • Ctrl+L: Model • Ctrl+T: Search • Ctrl+O: Save image • Ctrl+N: New • Tab: Chats • Ctrl+C: Quit"
	b.WriteString(helpStyle.Render(helpText))

	return m.picker.RenderOverlay(b.String())
}
