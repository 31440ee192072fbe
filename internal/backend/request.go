package backend

import (
	"strings"

	"royal-terminal/internal/catalog"
	"royal-terminal/internal/models"
)

// Submission is what the composer hands over for one exchange.
type Submission struct {
	Prompt     string
	ModelLabel string
	UseSearch  bool
	// Image is a data-URI, or empty
	Image string
	// Files are data-URIs, each suffixed with "*<original filename>"
	Files []string
}

type HistoryMessage struct {
	Role    models.Role `json:"role"`
	Content string      `json:"content"`
}

// Request is the JSON body of POST /g4f.
type Request struct {
	Model       string           `json:"model"`
	Provider    string           `json:"provider,omitempty"`
	UseSearch   bool             `json:"use_search"`
	ImageBase64 string           `json:"image_base64"`
	FileBase64  []string         `json:"file_base64"`
	Messages    []HistoryMessage `json:"messages"`
}

// BuildRequest turns a conversation that already holds the pending prompt into
// the request payload. It has no side effects.
func BuildRequest(conv models.Conversation, sub Submission, m catalog.Model) Request {
	files := make([]string, 0, len(sub.Files))
	for _, f := range sub.Files {
		files = append(files, StripDataURI(f))
	}

	return Request{
		Model:       m.BackendModel,
		Provider:    m.Provider,
		UseSearch:   sub.UseSearch,
		ImageBase64: StripDataURI(sub.Image),
		FileBase64:  files,
		Messages:    History(conv.Messages),
	}
}

// History reduces messages to role/content pairs, dropping images and
// whitespace-only messages. Order is preserved.
func History(messages []models.Message) []HistoryMessage {
	history := make([]HistoryMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.IsImage || msg.IsBlank() {
			continue
		}
		history = append(history, HistoryMessage{Role: msg.Role, Content: msg.Content})
	}
	return history
}

// StripDataURI returns what follows the first comma of a data-URI, or "" when
// there is no comma.
func StripDataURI(s string) string {
	_, payload, found := strings.Cut(s, ",")
	if !found {
		return ""
	}
	return payload
}

// AttachmentName returns the original filename carried after the last "*".
func AttachmentName(file string) string {
	idx := strings.LastIndex(file, "*")
	if idx < 0 {
		return ""
	}
	return file[idx+1:]
}
