package models

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
	IsImage bool   `json:"isImage,omitempty"`
}

func NewUserMessage(prompt, model string) Message {
	return Message{
		Role:    RoleUser,
		Content: prompt,
		Model:   model,
	}
}

// NewAssistantMessage builds a reply. When imageBase64 is set the message
// carries the image and the text is ignored.
func NewAssistantMessage(text, imageBase64, model string) Message {
	msg := Message{
		Role:    RoleAssistant,
		Content: text,
		Model:   model,
	}
	if imageBase64 != "" {
		msg.IsImage = true
		msg.Content = imageBase64
	}
	return msg
}

// IsBlank reports whether the content is empty after trimming whitespace.
func (m Message) IsBlank() bool {
	return strings.TrimSpace(m.Content) == ""
}
