package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTitle   = "New Chat"
	titleMaxLength = 30
)

type Conversation struct {
	ID        string
	Title     string
	Messages  []Message
	Timestamp time.Time
}

// conversationJSON is the stored shape; Timestamp is kept as Unix milliseconds.
type conversationJSON struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Timestamp int64     `json:"timestamp"`
}

func NewConversation() Conversation {
	return Conversation{
		ID:        generateID(),
		Title:     DefaultTitle,
		Messages:  []Message{},
		Timestamp: time.Now(),
	}
}

// generateID returns a time-ordered id, falling back to a random one if the
// v7 generator fails.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (c Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// WithMessage returns a copy of c with msg appended. The first user message
// also names the conversation.
func (c Conversation) WithMessage(msg Message) Conversation {
	messages := make([]Message, len(c.Messages), len(c.Messages)+1)
	copy(messages, c.Messages)

	if len(c.Messages) == 0 && msg.Role == RoleUser {
		c.Title = TitleFromPrompt(msg.Content)
	}
	c.Messages = append(messages, msg)
	return c
}

// TitleFromPrompt truncates the prompt to the first 30 characters.
func TitleFromPrompt(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > titleMaxLength {
		runes = runes[:titleMaxLength]
	}
	return string(runes)
}

func (c Conversation) MarshalJSON() ([]byte, error) {
	messages := c.Messages
	if messages == nil {
		messages = []Message{}
	}
	return json.Marshal(conversationJSON{
		ID:        c.ID,
		Title:     c.Title,
		Messages:  messages,
		Timestamp: c.Timestamp.UnixMilli(),
	})
}

func (c *Conversation) UnmarshalJSON(data []byte) error {
	var raw conversationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.ID = raw.ID
	c.Title = raw.Title
	c.Messages = raw.Messages
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	c.Timestamp = time.UnixMilli(raw.Timestamp)
	return nil
}

// NonEmpty filters out conversations without messages, keeping order.
func NonEmpty(conversations []Conversation) []Conversation {
	result := make([]Conversation, 0, len(conversations))
	for _, c := range conversations {
		if !c.IsEmpty() {
			result = append(result, c)
		}
	}
	return result
}
