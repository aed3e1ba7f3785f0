// ABOUTME: Conversation and Message data model persisted under the conversations key
// ABOUTME: Defines roles, tri-state feedback, and the first-message title rule

package conversation

import (
	"encoding/json"
	"fmt"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// legacyAssistantRole is how older persisted logs name assistant messages.
const legacyAssistantRole = "bot"

// UnmarshalJSON accepts the legacy "bot" role as RoleAssistant.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("role: %w", err)
	}
	if s == legacyAssistantRole {
		s = string(RoleAssistant)
	}
	*r = Role(s)
	return nil
}

// Feedback is the user's verdict on an assistant message.
// The zero value means no feedback.
type Feedback string

const (
	FeedbackNone Feedback = ""
	FeedbackUp   Feedback = "up"
	FeedbackDown Feedback = "down"
)

// Valid reports whether f is one of the known feedback values.
func (f Feedback) Valid() bool {
	return f == FeedbackNone || f == FeedbackUp || f == FeedbackDown
}

// Message is a single entry in a conversation log.
type Message struct {
	Role    Role     `json:"role"`
	Text    string   `json:"text"`
	Time    string   `json:"time"`              // display timestamp, fixed at creation
	Sources []string `json:"sources,omitempty"` // assistant answers only
	Liked   Feedback `json:"liked,omitempty"`   // assistant answers only
}

// Clone returns a deep copy of m.
func (m Message) Clone() Message {
	if m.Sources != nil {
		m.Sources = append([]string(nil), m.Sources...)
	}
	return m
}

// Conversation is a named, ordered message log.
type Conversation struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// Clone returns a deep copy of c.
func (c Conversation) Clone() Conversation {
	c.Messages = cloneMessages(c.Messages)
	return c
}

func cloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

const (
	// PlaceholderTitle names a conversation before its first message.
	PlaceholderTitle = "New Chat ✨"

	// maxTitleLength is the longest title kept before truncation.
	maxTitleLength = 30

	titleEllipsis = "..."
)

// TitleFromText derives a conversation title from the first user message:
// the text itself when it is at most 30 characters, otherwise its first
// 30 characters followed by "...". Length is counted in runes.
func TitleFromText(text string) string {
	runes := []rune(text)
	if len(runes) <= maxTitleLength {
		return text
	}
	return string(runes[:maxTitleLength]) + titleEllipsis
}
