package model

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// Role is the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one well-shaped conversation history entry.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToMessage converts the turn into an eino chat message.
func (t Turn) ToMessage() *schema.Message {
	if t.Role == RoleAssistant {
		return schema.AssistantMessage(t.Content, nil)
	}
	return schema.UserMessage(t.Content)
}

// TurnFromMessage converts a stored eino message back into a turn.
// ok is false for roles other than user and assistant or for empty content.
func TurnFromMessage(m *schema.Message) (Turn, bool) {
	if m == nil || strings.TrimSpace(m.Content) == "" {
		return Turn{}, false
	}
	switch m.Role {
	case schema.User:
		return Turn{Role: RoleUser, Content: m.Content}, true
	case schema.Assistant:
		return Turn{Role: RoleAssistant, Content: m.Content}, true
	default:
		return Turn{}, false
	}
}

type ConversationRepository interface {
	// AddMessage adds a message to the conversation history for the given conversation
	AddMessage(ctx context.Context, conversationID string, message *schema.Message) error

	// LoadHistory retrieves the conversation history for a conversation
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}

// Turns returns the user/assistant turns of the history, oldest first.
func (h *ConversationHistory) Turns() []Turn {
	if h == nil {
		return nil
	}
	turns := make([]Turn, 0, len(h.Messages))
	for _, m := range h.Messages {
		if t, ok := TurnFromMessage(m); ok {
			turns = append(turns, t)
		}
	}
	return turns
}
