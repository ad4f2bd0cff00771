package conversations

import (
	"context"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"

	"github.com/cloudwego/eino/schema"
)

// MessagesManager reads and records conversation turns through a
// ConversationRepository. A nil repository turns every call into a no-op.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	maxStoredTurns   int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		maxStoredTurns:   config.MaxStoredTurns,
	}
}

// LoadTurns returns the most recent stored turns of a conversation.
func (cm *MessagesManager) LoadTurns(ctx context.Context, conversationID string) ([]model.Turn, error) {
	if cm == nil || cm.conversationRepo == nil || conversationID == "" {
		return nil, nil
	}

	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return TrimTail(history.Turns(), cm.maxStoredTurns), nil
}

// SaveExchange appends the user's question and the assistant's answer.
func (cm *MessagesManager) SaveExchange(ctx context.Context, conversationID, query, answer string) error {
	if cm == nil || cm.conversationRepo == nil || conversationID == "" {
		return nil
	}

	if err := cm.conversationRepo.AddMessage(ctx, conversationID, schema.UserMessage(query)); err != nil {
		return err
	}
	if answer == "" {
		return nil
	}
	return cm.conversationRepo.AddMessage(ctx, conversationID, schema.AssistantMessage(answer, nil))
}
