package conversations

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

type memoryRepo struct {
	messages map[string][]*schema.Message
	loadErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{messages: map[string][]*schema.Message{}}
}

func (m *memoryRepo) AddMessage(_ context.Context, id string, msg *schema.Message) error {
	m.messages[id] = append(m.messages[id], msg)
	return nil
}

func (m *memoryRepo) LoadHistory(_ context.Context, id string) (*model.ConversationHistory, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return &model.ConversationHistory{ConversationID: id, Messages: m.messages[id]}, nil
}

func TestMessagesManager_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	mgr := NewMessagesManager(repo, model.ConversationConfig{MaxStoredTurns: 3})

	require.NoError(t, mgr.SaveExchange(ctx, "c1", "q1", "a1"))
	require.NoError(t, mgr.SaveExchange(ctx, "c1", "q2", "a2"))
	require.NoError(t, mgr.SaveExchange(ctx, "c1", "q3", ""))

	turns, err := mgr.LoadTurns(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []model.Turn{
		{Role: model.RoleUser, Content: "q2"},
		{Role: model.RoleAssistant, Content: "a2"},
		{Role: model.RoleUser, Content: "q3"},
	}, turns)

	assert.Len(t, repo.messages["c1"], 5)
}

func TestMessagesManager_NoConversation(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	mgr := NewMessagesManager(repo, model.ConversationConfig{MaxStoredTurns: 10})

	require.NoError(t, mgr.SaveExchange(ctx, "", "q", "a"))
	assert.Empty(t, repo.messages)

	turns, err := mgr.LoadTurns(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, turns)

	var nilMgr *MessagesManager
	turns, err = nilMgr.LoadTurns(ctx, "c1")
	assert.NoError(t, err)
	assert.Nil(t, turns)
}

func TestMessagesManager_LoadError(t *testing.T) {
	repo := newMemoryRepo()
	repo.loadErr = errors.New("redis down")
	mgr := NewMessagesManager(repo, model.ConversationConfig{MaxStoredTurns: 10})

	_, err := mgr.LoadTurns(context.Background(), "c1")
	assert.Error(t, err)
}
