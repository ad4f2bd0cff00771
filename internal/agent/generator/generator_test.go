package generator

import (
	"context"
	"errors"
	"io"
	"testing"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

type fakeChatModel struct {
	chunks  []string
	err     error
	gotMsgs []*schema.Message
	gotCtx  context.Context
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	return nil, errors.New("not used")
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	f.gotMsgs = input
	f.gotCtx = ctx
	if f.err != nil {
		return nil, f.err
	}
	msgs := make([]*schema.Message, 0, len(f.chunks))
	for _, c := range f.chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

func TestChatModelGenerator_Stream(t *testing.T) {
	fake := &fakeChatModel{chunks: []string{"Your ", "RRSP ", "room"}}
	g := NewChatModelGenerator(fake, "gemini-2.5-flash")

	prompt := &model.AssembledPrompt{Messages: []*schema.Message{schema.SystemMessage("s"), schema.UserMessage("q")}}
	sr, err := g.Stream(context.Background(), prompt)
	require.NoError(t, err)
	defer sr.Close()

	var got string
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got += msg.Content
	}
	assert.Equal(t, "Your RRSP room", got)
	assert.Equal(t, prompt.Messages, fake.gotMsgs)
	assert.Equal(t, "gemini-2.5-flash", g.ModelName())
}

func TestChatModelGenerator_Errors(t *testing.T) {
	g := NewChatModelGenerator(&fakeChatModel{}, "m")
	_, err := g.Stream(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	boom := errors.New("backend unavailable")
	g = NewChatModelGenerator(&fakeChatModel{err: boom}, "m")
	_, err = g.Stream(context.Background(), &model.AssembledPrompt{Messages: []*schema.Message{schema.UserMessage("q")}})
	assert.ErrorIs(t, err, boom)
}

func TestChatModelGenerator_AttachesCallbacks(t *testing.T) {
	fake := &fakeChatModel{chunks: []string{"x"}}
	handler := einocb.NewHandlerBuilder().Build()
	g := NewChatModelGenerator(fake, "m", handler)

	sr, err := g.Stream(context.Background(), &model.AssembledPrompt{Messages: []*schema.Message{schema.UserMessage("q")}})
	require.NoError(t, err)
	sr.Close()

	assert.NotEqual(t, context.Background(), fake.gotCtx)
}
