// Package generator adapts an eino chat model to the pipeline's streaming
// generator capability.
package generator

import (
	"context"
	"errors"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

var ErrEmptyPrompt = errors.New("generator: empty prompt")

// ChatModelGenerator streams answers from any eino chat model.
type ChatModelGenerator struct {
	chatModel einomodel.BaseChatModel
	modelName string
	handlers  []einocb.Handler
}

// NewChatModelGenerator wraps chatModel. handlers are attached to every call
// so the model's own callbacks reach the observers.
func NewChatModelGenerator(chatModel einomodel.BaseChatModel, modelName string, handlers ...einocb.Handler) *ChatModelGenerator {
	return &ChatModelGenerator{chatModel: chatModel, modelName: modelName, handlers: handlers}
}

func (g *ChatModelGenerator) ModelName() string { return g.modelName }

// Stream starts generation. The caller must Close the returned reader;
// cancelling ctx aborts the underlying request.
func (g *ChatModelGenerator) Stream(ctx context.Context, p *model.AssembledPrompt) (*schema.StreamReader[*schema.Message], error) {
	if p == nil || len(p.Messages) == 0 {
		return nil, ErrEmptyPrompt
	}
	if len(g.handlers) > 0 {
		ctx = einocb.InitCallbacks(ctx, &einocb.RunInfo{
			Name:      g.modelName,
			Type:      "ChatModel",
			Component: components.ComponentOfChatModel,
		}, g.handlers...)
	}
	return g.chatModel.Stream(ctx, p.Messages)
}
