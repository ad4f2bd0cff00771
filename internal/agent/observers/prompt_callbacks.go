package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/prompt"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/Chative-core-poc-v1/assistant/pkg/logger"
)

func newPromptHandler() *callbackHelper.PromptCallbackHandler {
	return &callbackHelper.PromptCallbackHandler{
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *prompt.CallbackOutput) context.Context {
			if output == nil {
				return ctx
			}
			size := 0
			for _, m := range output.Result {
				if m != nil {
					size += len(m.Content)
				}
			}
			logx.Ctx(ctx).Debug().
				Str("prompt", runName(info)).
				Int("messages", len(output.Result)).
				Int("bytes", size).
				Msg("prompt rendered")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Ctx(ctx).Error().Err(err).Str("prompt", runName(info)).Msg("prompt render failed")
			return ctx
		},
	}
}
