package observers

import (
	"context"
	"errors"
	"io"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/assistant/pkg/logger"
)

// newModelHandler logs model calls and reports token usage and cost once the
// streamed answer is complete.
func newModelHandler(tokens TokenRecorder) *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *einomodel.CallbackInput) context.Context {
			ev := logx.Ctx(ctx).Debug().Str("model", runName(info))
			if input != nil {
				ev = ev.Int("messages", len(input.Messages)).Str("user", lastUserContent(input.Messages))
			}
			ev.Msg("model call start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *einomodel.CallbackOutput) context.Context {
			if output == nil {
				return ctx
			}
			name := runName(info)
			if output.Config != nil && output.Config.Model != "" {
				name = output.Config.Model
			}
			logUsage(ctx, name, tokenUsage(output), tokens)
			return ctx
		},
		OnEndWithStreamOutput: func(ctx context.Context, info *einocb.RunInfo, output *schema.StreamReader[*einomodel.CallbackOutput]) context.Context {
			go drainModelStream(ctx, runName(info), output, tokens)
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Ctx(ctx).Error().Err(err).Str("model", runName(info)).Msg("model call failed")
			return ctx
		},
	}
}

// drainModelStream consumes the callback copy of a streamed answer and logs
// the last usage it reported.
func drainModelStream(ctx context.Context, name string, sr *schema.StreamReader[*einomodel.CallbackOutput], tokens TokenRecorder) {
	defer sr.Close()

	var usage *schema.TokenUsage
	chunks := 0
	for {
		out, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logx.Ctx(ctx).Debug().Err(err).Str("model", name).Int("chunks", chunks).Msg("model stream ended with error")
			return
		}
		if out == nil {
			continue
		}
		chunks++
		if out.Config != nil && out.Config.Model != "" {
			name = out.Config.Model
		}
		if u := tokenUsage(out); u != nil {
			usage = u
		}
	}
	logx.Ctx(ctx).Debug().Str("model", name).Int("chunks", chunks).Msg("model stream complete")
	logUsage(ctx, name, usage, tokens)
}

func logUsage(ctx context.Context, name string, usage *schema.TokenUsage, tokens TokenRecorder) {
	u := model.ComputeUsage(name, usage)
	if u == nil {
		logx.Ctx(ctx).Debug().Str("model", name).Msg("model reported no token usage")
		return
	}
	if tokens != nil {
		tokens.ObserveTokens(u.Model, u.PromptTokens, u.CompletionTokens)
	}
	logx.Ctx(ctx).Info().
		Str("model", u.Model).
		Int("prompt_tokens", u.PromptTokens).
		Int("completion_tokens", u.CompletionTokens).
		Int("total_tokens", u.TotalTokens).
		Float64("input_cost_usd", u.InputCostUSD).
		Float64("output_cost_usd", u.OutputCostUSD).
		Float64("total_cost_usd", u.TotalCostUSD).
		Msg("model usage")
}

func tokenUsage(out *einomodel.CallbackOutput) *schema.TokenUsage {
	if out.TokenUsage != nil {
		return &schema.TokenUsage{
			PromptTokens:     out.TokenUsage.PromptTokens,
			CompletionTokens: out.TokenUsage.CompletionTokens,
			TotalTokens:      out.TokenUsage.TotalTokens,
		}
	}
	if out.Message != nil && out.Message.ResponseMeta != nil {
		return out.Message.ResponseMeta.Usage
	}
	return nil
}

func runName(info *einocb.RunInfo) string {
	if info == nil {
		return ""
	}
	return info.Name
}

func lastUserContent(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}
