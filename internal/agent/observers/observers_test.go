package observers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/assistant/internal/core"
	logx "github.com/Chative-core-poc-v1/assistant/pkg/logger"
)

type recordedTokens struct {
	model              string
	prompt, completion int
	calls              int
}

func (r *recordedTokens) ObserveTokens(model string, prompt, completion int) {
	r.model, r.prompt, r.completion = model, prompt, completion
	r.calls++
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logx.Init(logx.LoggerOpts{Environment: core.Production, Output: &buf})
	t.Cleanup(func() { logx.Init() })
	return &buf
}

func TestDrainModelStream_ReportsLastUsage(t *testing.T) {
	buf := captureLogs(t)
	rec := &recordedTokens{}

	sr := schema.StreamReaderFromArray([]*einomodel.CallbackOutput{
		{Message: schema.AssistantMessage("Hel", nil)},
		{Message: schema.AssistantMessage("lo", nil)},
		{
			Message:    schema.AssistantMessage("", nil),
			Config:     &einomodel.Config{Model: "gemini-2.5-flash"},
			TokenUsage: &einomodel.TokenUsage{PromptTokens: 1000, CompletionTokens: 200, TotalTokens: 1200},
		},
	})

	drainModelStream(context.Background(), "Gemini", sr, rec)

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "gemini-2.5-flash", rec.model)
	assert.Equal(t, 1000, rec.prompt)
	assert.Equal(t, 200, rec.completion)
	assert.Contains(t, buf.String(), `"message":"model usage"`)
	assert.Contains(t, buf.String(), `"total_tokens":1200`)
}

func TestDrainModelStream_NoUsage(t *testing.T) {
	captureLogs(t)
	rec := &recordedTokens{}

	sr := schema.StreamReaderFromArray([]*einomodel.CallbackOutput{{Message: schema.AssistantMessage("hi", nil)}})
	drainModelStream(context.Background(), "Gemini", sr, rec)

	assert.Equal(t, 0, rec.calls)
}

func TestModelHandler_OnEndAndError(t *testing.T) {
	buf := captureLogs(t)
	rec := &recordedTokens{}
	h := newModelHandler(rec)
	info := &einocb.RunInfo{Name: "gemini-2.5-pro"}

	h.OnEnd(context.Background(), info, &einomodel.CallbackOutput{
		Message: &schema.Message{
			Role:         schema.Assistant,
			ResponseMeta: &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}},
		},
	})
	require.Equal(t, 1, rec.calls)
	assert.Equal(t, "gemini-2.5-pro", rec.model)

	h.OnError(context.Background(), info, errors.New("quota exceeded"))
	assert.Contains(t, buf.String(), "quota exceeded")
}

func TestLastUserContent(t *testing.T) {
	msgs := []*schema.Message{
		schema.SystemMessage("s"),
		schema.UserMessage(" first "),
		nil,
		schema.AssistantMessage("a", nil),
		schema.UserMessage(" second "),
	}
	assert.Equal(t, "second", lastUserContent(msgs))
	assert.Equal(t, "", lastUserContent(nil))
}

func TestNewAllCallbacks(t *testing.T) {
	assert.NotNil(t, NewAllCallbacks(nil))
}
