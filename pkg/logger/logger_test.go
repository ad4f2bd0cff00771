package logx

import (
	"bytes"
	"context"
	"testing"

	"github.com/Chative-core-poc-v1/assistant/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Output: &buf})
	t.Cleanup(func() { Init() })

	ctx := WithRequestID(context.Background(), "req-42")
	Ctx(ctx).Info().Msg("hello")

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Output: &buf})
	t.Cleanup(func() { Init() })

	Ctx(context.Background()).Info().Msg("global")
	assert.Contains(t, buf.String(), `"message":"global"`)
}

func TestProductionDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Output: &buf})
	t.Cleanup(func() { Init() })

	Debug().Msg("noisy")
	assert.Empty(t, buf.String())
}
