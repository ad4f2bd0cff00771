package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeUsage(t *testing.T) {
	u := ComputeUsage("gemini-2.5-flash", &schema.TokenUsage{
		PromptTokens:     1_000_000,
		CompletionTokens: 200_000,
		TotalTokens:      1_200_000,
	})
	require.NotNil(t, u)

	assert.InDelta(t, 0.30, u.InputCostUSD, 1e-9)
	assert.InDelta(t, 0.50, u.OutputCostUSD, 1e-9)
	assert.InDelta(t, 0.80, u.TotalCostUSD, 1e-9)
	assert.Equal(t, 1_200_000, u.TotalTokens)
}

func TestComputeUsage_UnknownModelAndNil(t *testing.T) {
	assert.Nil(t, ComputeUsage("gemini-2.5-flash", nil))

	u := ComputeUsage("some-local-model", &schema.TokenUsage{PromptTokens: 10})
	require.NotNil(t, u)
	assert.Zero(t, u.TotalCostUSD)
}
