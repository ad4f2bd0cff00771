package generator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/assistant/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey    string
	BaseURL   string
	Generator model.GeneratorConfig
}

// NewGeminiModel creates the answer model backed by the Gemini API.
func NewGeminiModel(ctx context.Context, config ChatModelConfig) (*gemini.ChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	gen := config.Generator
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       gen.Model,
		Temperature: &gen.Temperature,
		MaxTokens:   &gen.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(gen.ThinkingBudget),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating answer model")
		return nil, fmt.Errorf("error creating answer model: %w", err)
	}

	return chatModel, nil
}
