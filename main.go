package main

import (
	"context"
	"os/signal"
	"syscall"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/conversations"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/generator"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/knowledge"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/observers"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/pipeline"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/repo"
	"github.com/Chative-core-poc-v1/assistant/internal/core"
	"github.com/Chative-core-poc-v1/assistant/internal/observability"
	"github.com/Chative-core-poc-v1/assistant/internal/server"
	logx "github.com/Chative-core-poc-v1/assistant/pkg/logger"
	pkgredis "github.com/Chative-core-poc-v1/assistant/pkg/redis"
)

// AppConfig defines all configurable parameters of the assistant,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis  pkgredis.Config
	Server model.ServerConfig

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Pipeline     model.PipelineConfig
	Generator    model.GeneratorConfig
	Knowledge    model.KnowledgeConfig
	Prompt       model.PromptConfig
	Conversation model.ConversationConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load(".env")

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Init()
		logx.Fatal().Err(err).Msg("failed to process environment config")
	}
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})
	if envErr != nil {
		logx.Warn().Err(envErr).Msg("could not load .env file")
	}

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialise redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("connected to redis")

	// Knowledge base
	embed, err := knowledge.NewEmbeddingFunc(cfg.Knowledge)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to configure embeddings")
	}
	collection, err := knowledge.NewCollection(cfg.Knowledge.Collection, embed)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to create knowledge collection")
	}
	indexed, err := knowledge.NewIndexer(collection, cfg.Knowledge.ChunkSize).IndexDir(ctx, cfg.Knowledge.Dir)
	if err != nil {
		logx.Fatal().Err(err).Str("dir", cfg.Knowledge.Dir).Msg("failed to index knowledge base")
	}
	logx.Info().Int("chunks", indexed).Str("dir", cfg.Knowledge.Dir).Msg("knowledge base indexed")

	// Model
	chatModel, err := generator.NewGeminiModel(ctx, generator.ChatModelConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Generator: cfg.Generator,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to create chat model")
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	callbacks := observers.NewAllCallbacks(metrics)

	p, err := pipeline.New(cfg.Pipeline, cfg.Prompt, pipeline.Deps{
		Retriever: knowledge.NewContextRetriever(knowledge.NewChromemRetriever(collection, cfg.Pipeline.RetrievalTopK)),
		Generator: generator.NewChatModelGenerator(chatModel, cfg.Generator.Model, callbacks),
		Profiles:  repo.NewRedisProfileStore(rdb),
		History: conversations.NewMessagesManager(
			repo.NewRedisConversationRepository(rdb, cfg.Conversation),
			cfg.Conversation,
		),
		Metrics:   metrics,
		Callbacks: []einocb.Handler{callbacks},
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to build chat pipeline")
	}

	srv := server.New(cfg.Server, server.Deps{
		Chat:     p,
		Identity: repo.NewRedisIdentityResolver(rdb),
		Metrics:  metrics,
	})
	if err := srv.ListenAndServe(ctx); err != nil {
		logx.Fatal().Err(err).Msg("http server failed")
	}
	logx.Info().Msg("assistant stopped")
}
