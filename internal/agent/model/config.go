package model

import "time"

// ================ Config ================
type ConversationConfig struct {
	TTL time.Duration `envconfig:"CONVERSATION_TTL" default:"24h"`
	// MaxStoredTurns bounds how many stored messages are loaded back for a conversation.
	MaxStoredTurns int `envconfig:"CONVERSATION_MAX_STORED_TURNS" default:"40"`
}

type PipelineConfig struct {
	SufficiencyThreshold  float64       `envconfig:"SUFFICIENCY_THRESHOLD" default:"0.5"`
	MaxHistoryTurns       int           `envconfig:"MAX_HISTORY_TURNS" default:"10"`
	RetrievalTopK         int           `envconfig:"RETRIEVAL_TOP_K" default:"5"`
	RetrievalHistoryTurns int           `envconfig:"RETRIEVAL_HISTORY_TURNS" default:"4"`
	RetrievalTimeout      time.Duration `envconfig:"RETRIEVAL_TIMEOUT" default:"5s"`
	MaxQueryLength        int           `envconfig:"MAX_QUERY_LENGTH" default:"1000"`
	MaxEnrichmentTerms    int           `envconfig:"MAX_ENRICHMENT_TERMS" default:"6"`
	RequestTimeout        time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

type GeneratorConfig struct {
	Model          string  `envconfig:"GENERATOR_MODEL" default:"gemini-2.5-flash"`
	MaxTokens      int     `envconfig:"GENERATOR_MAX_TOKENS" default:"2000"`
	Temperature    float32 `envconfig:"GENERATOR_TEMPERATURE" default:"0.3"`
	ThinkingBudget int32   `envconfig:"GENERATOR_THINKING_BUDGET" default:"0"`
}

type KnowledgeConfig struct {
	Dir               string `envconfig:"KNOWLEDGE_DIR" default:"knowledge"`
	Collection        string `envconfig:"KNOWLEDGE_COLLECTION" default:"tax-articles"`
	ChunkSize         int    `envconfig:"KNOWLEDGE_CHUNK_SIZE" default:"800"`
	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER" default:"ollama"`
	EmbeddingModel    string `envconfig:"EMBEDDING_MODEL" default:"nomic-embed-text"`
	OllamaBaseURL     string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434/api"`
	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`
}

type PromptConfig struct {
	AssistantName string `envconfig:"PROMPT_ASSISTANT_NAME" default:"Tax Assistant"`
	SiteName      string `envconfig:"PROMPT_SITE_NAME" default:"the site"`
}

type ServerConfig struct {
	Port              string        `envconfig:"PORT" default:"8080"`
	AllowedOrigins    []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`
	MaxBodyBytes      int64         `envconfig:"MAX_BODY_BYTES" default:"262144"`
	HeartbeatInterval time.Duration `envconfig:"HEARTBEAT_INTERVAL" default:"15s"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}
