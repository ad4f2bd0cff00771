// Package knowledge indexes the tax article corpus into an embedded
// chromem-go collection and serves ranked fragments from it.
package knowledge

import (
	"fmt"
	"strings"

	"github.com/philippgille/chromem-go"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

// Metadata keys stored with every indexed chunk.
const (
	MetaTitle  = "title"
	MetaSource = "source"
	MetaKind   = "kind"
	MetaChunk  = "chunk_index"
)

// NewEmbeddingFunc selects the embedding backend named by the config.
func NewEmbeddingFunc(cfg model.KnowledgeConfig) (chromem.EmbeddingFunc, error) {
	switch strings.ToLower(cfg.EmbeddingProvider) {
	case "ollama":
		return chromem.NewEmbeddingFuncOllama(cfg.EmbeddingModel, cfg.OllamaBaseURL), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai embeddings require OPENAI_API_KEY")
		}
		return chromem.NewEmbeddingFuncOpenAI(cfg.OpenAIAPIKey, chromem.EmbeddingModelOpenAI(cfg.EmbeddingModel)), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

// NewCollection creates an in-memory collection using embed for documents and queries.
func NewCollection(name string, embed chromem.EmbeddingFunc) (*chromem.Collection, error) {
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(name, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return collection, nil
}
