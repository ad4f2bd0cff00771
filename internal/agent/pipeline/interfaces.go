package pipeline

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

// Retriever returns up to topK ranked fragments for an enriched query and
// the recent conversation turns.
type Retriever interface {
	Retrieve(ctx context.Context, query string, history []model.Turn, topK int) ([]model.Fragment, error)
}

// Generator streams the answer for an assembled prompt. The reader is
// closed by the pipeline.
type Generator interface {
	Stream(ctx context.Context, prompt *model.AssembledPrompt) (*schema.StreamReader[*schema.Message], error)
}

// ProfileStore reads the caller's profile. A nil profile means none is stored.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
}

// HistoryStore loads and records conversation turns.
type HistoryStore interface {
	LoadTurns(ctx context.Context, conversationID string) ([]model.Turn, error)
	SaveExchange(ctx context.Context, conversationID, query, answer string) error
}

// Recorder receives pipeline metrics.
type Recorder interface {
	StreamStarted()
	StreamFinished(outcome string, elapsed time.Duration)
	FirstChunk(elapsed time.Duration)
	Chunk()
	RetrievalFailed()
	RetrievalScore(best float64)
}

type noopRecorder struct{}

func (noopRecorder) StreamStarted()                       {}
func (noopRecorder) StreamFinished(string, time.Duration) {}
func (noopRecorder) FirstChunk(time.Duration)             {}
func (noopRecorder) Chunk()                               {}
func (noopRecorder) RetrievalFailed()                     {}
func (noopRecorder) RetrievalScore(float64)               {}
