package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

type fakeRetriever struct {
	fragments []model.Fragment
	err       error
	// hang blocks until the test ends, ignoring ctx.
	hang  chan struct{}
	panic bool

	calls      atomic.Int32
	mu         sync.Mutex
	gotQuery   string
	gotHistory []model.Turn
	gotTopK    int
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, history []model.Turn, topK int) ([]model.Fragment, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.gotQuery, f.gotHistory, f.gotTopK = query, history, topK
	f.mu.Unlock()
	if f.panic {
		panic("retriever exploded")
	}
	if f.hang != nil {
		<-f.hang
	}
	return f.fragments, f.err
}

func (f *fakeRetriever) query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gotQuery
}

type fakeGenerator struct {
	chunks   []string
	startErr error
	midErr   error
	// hold keeps the stream open without ending it until the channel is closed.
	hold chan struct{}

	calls  atomic.Int32
	mu     sync.Mutex
	prompt *model.AssembledPrompt
}

func (g *fakeGenerator) Stream(_ context.Context, p *model.AssembledPrompt) (*schema.StreamReader[*schema.Message], error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.prompt = p
	g.mu.Unlock()
	if g.startErr != nil {
		return nil, g.startErr
	}

	sr, sw := schema.Pipe[*schema.Message](len(g.chunks) + 1)
	go func() {
		defer sw.Close()
		for _, c := range g.chunks {
			sw.Send(schema.AssistantMessage(c, nil), nil)
		}
		if g.hold != nil {
			<-g.hold
			return
		}
		if g.midErr != nil {
			sw.Send(nil, g.midErr)
		}
	}()
	return sr, nil
}

func (g *fakeGenerator) lastPrompt() *model.AssembledPrompt {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompt
}

type fakeProfiles struct {
	profiles map[string]*model.UserProfile
	err      error
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID string) (*model.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles[userID], nil
}

type savedExchange struct {
	conversationID, query, answer string
}

type fakeHistory struct {
	turns map[string][]model.Turn

	mu    sync.Mutex
	saved []savedExchange
}

func (f *fakeHistory) LoadTurns(_ context.Context, conversationID string) ([]model.Turn, error) {
	if f.turns == nil {
		return nil, errors.New("history offline")
	}
	return f.turns[conversationID], nil
}

func (f *fakeHistory) SaveExchange(_ context.Context, conversationID, query, answer string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, savedExchange{conversationID, query, answer})
	return nil
}

func (f *fakeHistory) exchanges() []savedExchange {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]savedExchange(nil), f.saved...)
}

// panicRecorder panics while the pipeline records the retrieval score.
type panicRecorder struct {
	finished atomic.Int32
}

func (*panicRecorder) StreamStarted()                         {}
func (r *panicRecorder) StreamFinished(string, time.Duration) { r.finished.Add(1) }
func (*panicRecorder) FirstChunk(time.Duration)               {}
func (*panicRecorder) Chunk()                                 {}
func (*panicRecorder) RetrievalFailed()                       {}
func (*panicRecorder) RetrievalScore(float64)                 { panic("metrics exploded") }
