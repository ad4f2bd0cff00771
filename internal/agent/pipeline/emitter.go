package pipeline

import (
	"strings"
	"time"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

// emitter is the only writer of a request's event channel. After an error
// only done may follow, done is sent exactly once and then the channel closes.
type emitter struct {
	out        chan<- model.StreamEvent
	metrics    Recorder
	start      time.Time
	failed     bool
	finished   bool
	firstChunk bool
	answer     strings.Builder
}

func newEmitter(out chan<- model.StreamEvent, metrics Recorder, start time.Time) *emitter {
	return &emitter{out: out, metrics: metrics, start: start}
}

// chunk relays text and reports whether it was sent.
func (e *emitter) chunk(text string) bool {
	if e.failed || e.finished || text == "" {
		return false
	}
	if !e.firstChunk {
		e.firstChunk = true
		e.metrics.FirstChunk(time.Since(e.start))
	}
	e.out <- model.ChunkEvent(text)
	e.metrics.Chunk()
	e.answer.WriteString(text)
	return true
}

func (e *emitter) fail(message string) {
	if e.failed || e.finished {
		return
	}
	e.failed = true
	e.out <- model.ErrorEvent(message)
}

func (e *emitter) finish() {
	if e.finished {
		return
	}
	e.finished = true
	e.out <- model.DoneEvent()
	close(e.out)
}

func (e *emitter) text() string { return e.answer.String() }
