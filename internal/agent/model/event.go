package model

// EventType tags a StreamEvent.
type EventType string

const (
	EventChunk EventType = "chunk"
	EventError EventType = "error"
	EventDone  EventType = "done"
)

// StreamEvent is one event relayed to the client. Chunk events carry Content,
// error events carry Message, done carries nothing.
type StreamEvent struct {
	Type    EventType `json:"type"`
	Content string    `json:"content,omitempty"`
	Message string    `json:"message,omitempty"`
}

func ChunkEvent(content string) StreamEvent { return StreamEvent{Type: EventChunk, Content: content} }

func ErrorEvent(message string) StreamEvent { return StreamEvent{Type: EventError, Message: message} }

func DoneEvent() StreamEvent { return StreamEvent{Type: EventDone} }
