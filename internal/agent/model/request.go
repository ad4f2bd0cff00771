package model

// IncomingMessage is one chat request after transport decoding.
type IncomingMessage struct {
	Message        string
	ConversationID string
	// UserID is empty for anonymous callers.
	UserID  string
	Page    *PageContext
	History []Turn
}

// SanitizedQuery is the sanitizer's verdict on a raw message.
type SanitizedQuery struct {
	Text   string
	Valid  bool
	Reason string
}

// Decision is the preflight gate's verdict.
type Decision struct {
	CanProceed   bool
	FallbackText string
	// Fragments are the fragments to ground generation on; may be empty.
	Fragments []Fragment
}
