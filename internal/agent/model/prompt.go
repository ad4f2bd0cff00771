package model

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

// AssembledPrompt is the single generation request built for one chat turn.
type AssembledPrompt struct {
	Messages []*schema.Message
}

// Text renders the prompt as plain text, one block per message in order.
// Two prompts built from the same inputs render byte-identically.
func (p *AssembledPrompt) Text() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for _, m := range p.Messages {
		if m == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("[")
		b.WriteString(string(m.Role))
		b.WriteString("]\n")
		b.WriteString(m.Content)
	}
	return b.String()
}
