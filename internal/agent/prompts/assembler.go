// Package prompts assembles the generation request for one chat turn.
package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/conversations"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

//go:embed template/system_prompt.txt
var coreSystemPrompt string

const DefaultMaxHistoryTurns = 10

// Request is everything that goes into one assembled prompt.
type Request struct {
	Query     string
	Profile   *model.UserProfile
	Page      *model.PageContext
	Fragments []model.Fragment
	History   []model.Turn
}

// Assembler renders prompts. It holds only read-only configuration.
type Assembler struct {
	config          model.PromptConfig
	maxHistoryTurns int
	template        prompt.ChatTemplate
}

func NewAssembler(config model.PromptConfig, maxHistoryTurns int) *Assembler {
	if maxHistoryTurns <= 0 {
		maxHistoryTurns = DefaultMaxHistoryTurns
	}
	return &Assembler{
		config:          config,
		maxHistoryTurns: maxHistoryTurns,
		template: prompt.FromMessages(
			schema.GoTemplate,
			schema.SystemMessage(coreSystemPrompt),
			schema.MessagesPlaceholder("history", true),
			schema.UserMessage("{{.query}}"),
		),
	}
}

// Assemble builds the prompt in a fixed order: instructions, page context,
// user profile, knowledge fragments, trimmed history, then the query.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*model.AssembledPrompt, error) {
	history := conversations.TrimTail(req.History, a.maxHistoryTurns)
	historyMsgs := make([]*schema.Message, 0, len(history))
	for _, t := range history {
		historyMsgs = append(historyMsgs, t.ToMessage())
	}

	vars := map[string]any{
		"assistant_name": a.config.AssistantName,
		"site_name":      a.config.SiteName,
		"context":        RenderContext(req),
		"history":        historyMsgs,
		"query":          req.Query,
	}
	msgs, err := a.template.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("prompt render: empty result")
	}
	return &model.AssembledPrompt{Messages: msgs}, nil
}

// RenderContext renders the grounding sections appended to the instructions.
func RenderContext(req Request) string {
	var b strings.Builder
	b.WriteString(renderPage(req.Page))
	b.WriteString(renderProfile(req.Profile))
	b.WriteString(renderFragments(req.Fragments))
	return b.String()
}
