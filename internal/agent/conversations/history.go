package conversations

import (
	"encoding/json"
	"strings"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

// FilterHistory keeps the well-shaped {role, content} entries of an
// arbitrary decoded list, in order. Anything else is dropped. It never
// panics and filtering its own output returns the same turns.
func FilterHistory(entries []any) []model.Turn {
	turns := make([]model.Turn, 0, len(entries))
	for _, e := range entries {
		if t, ok := toTurn(e); ok {
			turns = append(turns, t)
		}
	}
	return turns
}

// FilterTurns applies the same shape rules to already typed turns.
func FilterTurns(turns []model.Turn) []model.Turn {
	out := make([]model.Turn, 0, len(turns))
	for _, t := range turns {
		if validTurn(t) {
			out = append(out, t)
		}
	}
	return out
}

func validTurn(t model.Turn) bool {
	_, ok := checkTurn(string(t.Role), t.Content)
	return ok
}

// DecodeHistory filters a raw JSON conversation history. Input that is not a
// JSON array yields no turns.
func DecodeHistory(raw json.RawMessage) []model.Turn {
	if len(raw) == 0 {
		return nil
	}
	var entries []any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return FilterHistory(entries)
}

func toTurn(e any) (model.Turn, bool) {
	switch v := e.(type) {
	case model.Turn:
		return checkTurn(string(v.Role), v.Content)
	case *model.Turn:
		if v == nil {
			return model.Turn{}, false
		}
		return checkTurn(string(v.Role), v.Content)
	case map[string]any:
		role, ok := v["role"].(string)
		if !ok {
			return model.Turn{}, false
		}
		content, ok := v["content"].(string)
		if !ok {
			return model.Turn{}, false
		}
		return checkTurn(role, content)
	default:
		return model.Turn{}, false
	}
}

func checkTurn(role, content string) (model.Turn, bool) {
	if strings.TrimSpace(content) == "" {
		return model.Turn{}, false
	}
	switch model.Role(role) {
	case model.RoleUser, model.RoleAssistant:
		return model.Turn{Role: model.Role(role), Content: content}, true
	default:
		return model.Turn{}, false
	}
}

// TrimTail returns a copy of the last max items, oldest first.
func TrimTail[T any](items []T, max int) []T {
	if max < 0 {
		max = 0
	}
	source := items
	if len(items) > max {
		source = items[len(items)-max:]
	}
	result := make([]T, len(source))
	copy(result, source)
	return result
}
