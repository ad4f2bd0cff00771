// Package preflight decides whether retrieved context is sufficient to attempt
// generation or whether the request is answered with a canned fallback.
package preflight

import (
	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

// FallbackText is sent instead of a generated answer when nothing grounds it.
const FallbackText = "I couldn't find relevant information on that. Try rephrasing your question, or ask about a specific tax topic such as RRSPs, TFSAs, deductions or filing deadlines."

const DefaultThreshold = 0.5

// Input is everything the gate looks at. Query and Profile are carried for
// logging and future policies; the decision depends on scores and page presence.
type Input struct {
	Query          string
	Profile        *model.UserProfile
	Fragments      []model.Fragment
	HasPageContext bool
}

type Gate struct {
	threshold float64
}

// New returns a gate with the given sufficiency threshold. Values outside
// (0,1] fall back to DefaultThreshold.
func New(threshold float64) *Gate {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Gate{threshold: threshold}
}

func (g *Gate) Threshold() float64 { return g.threshold }

// Decide returns PROCEED or SHORT_CIRCUIT:
//   - best score below threshold, no page context: short circuit with FallbackText
//   - best score below threshold, page context present: proceed without fragments
//   - otherwise: proceed with the fragments as given
func (g *Gate) Decide(in Input) model.Decision {
	if model.BestScore(in.Fragments) >= g.threshold {
		return model.Decision{CanProceed: true, Fragments: in.Fragments}
	}
	if in.HasPageContext {
		return model.Decision{CanProceed: true, Fragments: []model.Fragment{}}
	}
	return model.Decision{CanProceed: false, FallbackText: FallbackText}
}
