package preflight

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

func frags(scores ...float64) []model.Fragment {
	out := make([]model.Fragment, 0, len(scores))
	for _, s := range scores {
		out = append(out, model.Fragment{Text: "fragment", Score: s})
	}
	return out
}

func TestGateDecide(t *testing.T) {
	g := New(0.5)

	tests := []struct {
		name          string
		in            Input
		wantProceed   bool
		wantFragments int
		wantFallback  bool
	}{
		{"no fragments no page", Input{Query: "q"}, false, 0, true},
		{"low scores no page", Input{Query: "tell me a joke", Fragments: frags(0.1, 0.1)}, false, 0, true},
		{"low scores with page", Input{Query: "q", Fragments: frags(0.2), HasPageContext: true}, true, 0, false},
		{"no fragments with page", Input{Query: "q", HasPageContext: true}, true, 0, false},
		{"at threshold", Input{Query: "q", Fragments: frags(0.5, 0.1)}, true, 2, false},
		{"good scores with page", Input{Query: "q", Fragments: frags(0.9, 0.7, 0.3), HasPageContext: true}, true, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Decide(tt.in)
			assert.Equal(t, tt.wantProceed, d.CanProceed)
			assert.Len(t, d.Fragments, tt.wantFragments)
			if tt.wantFallback {
				assert.Equal(t, FallbackText, d.FallbackText)
			} else {
				assert.Empty(t, d.FallbackText)
			}
		})
	}
}

func TestGateNeverShortCircuitsWithPage(t *testing.T) {
	g := New(0.9)
	for _, s := range []float64{0, 0.1, 0.5, 0.89, 0.95, 1} {
		d := g.Decide(Input{Query: "q", Fragments: frags(s), HasPageContext: true})
		assert.True(t, d.CanProceed, "score %v", s)
	}
}

func TestNewThresholdDefault(t *testing.T) {
	assert.Equal(t, DefaultThreshold, New(0).Threshold())
	assert.Equal(t, DefaultThreshold, New(1.5).Threshold())
	assert.Equal(t, 0.3, New(0.3).Threshold())
}
