package model

import (
	"math"
	"sort"
	"strings"
)

// Fragment is one ranked piece of knowledge base text.
type Fragment struct {
	Text          string  `json:"text"`
	Score         float64 `json:"score"`
	SourceTitle   string  `json:"sourceTitle"`
	SourceLocator string  `json:"sourceLocator"`
	SourceKind    string  `json:"sourceKind"`
}

// RankFragments clamps scores to [0,1], drops empty fragments and orders the
// rest by descending score. Ties keep their original order.
func RankFragments(in []Fragment) []Fragment {
	out := make([]Fragment, 0, len(in))
	for _, f := range in {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		f.Score = clampScore(f.Score)
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// BestScore returns the highest score, 0 for an empty list.
func BestScore(fragments []Fragment) float64 {
	best := 0.0
	for _, f := range fragments {
		if f.Score > best {
			best = f.Score
		}
	}
	return best
}

func clampScore(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
