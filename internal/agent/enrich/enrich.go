// Package enrich expands a sanitized query with profile-derived keywords to
// improve retrieval recall. The enriched text is used for retrieval only.
package enrich

import (
	"strings"
	"unicode"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

const DefaultMaxTerms = 6

type Enricher struct {
	maxTerms int
}

func New(maxTerms int) *Enricher {
	if maxTerms <= 0 {
		maxTerms = DefaultMaxTerms
	}
	return &Enricher{maxTerms: maxTerms}
}

// Enrich appends up to maxTerms profile phrases to query. A nil profile
// returns query unchanged. The result depends only on the arguments.
func (e *Enricher) Enrich(query string, p *model.UserProfile) string {
	if p == nil {
		return query
	}

	seen := make(map[string]struct{})
	for _, w := range words(query) {
		seen[w] = struct{}{}
	}

	var added []string
	for _, term := range Terms(p) {
		if len(added) >= e.maxTerms {
			break
		}
		tw := words(term)
		if len(tw) == 0 || covered(seen, tw) {
			continue
		}
		added = append(added, term)
		for _, w := range tw {
			seen[w] = struct{}{}
		}
	}

	if len(added) == 0 {
		return query
	}
	return strings.TrimSpace(query + " " + strings.Join(added, " "))
}

// Terms lists the profile phrases in enrichment order: province, employment,
// dependents, marital status, life situation flags, then held accounts.
func Terms(p *model.UserProfile) []string {
	if p == nil {
		return nil
	}

	var terms []string
	if name := model.ProvinceName(p.Province); name != "" {
		terms = append(terms, name)
	}
	if label := p.Employment.Label(); label != "" {
		terms = append(terms, label)
	}
	if p.Dependents > 0 {
		terms = append(terms, "dependents")
	}
	if p.Married {
		terms = append(terms, "spouse")
	}
	if p.FirstTimeHomeBuyer {
		terms = append(terms, "first-time home buyer")
	}
	if p.Student {
		terms = append(terms, "student")
	}
	if p.Retired {
		terms = append(terms, "retirement")
	}
	if p.Disability {
		terms = append(terms, "disability tax credit")
	}
	for _, a := range p.SortedAccounts() {
		terms = append(terms, string(a))
	}
	return terms
}

// covered reports whether every word of a phrase already appears.
func covered(seen map[string]struct{}, phrase []string) bool {
	for _, w := range phrase {
		if _, ok := seen[w]; !ok {
			return false
		}
	}
	return true
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}
