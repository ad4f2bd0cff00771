// Package sanitize validates and cleans raw chat input before any retrieval
// or generation work is done.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

// Rejection reasons shown to the caller.
const (
	ReasonEmpty     = "Please enter a question."
	ReasonTooLong   = "Your question is too long. Please shorten it."
	ReasonInjection = "Your question contains instructions the assistant can't follow."
	ReasonOffTopic  = "I can only help with tax and personal finance questions."
)

const DefaultMaxLength = 1000

var (
	// Only real tag syntax or comments; a bare < or > is a comparison.
	tagPattern        = regexp.MustCompile(`<!--.*?-->|</?[A-Za-z][A-Za-z0-9-]*(\s[^<>]*)?/?>`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	injectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(ignore|disregard|forget|override)\b.{0,40}\b(previous|prior|above|earlier|all|your|the|system)\b.{0,20}\b(instructions?|prompts?|rules|directions|guidelines)\b`),
		regexp.MustCompile(`(?i)\b(reveal|show|print|repeat|output|leak)\b.{0,30}\b(system|hidden|initial|original)\s+(prompt|instructions?|message)\b`),
		regexp.MustCompile(`(?i)\byou are (now|no longer)\b`),
		regexp.MustCompile(`(?i)\b(act|behave|respond) as (if you were |though you were )?(an? )?(unrestricted|unfiltered|jailbroken|dan)\b`),
		regexp.MustCompile(`(?i)\bjailbreak\b`),
		regexp.MustCompile(`(?i)\bdeveloper mode\b`),
		regexp.MustCompile(`(?i)(^|\s)(system|assistant)\s*:`),
		regexp.MustCompile(`(?i)\bnew instructions?\s*:`),
	}

	offTopicPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(write|generate|create|build)\b.{0,30}\b(malware|virus|ransomware|keylogger|exploit|phishing)\b`),
		regexp.MustCompile(`(?i)\b(write|generate|create)\b.{0,20}\b(a |an )?(poem|song|lyrics|novel|short story|screenplay)\b`),
		regexp.MustCompile(`(?i)\bhow (do|can) i (hack|crack|steal|launder)\b`),
		regexp.MustCompile(`(?i)\b(evade|evading|hide income from|cheat on)\b.{0,20}\b(taxes|tax|cra|irs)\b`),
	}
)

// Sanitizer checks raw input against length and pattern policies.
// It holds only read-only configuration and is safe for concurrent use.
type Sanitizer struct {
	maxLength int
}

// New returns a sanitizer that rejects cleaned input longer than maxLength runes.
// A non-positive maxLength falls back to DefaultMaxLength.
func New(maxLength int) *Sanitizer {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Sanitizer{maxLength: maxLength}
}

// Sanitize cleans raw and returns the verdict. Sanitizing the Text of a valid
// result again returns the same Text.
func (s *Sanitizer) Sanitize(raw string) model.SanitizedQuery {
	// Bound the work done on pathological input before any regex runs.
	if utf8.RuneCountInString(raw) > 4*s.maxLength {
		return reject(ReasonTooLong)
	}

	text := Clean(raw)
	if text == "" {
		return reject(ReasonEmpty)
	}
	if utf8.RuneCountInString(text) > s.maxLength {
		return reject(ReasonTooLong)
	}
	for _, p := range injectionPatterns {
		if p.MatchString(text) {
			return reject(ReasonInjection)
		}
	}
	for _, p := range offTopicPatterns {
		if p.MatchString(text) {
			return reject(ReasonOffTopic)
		}
	}

	return model.SanitizedQuery{Text: text, Valid: true}
}

// Clean strips control characters and markup, collapses whitespace and
// returns the NFC form of the result.
func Clean(raw string) string {
	text := strings.ToValidUTF8(raw, "")
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return ' '
		}
		if unicode.IsControl(r) || r == '\u200b' || r == '\ufeff' {
			return -1
		}
		return r
	}, text)

	for {
		stripped := tagPattern.ReplaceAllString(text, " ")
		if stripped == text {
			break
		}
		text = stripped
	}

	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	return norm.NFC.String(text)
}

func reject(reason string) model.SanitizedQuery {
	return model.SanitizedQuery{Valid: false, Reason: reason}
}
