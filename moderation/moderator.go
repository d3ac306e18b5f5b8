package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// ContentFilter rewrites user supplied content before it is persisted.
type ContentFilter interface {
	Filter(content string) string
}

// Passthrough is the filter used when no dictionary is configured.
type Passthrough struct{}

func (Passthrough) Filter(content string) string { return content }

// Moderator masks dictionary words with a replacement rune. Matching ignores
// case, punctuation, spacing and common leet substitutions, while the masked
// output keeps the original layout.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
	log         *slog.Logger
}

// textMapping links every normalized rune to its index in the original text.
type textMapping struct {
	normalized []rune
	origIdx    []int
}

func NewModerator(words []string, replacement rune, log *slog.Logger) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if p := normalize(word).normalized; len(p) > 0 {
			patterns = append(patterns, p)
		}
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement, log: log}, nil
}

func (m *Moderator) Filter(content string) string {
	censored, matched := m.Censor(content)
	if len(matched) > 0 {
		m.log.Debug("Content censored", "matches", len(matched))
	}
	return censored
}

// Censor returns the masked text and the dictionary words found in it.
func (m *Moderator) Censor(original string) (string, []string) {
	mapping := normalize(original)
	if len(mapping.normalized) == 0 {
		return original, nil
	}
	spans := m.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	runes := []rune(original)
	matched := make([]string, 0, len(spans))
	for _, span := range spans {
		start, end := span.Pos, span.Pos+len(span.Word)
		if start < 0 || end > len(mapping.origIdx) {
			continue
		}
		for i := mapping.origIdx[start]; i <= mapping.origIdx[end-1]; i++ {
			runes[i] = m.replacement
		}
		matched = append(matched, string(span.Word))
	}
	return string(runes), matched
}

func normalize(input string) textMapping {
	runes := []rune(input)
	out := textMapping{
		normalized: make([]rune, 0, len(runes)),
		origIdx:    make([]int, 0, len(runes)),
	}
	for i, r := range runes {
		clean := unleet(r)
		if unicode.IsPunct(clean) || unicode.IsSpace(clean) || unicode.IsSymbol(clean) {
			continue
		}
		out.normalized = append(out.normalized, unicode.ToLower(clean))
		out.origIdx = append(out.origIdx, i)
	}
	return out
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
