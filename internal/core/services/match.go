package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// FacetCandidate is one topic-configured value a story can be matched against.
type FacetCandidate struct {
	// Facet is the value's dimension.
	Facet domain.FacetType

	// Value is the value as configured on the topic.
	Value string

	lower   string
	pattern *regexp.Regexp
}

// NewFacetCandidate prepares a candidate, compiling its word-boundary pattern.
func NewFacetCandidate(facet domain.FacetType, value string) FacetCandidate {
	value = strings.TrimSpace(value)
	return FacetCandidate{
		Facet:   facet,
		Value:   value,
		lower:   strings.ToLower(value),
		pattern: domain.WordPattern(value),
	}
}

// MatchStrategy finds facet candidates in lower-cased story text.
// Implementations return at most limit matches, in candidate order.
type MatchStrategy interface {
	Match(text string, candidates []FacetCandidate, limit int) []domain.FacetMatch
}

// WordBoundaryStrategy matches a candidate only where it occurs as a whole word.
type WordBoundaryStrategy struct{}

// Match implements MatchStrategy.
func (WordBoundaryStrategy) Match(text string, candidates []FacetCandidate, limit int) []domain.FacetMatch {
	return collect(candidates, limit, func(c FacetCandidate) bool {
		return c.pattern.MatchString(text)
	})
}

// SubstringStrategy matches a candidate anywhere in the text.
type SubstringStrategy struct{}

// Match implements MatchStrategy.
func (SubstringStrategy) Match(text string, candidates []FacetCandidate, limit int) []domain.FacetMatch {
	matches := collect(candidates, limit, func(c FacetCandidate) bool {
		return strings.Contains(text, c.lower)
	})
	for i := range matches {
		matches[i].Substring = true
	}
	return matches
}

// TwoPassStrategy runs Precise first and falls back to Fallback only when
// Precise found fewer than limit matches. Values already matched are skipped
// by the second pass.
type TwoPassStrategy struct {
	Precise  MatchStrategy
	Fallback MatchStrategy
}

// DefaultMatchStrategy returns word-boundary matching with a substring fallback.
func DefaultMatchStrategy() MatchStrategy {
	return TwoPassStrategy{
		Precise:  WordBoundaryStrategy{},
		Fallback: SubstringStrategy{},
	}
}

// Match implements MatchStrategy.
func (s TwoPassStrategy) Match(text string, candidates []FacetCandidate, limit int) []domain.FacetMatch {
	matches := s.Precise.Match(text, candidates, limit)
	if len(matches) >= limit || s.Fallback == nil {
		return matches
	}

	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		seen[strings.ToLower(m.Value)] = true
	}
	remaining := make([]FacetCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !seen[c.lower] {
			remaining = append(remaining, c)
		}
	}

	return append(matches, s.Fallback.Match(text, remaining, limit-len(matches))...)
}

// collect walks candidates in order and keeps those accepted by hit,
// skipping values (case-insensitive) that were already kept.
func collect(candidates []FacetCandidate, limit int, hit func(FacetCandidate) bool) []domain.FacetMatch {
	if limit <= 0 {
		return nil
	}

	seen := make(map[string]bool)

	var matches []domain.FacetMatch
	for _, c := range candidates {
		if c.lower == "" || seen[c.lower] {
			continue
		}
		if !hit(c) {
			continue
		}
		seen[c.lower] = true
		matches = append(matches, domain.FacetMatch{Facet: c.Facet, Value: c.Value})
		if len(matches) >= limit {
			break
		}
	}
	return matches
}
