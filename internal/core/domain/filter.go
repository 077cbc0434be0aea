package domain

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// FilterState holds the user's selected facet values.
// Union semantics within a facet, AND semantics across non-empty facets.
type FilterState struct {
	// Keywords are selected keyword values.
	Keywords []string

	// Landmarks are selected landmark values.
	Landmarks []string

	// Organizations are selected organisation values.
	Organizations []string

	// Sources are selected source domains.
	Sources []string

	// Substring lists selected text-facet values that match by plain
	// containment instead of on word boundaries.
	Substring []FacetMatch `json:",omitempty"`
}

// Values returns the selected values for a facet.
func (f FilterState) Values(facet FacetType) []string {
	switch facet {
	case FacetKeyword:
		return f.Keywords
	case FacetLandmark:
		return f.Landmarks
	case FacetOrganization:
		return f.Organizations
	case FacetSource:
		return f.Sources
	default:
		return nil
	}
}

// IsEmpty reports whether no facet value is selected.
func (f FilterState) IsEmpty() bool {
	return len(f.Keywords) == 0 && len(f.Landmarks) == 0 &&
		len(f.Organizations) == 0 && len(f.Sources) == 0
}

// Matches reports whether a story passes the filter: for every non-empty
// facet, at least one selected value must match.
func (f FilterState) Matches(story *Story) bool {
	if f.IsEmpty() {
		return true
	}

	var text string
	for _, facet := range FacetTypes() {
		values := f.Values(facet)
		if len(values) == 0 {
			continue
		}
		if facet != FacetSource && text == "" {
			text = story.Text()
		}
		if !f.anyValueMatches(story, text, facet, values) {
			return false
		}
	}
	return true
}

// IsSubstring reports whether a selected value of facet matches by plain
// containment.
func (f FilterState) IsSubstring(facet FacetType, value string) bool {
	value = strings.TrimSpace(value)
	for _, m := range f.Substring {
		if m.Facet == facet && strings.EqualFold(m.Value, value) {
			return true
		}
	}
	return false
}

func (f FilterState) anyValueMatches(story *Story, text string, facet FacetType, values []string) bool {
	if facet == FacetSource {
		domain, err := story.SourceDomain()
		if err != nil {
			return false
		}
		for _, v := range values {
			if strings.EqualFold(domain, strings.TrimPrefix(strings.ToLower(v), "www.")) {
				return true
			}
		}
		return false
	}

	for _, v := range values {
		if ContainsWord(text, v) {
			return true
		}
		if f.IsSubstring(facet, v) && containsFold(text, v) {
			return true
		}
	}
	return false
}

func containsFold(text, value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value != "" && strings.Contains(strings.ToLower(text), value)
}

// Signature returns the sorted, lower-cased, "|"-joined concatenation of
// every selected value. Values matched by containment carry a "~" suffix.
// Used as the prefetch cache key.
func (f FilterState) Signature() string {
	var all []string
	for _, facet := range FacetTypes() {
		for _, v := range f.Values(facet) {
			key := strings.ToLower(strings.TrimSpace(v))
			if f.IsSubstring(facet, v) {
				key += "~"
			}
			all = append(all, key)
		}
	}
	sort.Strings(all)
	return strings.Join(all, "|")
}

// wordPatterns caches compiled word-boundary patterns keyed by value.
var wordPatterns sync.Map

// WordPattern returns the case-insensitive word-boundary pattern for value.
func WordPattern(value string) *regexp.Regexp {
	if re, ok := wordPatterns.Load(value); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(value) + `\b`)
	wordPatterns.Store(value, re)
	return re
}

// ContainsWord reports whether value occurs in text on word boundaries,
// ignoring case.
func ContainsWord(text, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	return WordPattern(value).MatchString(text)
}
