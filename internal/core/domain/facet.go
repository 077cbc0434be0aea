package domain

import (
	"slices"
	"strings"
)

// FacetMatch is one facet value found in a story's text.
type FacetMatch struct {
	// Facet is the value's dimension.
	Facet FacetType

	// Value is the topic-configured value as written in the topic.
	Value string

	// Substring is set when the value was only found by plain containment,
	// not on word boundaries.
	Substring bool
}

// FacetCount is a facet value with the number of loaded stories containing it.
type FacetCount struct {
	// Value is the facet value.
	Value string

	// Count is the number of loaded stories the value occurs in.
	Count int
}

// FilterStateFromMatches builds the filter state that selects every match.
// A value repeated within a facet is kept once.
func FilterStateFromMatches(matches []FacetMatch) FilterState {
	var f FilterState
	for _, m := range matches {
		if slices.ContainsFunc(f.Values(m.Facet), func(v string) bool { return strings.EqualFold(v, m.Value) }) {
			continue
		}
		switch m.Facet {
		case FacetKeyword:
			f.Keywords = append(f.Keywords, m.Value)
		case FacetLandmark:
			f.Landmarks = append(f.Landmarks, m.Value)
		case FacetOrganization:
			f.Organizations = append(f.Organizations, m.Value)
		case FacetSource:
			f.Sources = append(f.Sources, m.Value)
			continue
		}
		if m.Substring {
			f.Substring = append(f.Substring, FacetMatch{Facet: m.Facet, Value: m.Value, Substring: true})
		}
	}
	return f
}
