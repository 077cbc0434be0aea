package domain

import "strings"

// FacetType identifies one of the four filterable dimensions of a feed.
type FacetType string

// Available facet types.
const (
	// FacetKeyword matches topic-configured keywords in story text.
	FacetKeyword FacetType = "keyword"

	// FacetLandmark matches topic-configured landmarks (places, venues).
	FacetLandmark FacetType = "landmark"

	// FacetOrganization matches topic-configured organisations.
	FacetOrganization FacetType = "organization"

	// FacetSource matches the domain of a story's source URL.
	FacetSource FacetType = "source"
)

// FacetTypes lists every facet type in display order.
func FacetTypes() []FacetType {
	return []FacetType{FacetKeyword, FacetLandmark, FacetOrganization, FacetSource}
}

// IsValid returns true if the facet type is recognised.
func (f FacetType) IsValid() bool {
	switch f {
	case FacetKeyword, FacetLandmark, FacetOrganization, FacetSource:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f FacetType) String() string {
	return string(f)
}

// Topic is a feed scope: its identity, display metadata, facet lists and
// side-content configuration. A topic is immutable for the duration of a
// feed session and refetched on navigation.
type Topic struct {
	// ID is the unique identifier for the topic.
	ID string

	// Slug is the URL-friendly name.
	Slug string

	// Name is the display name. Facet values equal to it are never matched.
	Name string

	// Description is optional display copy.
	Description string

	// Keywords are free-text terms associated with the topic.
	Keywords []string

	// Landmarks are named places associated with the topic.
	Landmarks []string

	// Organizations are named bodies associated with the topic.
	Organizations []string

	// SideContent configures which side cards the topic shows and how often.
	SideContent SideContentConfig
}

// FacetValues returns the configured values for a text facet.
// The source facet has no configured values; it is derived from loaded stories.
func (t *Topic) FacetValues(facet FacetType) []string {
	switch facet {
	case FacetKeyword:
		return t.Keywords
	case FacetLandmark:
		return t.Landmarks
	case FacetOrganization:
		return t.Organizations
	default:
		return nil
	}
}

// IsOwnName reports whether value is the topic's own display name.
func (t *Topic) IsOwnName(value string) bool {
	return t.Name != "" && strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(t.Name))
}

// SideContentConfig holds per-topic side-content switches.
// A nil Disabled map means every card type is enabled.
type SideContentConfig struct {
	// Disabled lists card types the topic has switched off.
	Disabled map[CardType]bool

	// Cadence overrides the slot table's EveryN for a card type
	// (e.g. community pulse every 10 stories instead of the default).
	Cadence map[CardType]int
}

// IsEnabled reports whether the card type is enabled for the topic.
func (c SideContentConfig) IsEnabled(card CardType) bool {
	return !c.Disabled[card]
}

// CadenceFor returns the cadence override for the card type, or 0 if none.
func (c SideContentConfig) CadenceFor(card CardType) int {
	if c.Cadence == nil {
		return 0
	}
	return c.Cadence[card]
}
