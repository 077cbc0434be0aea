package domain

import "time"

// CardType identifies a kind of side content.
type CardType string

// Available card types.
const (
	CardSentiment           CardType = "sentiment"
	CardQuiz                CardType = "quiz"
	CardInsight             CardType = "insight"
	CardEvents              CardType = "events"
	CardCommunityPulse      CardType = "community_pulse"
	CardParliamentaryDigest CardType = "parliamentary_digest"
	CardFlashback           CardType = "flashback"
)

// CardTypes lists every card type.
func CardTypes() []CardType {
	return []CardType{
		CardSentiment,
		CardQuiz,
		CardInsight,
		CardEvents,
		CardCommunityPulse,
		CardParliamentaryDigest,
		CardFlashback,
	}
}

// IsValid returns true if the card type is recognised.
func (c CardType) IsValid() bool {
	switch c {
	case CardSentiment, CardQuiz, CardInsight, CardEvents,
		CardCommunityPulse, CardParliamentaryDigest, CardFlashback:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c CardType) String() string {
	return string(c)
}

// SideCard is one unit of side content. Cards are generated upstream,
// independently per card type; zero cards of a type is a valid state.
type SideCard struct {
	// ID is the unique identifier for the card.
	ID string

	// TopicID is the topic the card belongs to.
	TopicID string

	// Type is the card's side-content type.
	Type CardType

	// Title is the card headline.
	Title string

	// Body is the card text.
	Body string

	// CreatedAt is when the card was generated.
	CreatedAt time.Time

	// Attributes holds type-specific fields (quiz options, sentiment score, ...).
	Attributes map[string]string
}
