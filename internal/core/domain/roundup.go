package domain

import "time"

// RoundupKind identifies the period a roundup covers.
type RoundupKind string

// Available roundup kinds.
const (
	RoundupDaily  RoundupKind = "daily"
	RoundupWeekly RoundupKind = "weekly"
)

// IsValid returns true if the roundup kind is recognised.
func (k RoundupKind) IsValid() bool {
	return k == RoundupDaily || k == RoundupWeekly
}

// Roundup is a fixed, period-bounded set of stories presented as a digest.
// Its engagement ranking is computed at read time, never stored.
type Roundup struct {
	// ID is the unique identifier for the roundup.
	ID string

	// TopicID is the topic the roundup summarises.
	TopicID string

	// Kind is daily or weekly.
	Kind RoundupKind

	// PeriodStart is the inclusive start of the covered period.
	PeriodStart time.Time

	// PeriodEnd is the exclusive end of the covered period.
	PeriodEnd time.Time

	// StoryIDs is the fixed story set.
	StoryIDs []string

	// Published is true once the roundup is visible to readers.
	Published bool
}

// InteractionType identifies a reader engagement signal.
type InteractionType string

// Available interaction types.
const (
	InteractionShare InteractionType = "share"
	InteractionSwipe InteractionType = "swipe"
	InteractionView  InteractionType = "view"
	InteractionLike  InteractionType = "like"
)

// IsValid returns true if the interaction type is recognised.
func (t InteractionType) IsValid() bool {
	switch t {
	case InteractionShare, InteractionSwipe, InteractionView, InteractionLike:
		return true
	default:
		return false
	}
}

// Interaction is one engagement event on a story.
type Interaction struct {
	// ID is the unique identifier for the event.
	ID string

	// StoryID is the story the event refers to.
	StoryID string

	// Type is the kind of engagement.
	Type InteractionType

	// CreatedAt is when the event happened.
	CreatedAt time.Time
}

// RankedStory is a story with its computed engagement score.
type RankedStory struct {
	// Story is the ranked story.
	Story Story

	// Score is the weighted engagement score.
	Score float64

	// Shares, Swipes and Views are the raw signal counts.
	Shares int
	Swipes int
	Views  int
}
