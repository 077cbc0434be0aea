package domain

// SlotRule assigns a card type to every EveryN-th story position, shifted by
// Offset. The card shows at StoryIndex = EveryN*k + Offset for k >= 1.
type SlotRule struct {
	// Card is the side-content type the rule places.
	Card CardType

	// EveryN is the cadence in stories.
	EveryN int

	// Offset shifts the cadence; must be in [0, EveryN).
	Offset int
}

// MaxSlotSpan bounds the story indices a collision report simulates.
const MaxSlotSpan = 10000

// SlotCollision records a story index claimed by more than one card type.
type SlotCollision struct {
	// StoryIndex is the contested position.
	StoryIndex int

	// Cards are the card types that claim it, in table order.
	Cards []CardType
}
