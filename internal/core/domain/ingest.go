package domain

// IngestBatch is a set of upstream records to persist in one import.
type IngestBatch struct {
	Topics       []Topic
	Stories      []Story
	Cards        []SideCard
	Roundups     []Roundup
	Interactions []Interaction
}

// IsEmpty reports whether the batch carries no records.
func (b IngestBatch) IsEmpty() bool {
	return len(b.Topics) == 0 && len(b.Stories) == 0 && len(b.Cards) == 0 &&
		len(b.Roundups) == 0 && len(b.Interactions) == 0
}

// IngestSummary counts what an import persisted and rejected.
type IngestSummary struct {
	Topics       int
	Stories      int
	Cards        int
	Roundups     int
	Interactions int

	// Rejected lists human-readable reasons for skipped records.
	Rejected []string
}

// RankedRoundup is a roundup with its stories ordered by engagement.
type RankedRoundup struct {
	Roundup Roundup
	Stories []RankedStory
}
