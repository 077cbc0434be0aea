package driven

import (
	"context"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// StoryWriter persists upstream content for the ingest path.
type StoryWriter interface {
	// SaveTopic stores or updates a topic.
	SaveTopic(ctx context.Context, topic domain.Topic) error

	// SaveStory stores or updates a story and replaces its slides.
	SaveStory(ctx context.Context, story domain.Story) error

	// SaveCard stores or updates a side card.
	SaveCard(ctx context.Context, card domain.SideCard) error

	// SaveRoundup stores or updates a roundup and its story list.
	SaveRoundup(ctx context.Context, roundup domain.Roundup) error

	// RecordInteraction appends an interaction event.
	RecordInteraction(ctx context.Context, interaction domain.Interaction) error
}
