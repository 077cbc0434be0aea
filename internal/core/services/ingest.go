package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
	"github.com/custodia-labs/storyfeed/internal/logger"
)

// Verify interface compliance.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService validates upstream records and persists them.
// Invalid records are skipped and reported in the summary; a storage
// failure aborts the import.
type IngestService struct {
	writer driven.StoryWriter
	now    func() time.Time
}

// NewIngestService creates an ingest service.
func NewIngestService(writer driven.StoryWriter) *IngestService {
	return &IngestService{writer: writer, now: time.Now}
}

// Ingest stores a batch. Topics are written first so stories, cards and
// roundups can reference them.
func (s *IngestService) Ingest(ctx context.Context, batch domain.IngestBatch) (domain.IngestSummary, error) {
	var summary domain.IngestSummary
	reject := func(format string, args ...any) {
		reason := fmt.Sprintf(format, args...)
		summary.Rejected = append(summary.Rejected, reason)
		logger.Warn("ingest: %s", reason)
	}

	for i := range batch.Topics {
		topic := batch.Topics[i]
		if strings.TrimSpace(topic.ID) == "" {
			reject("topic %q: missing id", topic.Name)
			continue
		}
		if topic.Slug == "" {
			topic.Slug = slugify(topic.Name)
		}
		if err := s.writer.SaveTopic(ctx, topic); err != nil {
			return summary, fmt.Errorf("save topic %s: %w", topic.ID, err)
		}
		summary.Topics++
	}

	for i := range batch.Stories {
		story := batch.Stories[i]
		if err := s.prepareStory(&story); err != nil {
			reject("%v", err)
			continue
		}
		if err := s.writer.SaveStory(ctx, story); err != nil {
			return summary, fmt.Errorf("save story %s: %w", story.ID, err)
		}
		summary.Stories++
	}

	for i := range batch.Cards {
		card := batch.Cards[i]
		if !card.Type.IsValid() {
			reject("card %q: %v %q", card.ID, domain.ErrUnsupportedType, card.Type)
			continue
		}
		if card.TopicID == "" {
			reject("card %q: missing topic", card.ID)
			continue
		}
		if card.ID == "" {
			card.ID = uuid.NewString()
		}
		if card.CreatedAt.IsZero() {
			card.CreatedAt = s.now()
		}
		if err := s.writer.SaveCard(ctx, card); err != nil {
			return summary, fmt.Errorf("save card %s: %w", card.ID, err)
		}
		summary.Cards++
	}

	for i := range batch.Roundups {
		roundup := batch.Roundups[i]
		switch {
		case roundup.ID == "":
			reject("roundup for %q: missing id", roundup.TopicID)
			continue
		case !roundup.Kind.IsValid():
			reject("roundup %s: %v %q", roundup.ID, domain.ErrUnsupportedType, roundup.Kind)
			continue
		case !roundup.PeriodEnd.IsZero() && roundup.PeriodEnd.Before(roundup.PeriodStart):
			reject("roundup %s: period ends before it starts", roundup.ID)
			continue
		}
		if err := s.writer.SaveRoundup(ctx, roundup); err != nil {
			return summary, fmt.Errorf("save roundup %s: %w", roundup.ID, err)
		}
		summary.Roundups++
	}

	for i := range batch.Interactions {
		in := batch.Interactions[i]
		if in.StoryID == "" {
			reject("interaction %q: missing story", in.ID)
			continue
		}
		if !in.Type.IsValid() {
			reject("interaction on %s: %v %q", in.StoryID, domain.ErrUnsupportedType, in.Type)
			continue
		}
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		if in.CreatedAt.IsZero() {
			in.CreatedAt = s.now()
		}
		if err := s.writer.RecordInteraction(ctx, in); err != nil {
			return summary, fmt.Errorf("record interaction %s: %w", in.ID, err)
		}
		summary.Interactions++
	}

	logger.Info("ingested %d topics, %d stories, %d cards, %d roundups, %d interactions (%d rejected)",
		summary.Topics, summary.Stories, summary.Cards, summary.Roundups, summary.Interactions, len(summary.Rejected))
	return summary, nil
}

// prepareStory validates a story and normalises its slides in place.
func (s *IngestService) prepareStory(story *domain.Story) error {
	if strings.TrimSpace(story.ID) == "" {
		return fmt.Errorf("story %q: missing id: %w", story.Title, domain.ErrInvalidInput)
	}
	if story.TopicID == "" {
		return fmt.Errorf("story %s: missing topic: %w", story.ID, domain.ErrInvalidInput)
	}
	if story.Kind == "" {
		story.Kind = domain.StoryKindArticle
	}
	if !story.Kind.IsValid() {
		return fmt.Errorf("story %s: kind %q: %w", story.ID, story.Kind, domain.ErrUnsupportedType)
	}
	if story.CreatedAt.IsZero() {
		story.CreatedAt = s.now()
	}

	sort.SliceStable(story.Slides, func(i, j int) bool {
		return story.Slides[i].Position < story.Slides[j].Position
	})
	for i := range story.Slides {
		story.Slides[i].Position = i
		if story.Slides[i].ID == "" {
			story.Slides[i].ID = fmt.Sprintf("%s-%d", story.ID, i)
		}
	}
	return nil
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
