package driven

import (
	"context"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// SideContentSource provides the cards of a single side-content type.
// Each source fails independently; zero cards is a valid, silent state.
type SideContentSource interface {
	// CardType returns the type of cards this source produces.
	CardType() domain.CardType

	// FetchCards returns the topic's available cards of this type.
	FetchCards(ctx context.Context, topicID string) ([]domain.SideCard, error)
}
