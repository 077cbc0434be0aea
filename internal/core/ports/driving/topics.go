package driving

import (
	"context"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// TopicService lists and resolves topics.
type TopicService interface {
	// List returns all topics.
	List(ctx context.Context) ([]domain.Topic, error)

	// Get returns a topic by ID or slug.
	Get(ctx context.Context, id string) (*domain.Topic, error)
}

// SlotDiagnostics exposes the slot table for inspection.
type SlotDiagnostics interface {
	// Rules returns the slot table in evaluation order.
	Rules() []domain.SlotRule

	// CollisionReport simulates story indices [0, n) and returns every index
	// claimed by more than one card type.
	CollisionReport(n int) []domain.SlotCollision
}
