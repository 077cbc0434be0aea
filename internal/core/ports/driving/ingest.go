package driving

import (
	"context"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// IngestService validates and persists upstream records.
type IngestService interface {
	// Ingest stores a batch, skipping invalid records.
	Ingest(ctx context.Context, batch domain.IngestBatch) (domain.IngestSummary, error)
}
