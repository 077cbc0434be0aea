package driven

import "github.com/custodia-labs/storyfeed/internal/core/domain"

// PageCache stores prefetched first pages keyed by facet-value signature.
// It is best-effort: Set may drop entries and Get may miss at any time.
type PageCache interface {
	// Get returns the cached page for key.
	Get(key string) (domain.StoryPage, bool)

	// Set stores page under key.
	Set(key string, page domain.StoryPage)
}
