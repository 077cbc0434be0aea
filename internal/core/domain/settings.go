package domain

import "time"

// FeedSettings holds the tunables of the feed engine.
type FeedSettings struct {
	// PageSize is the number of stories requested per page.
	PageSize int

	// MaxRetries bounds manual retries of a failed page.
	MaxRetries int

	// Sort is the stream direction.
	Sort SortOrder

	// FreshnessInterval is the time between periodic freshness checks.
	FreshnessInterval time.Duration

	// FreshnessBurst is the number of freshness checks allowed back to back
	// (reconnect storms are throttled beyond it).
	FreshnessBurst int

	// PrefetchEnabled turns "more like this" prefetching on or off.
	PrefetchEnabled bool

	// PrefetchCacheEntries bounds the prefetch page cache.
	PrefetchCacheEntries int
}

// DefaultFeedSettings returns the default feed settings.
func DefaultFeedSettings() FeedSettings {
	return FeedSettings{
		PageSize:             20,
		MaxRetries:           3,
		Sort:                 SortNewest,
		FreshnessInterval:    time.Minute,
		FreshnessBurst:       1,
		PrefetchEnabled:      true,
		PrefetchCacheEntries: 256,
	}
}

// Normalised returns a copy with invalid values replaced by defaults.
func (s FeedSettings) Normalised() FeedSettings {
	d := DefaultFeedSettings()
	if s.PageSize <= 0 {
		s.PageSize = d.PageSize
	}
	if s.MaxRetries <= 0 {
		s.MaxRetries = d.MaxRetries
	}
	if !s.Sort.IsValid() {
		s.Sort = d.Sort
	}
	if s.FreshnessInterval <= 0 {
		s.FreshnessInterval = d.FreshnessInterval
	}
	if s.FreshnessBurst <= 0 {
		s.FreshnessBurst = d.FreshnessBurst
	}
	if s.PrefetchCacheEntries <= 0 {
		s.PrefetchCacheEntries = d.PrefetchCacheEntries
	}
	return s
}
