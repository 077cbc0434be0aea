package driving

import "github.com/custodia-labs/storyfeed/internal/core/domain"

// SettingsService manages feed settings.
type SettingsService interface {
	// Get retrieves current feed settings, with defaults for unset keys.
	Get() (domain.FeedSettings, error)

	// Set parses and stores a single setting.
	Set(key, value string) error

	// Keys returns the recognised setting keys.
	Keys() []string
}
