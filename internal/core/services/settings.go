package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyPageSize          = "feed.page_size"
	keyMaxRetries        = "feed.max_retries"
	keySort              = "feed.sort"
	keyFreshnessInterval = "freshness.interval_seconds"
	keyFreshnessBurst    = "freshness.burst"
	keyPrefetchEnabled   = "prefetch.enabled"
	keyPrefetchEntries   = "prefetch.cache_entries"
)

type settingKind int

const (
	kindInt settingKind = iota
	kindBool
	kindSort
)

// settingKinds lists the recognised keys in display order.
var settingKinds = []struct {
	key  string
	kind settingKind
}{
	{keyPageSize, kindInt},
	{keyMaxRetries, kindInt},
	{keySort, kindSort},
	{keyFreshnessInterval, kindInt},
	{keyFreshnessBurst, kindInt},
	{keyPrefetchEnabled, kindBool},
	{keyPrefetchEntries, kindInt},
}

// SettingsService manages feed settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current feed settings. Unset or invalid values fall back
// to defaults.
func (s *SettingsService) Get() (domain.FeedSettings, error) {
	defaults := domain.DefaultFeedSettings()

	settings := domain.FeedSettings{
		PageSize:             s.getInt(keyPageSize, defaults.PageSize),
		MaxRetries:           s.getInt(keyMaxRetries, defaults.MaxRetries),
		Sort:                 domain.SortOrder(s.getString(keySort, string(defaults.Sort))),
		FreshnessInterval:    time.Duration(s.getInt(keyFreshnessInterval, int(defaults.FreshnessInterval/time.Second))) * time.Second,
		FreshnessBurst:       s.getInt(keyFreshnessBurst, defaults.FreshnessBurst),
		PrefetchEnabled:      s.getBool(keyPrefetchEnabled, defaults.PrefetchEnabled),
		PrefetchCacheEntries: s.getInt(keyPrefetchEntries, defaults.PrefetchCacheEntries),
	}
	return settings.Normalised(), nil
}

// Set parses value for key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := s.kindOf(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrInvalidInput, key, value)
		}
		return s.configStore.Set(key, n)
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false, got %q", domain.ErrInvalidInput, key, value)
		}
		return s.configStore.Set(key, b)
	default:
		order := domain.SortOrder(strings.ToLower(value))
		if !order.IsValid() {
			return fmt.Errorf("%w: %s must be %q or %q, got %q",
				domain.ErrInvalidInput, key, domain.SortNewest, domain.SortOldest, value)
		}
		return s.configStore.Set(key, string(order))
	}
}

// Keys returns the recognised setting keys.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKinds))
	for i, k := range settingKinds {
		keys[i] = k.key
	}
	return keys
}

// ConfigPath returns where settings are stored.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func (s *SettingsService) kindOf(key string) (settingKind, bool) {
	for _, k := range settingKinds {
		if k.key == key {
			return k.kind, true
		}
	}
	return 0, false
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
