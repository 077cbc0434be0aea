package main

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/storyfeed/internal/adapters/driven/cache"
	"github.com/custodia-labs/storyfeed/internal/adapters/driven/config/file"
	"github.com/custodia-labs/storyfeed/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/storyfeed/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/cli"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
	"github.com/custodia-labs/storyfeed/internal/core/services"
	"github.com/custodia-labs/storyfeed/internal/logger"
)


// ports are the driven adapters a run is wired with.
type ports struct {
	topics       driven.TopicSource
	stories      driven.StorySource
	roundups     driven.RoundupStore
	interactions driven.InteractionSource
	writer       driven.StoryWriter
	side         []driven.SideContentSource
	config       driven.ConfigStore
	closers      []func() error
}

// bootstrap wires the driven adapters into the core services.
func bootstrap(opts cli.Options) (*cli.Services, func() error, error) {
	p, err := openPorts(opts)
	if err != nil {
		return nil, nil, err
	}

	settingsService := services.NewSettingsService(p.config)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("loading settings: %w", err), closeAll(p.closers))
	}

	var pageCache driven.PageCache
	if settings.PrefetchEnabled {
		pc, err := cache.NewPageCache(settings.PrefetchCacheEntries)
		if err != nil {
			return nil, nil, errors.Join(fmt.Errorf("creating page cache: %w", err), closeAll(p.closers))
		}
		pageCache = pc
		p.closers = append(p.closers, func() error {
			pc.Close()
			return nil
		})
	}

	slots := services.DefaultSlotRegistry()
	slots.LogCollisionReport(services.CollisionCheckSpan)

	logger.Debug("settings: page size %d, sort %s, freshness every %s",
		settings.PageSize, settings.Sort, settings.FreshnessInterval)

	svc := &cli.Services{
		Feed:     services.NewFeedService(p.topics, p.stories, p.side, pageCache, slots, settings),
		Topics:   services.NewTopicService(p.topics),
		Ranking:  services.NewRankingService(p.roundups, p.stories, p.interactions),
		Settings: settingsService,
		Ingest:   services.NewIngestService(p.writer),
		Slots:    slots,
	}
	closers := p.closers
	return svc, func() error { return closeAll(closers) }, nil
}

// openPorts opens the in-memory or SQLite store and the config store.
func openPorts(opts cli.Options) (*ports, error) {
	if opts.Memory {
		logger.Debug("storage: in-memory")
		store := memory.NewStore()
		return &ports{
			topics:       store,
			stories:      store,
			roundups:     store,
			interactions: store,
			writer:       store,
			side:         store.SideContentSources(),
			config:       memory.NewConfigStore(),
		}, nil
	}

	config, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}

	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	logger.Debug("storage: %s", store.Path())

	return &ports{
		topics:       store.TopicSource(),
		stories:      store.StorySource(),
		roundups:     store.RoundupStore(),
		interactions: store.InteractionSource(),
		writer:       store.StoryWriter(),
		side:         store.SideContentSources(),
		config:       config,
		closers:      []func() error{store.Close},
	}, nil
}

// closeAll runs closers in reverse order and joins their errors.
func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
