package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driven"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
	"github.com/custodia-labs/storyfeed/internal/logger"
)

// Verify interface compliance.
var _ driving.FreshnessMonitor = (*FreshnessMonitor)(nil)

// FreshnessMonitor detects stories published after the newest rendered one.
// It only counts them; the sequence changes when the reader calls Apply.
type FreshnessMonitor struct {
	source   driven.StorySource
	session  *FeedSession
	limiter  *rate.Limiter
	interval time.Duration

	mu      sync.Mutex
	pending []domain.Story
	checked time.Time
}

// NewFreshnessMonitor creates a monitor for a session and attaches it so
// the session's view reports waiting stories.
func NewFreshnessMonitor(source driven.StorySource, session *FeedSession, settings domain.FeedSettings) *FreshnessMonitor {
	settings = settings.Normalised()
	m := &FreshnessMonitor{
		source:   source,
		session:  session,
		limiter:  rate.NewLimiter(rate.Every(settings.FreshnessInterval), settings.FreshnessBurst),
		interval: settings.FreshnessInterval,
	}
	session.attachFreshness(m)
	return m
}

// Start runs periodic checks until ctx is cancelled. It blocks; run it in
// its own goroutine.
func (m *FreshnessMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	logger.Debug("freshness monitor started for session %s (every %s)", m.session.ID(), m.interval)
	for {
		select {
		case <-ctx.Done():
			logger.Debug("freshness monitor stopped for session %s", m.session.ID())
			return
		case <-ticker.C:
			if _, err := m.check(ctx); err != nil {
				logger.Warn("freshness check: %v", err)
			}
		}
	}
}

// Check looks for new stories unless checks are being throttled, in which
// case the previous count is returned unchanged.
func (m *FreshnessMonitor) Check(ctx context.Context) (int, error) {
	if !m.limiter.Allow() {
		logger.Debug("freshness check throttled")
		return m.Count(), nil
	}
	return m.check(ctx)
}

// Reconnect runs a check after the transport reconnects. Reconnect storms
// are absorbed by the same throttle as Check.
func (m *FreshnessMonitor) Reconnect(ctx context.Context) (int, error) {
	logger.Debug("freshness monitor reconnect for session %s", m.session.ID())
	return m.Check(ctx)
}

func (m *FreshnessMonitor) check(ctx context.Context) (int, error) {
	since := m.session.NewestCreatedAt()
	topicID := m.session.Topic().ID

	stories, err := m.source.FetchStoriesNewerThan(ctx, topicID, since)
	if err != nil {
		return m.Count(), fmt.Errorf("fetch stories newer than %s: %w", since.Format(time.RFC3339), err)
	}

	fresh := make([]domain.Story, 0, len(stories))
	seen := make(map[string]bool, len(stories))
	for _, st := range stories {
		if st.IsGhost() || seen[st.ID] || !st.CreatedAt.After(since) || m.session.IsRendered(st.ID) {
			continue
		}
		seen[st.ID] = true
		fresh = append(fresh, st)
	}

	m.mu.Lock()
	m.pending = fresh
	m.checked = time.Now()
	m.mu.Unlock()

	if len(fresh) > 0 {
		logger.Info("session %s: %d new stories", m.session.ID(), len(fresh))
	}
	return len(fresh), nil
}

// HasNewStories reports whether stories are waiting to be merged.
func (m *FreshnessMonitor) HasNewStories() bool {
	return m.Count() > 0
}

// Count returns the number of waiting stories.
func (m *FreshnessMonitor) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// IDs returns the IDs of the waiting stories.
func (m *FreshnessMonitor) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.pending))
	for i := range m.pending {
		ids[i] = m.pending[i].ID
	}
	return ids
}

// LastChecked returns when the last successful check completed.
func (m *FreshnessMonitor) LastChecked() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checked
}

// Apply hands the waiting stories to the session and clears them.
func (m *FreshnessMonitor) Apply() driving.MergeOutcome {
	m.mu.Lock()
	stories := m.pending
	m.pending = nil
	m.mu.Unlock()

	if len(stories) == 0 {
		return driving.MergeNoop
	}
	return m.session.MergeNewStories(stories)
}
