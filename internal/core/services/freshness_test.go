package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

func newMonitorFixture(t *testing.T, settings domain.FeedSettings) (*feedFixture, *FeedSession, *FreshnessMonitor) {
	t.Helper()
	f := newFeedFixture(t, settings)
	f.source.setPage(noFilters, "", storyRange("s", 6), "")
	session := f.open(t)
	return f, session, NewFreshnessMonitor(f.source, session, settings)
}

func TestFreshnessMonitor_CheckCountsWithoutSplicing(t *testing.T) {
	f, session, monitor := newMonitorFixture(t, testSettings())
	f.source.newer = []domain.Story{
		newStory("n1", 10, "x"),
		newStory("n2", 11, "x"),
		newStory("s6", 6, "x"),
		ghostStory("g", 12),
		newStory("n1", 10, "x"),
	}

	n, err := monitor.Check(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.True(t, monitor.HasNewStories())
	assert.ElementsMatch(t, []string{"n1", "n2"}, monitor.IDs())
	assert.False(t, monitor.LastChecked().IsZero())

	view := session.View()
	assert.True(t, view.HasNewStories)
	assert.Equal(t, 2, view.NewStoryCount)
	assert.NotContains(t, storyIDs(view.Items), "n1")
}

func TestFreshnessMonitor_ApplyMergesFirst(t *testing.T) {
	f, session, monitor := newMonitorFixture(t, testSettings())
	f.source.newer = []domain.Story{newStory("n3", 30, "x"), newStory("n2", 20, "x"), newStory("n1", 10, "x")}

	_, err := monitor.Check(context.Background())
	require.NoError(t, err)

	assert.Equal(t, driving.MergeApplied, monitor.Apply())
	assert.False(t, monitor.HasNewStories())

	ids := storyIDs(session.View().Items)
	assert.Equal(t, []string{"n3", "n2", "n1"}, ids[:3])
	assert.Len(t, ids, 9)
	assert.False(t, session.View().HasNewStories)
}

func TestFreshnessMonitor_ApplyWithNothingPending(t *testing.T) {
	_, _, monitor := newMonitorFixture(t, testSettings())

	assert.Equal(t, driving.MergeNoop, monitor.Apply())
}

func TestFreshnessMonitor_ChecksAreThrottled(t *testing.T) {
	settings := testSettings()
	settings.FreshnessInterval = time.Hour
	settings.FreshnessBurst = 1
	f, _, monitor := newMonitorFixture(t, settings)
	f.source.newer = []domain.Story{newStory("n1", 10, "x")}

	n, err := monitor.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f.source.newer = nil
	n, err = monitor.Reconnect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n, "throttled check keeps the previous count")
	assert.Equal(t, 1, f.source.newerN)
}

func TestFreshnessMonitor_CheckError(t *testing.T) {
	f, _, monitor := newMonitorFixture(t, testSettings())
	f.source.newerErr = errors.New("timeout")

	_, err := monitor.Check(context.Background())

	assert.ErrorContains(t, err, "timeout")
	assert.False(t, monitor.HasNewStories())
}

func TestFreshnessMonitor_StartStopsWithContext(t *testing.T) {
	settings := testSettings()
	settings.FreshnessInterval = 5 * time.Millisecond
	f, _, monitor := newMonitorFixture(t, settings)
	f.source.newer = []domain.Story{newStory("n1", 10, "x")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitor.Start(ctx)
		close(done)
	}()

	require.Eventually(t, monitor.HasNewStories, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestFeedService_Monitor(t *testing.T) {
	f := newFeedFixture(t, testSettings())
	f.source.setPage(noFilters, "", storyRange("s", 3), "")
	session, err := f.service.Open(context.Background(), "brighton")
	require.NoError(t, err)
	t.Cleanup(session.Close)
	f.source.newer = []domain.Story{newStory("n1", 10, "x")}

	monitor, err := f.service.Monitor(session)
	require.NoError(t, err)

	n, err := monitor.Reconnect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, session.View().NewStoryCount)
}

func TestFeedService_Monitor_ForeignSession(t *testing.T) {
	f := newFeedFixture(t, testSettings())

	_, err := f.service.Monitor(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
