package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storyfeed/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/services"
)

var seedTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// testEnv is a memory-backed set of services installed into the package.
type testEnv struct {
	store    *memory.Store
	config   *memory.ConfigStore
	settings domain.FeedSettings
}

// setupTestServices installs memory-backed services seeded with the
// brighton topic. Package state is restored when the test ends.
func setupTestServices(t *testing.T, pageSize int) *testEnv {
	t.Helper()

	env := &testEnv{
		store:    memory.NewStore(),
		config:   memory.NewConfigStore(),
		settings: domain.DefaultFeedSettings(),
	}
	if pageSize > 0 {
		env.settings.PageSize = pageSize
	}
	seed(t, env.store)

	slots := services.DefaultSlotRegistry()
	SetServices(&Services{
		Feed:     services.NewFeedService(env.store, env.store, env.store.SideContentSources(), nil, slots, env.settings),
		Topics:   services.NewTopicService(env.store),
		Ranking:  services.NewRankingService(env.store, env.store, env.store),
		Settings: services.NewSettingsService(env.config),
		Ingest:   services.NewIngestService(env.store),
		Slots:    slots,
	})

	t.Cleanup(func() {
		SetServices(nil)
		resetFlags()
	})
	return env
}

func resetFlags() {
	feedPages = 1
	feedFilters = nil
	feedJSON = false
	similarMaxPages = 10
	similarJSON = false
	roundupJSON = false
	slotsRange = 50
	watchTopic = ""
	watchSkipExisting = false
	versionShort = false
	mcpPort = 0
	mcpHost = "localhost"
}

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.SaveTopic(ctx, domain.Topic{
		ID:        "brighton",
		Slug:      "brighton",
		Name:      "Brighton",
		Keywords:  []string{"harbour"},
		Landmarks: []string{"Palace Pier"},
	}))

	stories := []domain.Story{
		seedStory("s1", "Palace Pier reopens", "The Palace Pier reopened on Saturday.", 3),
		seedStory("s2", "Harbour dredging starts", "Work began at Shoreham harbour.", 2),
		seedStory("s3", "Council budget", "The council set its budget.", 1),
	}
	for _, s := range stories {
		require.NoError(t, store.SaveStory(ctx, s))
	}

	require.NoError(t, store.SaveRoundup(ctx, domain.Roundup{
		ID:          "r1",
		TopicID:     "brighton",
		Kind:        domain.RoundupDaily,
		PeriodStart: seedTime,
		PeriodEnd:   seedTime.Add(24 * time.Hour),
		StoryIDs:    []string{"s1", "s2", "s3"},
		Published:   true,
	}))
	require.NoError(t, store.RecordInteraction(ctx, domain.Interaction{
		ID: "i1", StoryID: "s2", Type: domain.InteractionShare, CreatedAt: seedTime,
	}))
	require.NoError(t, store.RecordInteraction(ctx, domain.Interaction{
		ID: "i2", StoryID: "s3", Type: domain.InteractionView, CreatedAt: seedTime,
	}))
}

func seedStory(id, title, text string, hours int) domain.Story {
	return domain.Story{
		ID:        id,
		TopicID:   "brighton",
		Kind:      domain.StoryKindArticle,
		Title:     title,
		Slides:    []domain.Slide{{ID: id + "-0", Content: text}},
		CreatedAt: seedTime.Add(time.Duration(hours) * time.Hour),
		Source:    domain.SourceRef{URL: "https://www.theargus.co.uk/news/" + id},
		Published: true,
	}
}

// runCommand executes the root command with args and returns its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
