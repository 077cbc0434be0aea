package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storyfeed/internal/adapters/driving/watch"
	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	want := []string{"feed", "import", "mcp", "roundup", "settings", "similar", "slots", "topics", "tui", "version", "watch"}

	var got []string
	for _, cmd := range rootCmd.Commands() {
		got = append(got, cmd.Name())
	}

	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestSetup_RunsBootstrapOnce(t *testing.T) {
	SetServices(nil)
	defer SetServices(nil)

	calls := 0
	SetBootstrap(func(o Options) (*Services, func() error, error) {
		calls++
		assert.True(t, o.Memory)
		return &Services{Feed: &stubFeedService{}}, func() error { return nil }, nil
	})
	defer SetBootstrap(nil)

	opts.Memory = true
	defer func() { opts.Memory = false }()

	require.NoError(t, setup(rootCmd, nil))
	require.NoError(t, setup(rootCmd, nil))

	assert.Equal(t, 1, calls)
	assert.NotNil(t, feedService)
	assert.NotNil(t, cleanup)
	cleanup = nil
}

func TestSimilarCmd(t *testing.T) {
	t.Run("filters by the story's terms", func(t *testing.T) {
		setupTestServices(t, 0)

		out, err := runCommand(t, "similar", "brighton", "s1")

		require.NoError(t, err)
		assert.Contains(t, out, "Filters: landmark=Palace Pier")
		assert.Contains(t, out, "Palace Pier reopens")
		assert.NotContains(t, out, "Council budget")
	})

	t.Run("story without terms", func(t *testing.T) {
		setupTestServices(t, 0)

		out, err := runCommand(t, "similar", "brighton", "s3")

		require.NoError(t, err)
		assert.Contains(t, out, "Story s3 mentions none of the topic's terms.")
	})

	t.Run("pages until the story is found", func(t *testing.T) {
		setupTestServices(t, 1)

		out, err := runCommand(t, "similar", "brighton", "s2")

		require.NoError(t, err)
		assert.Contains(t, out, "Filters: keyword=harbour")
	})

	t.Run("story outside the page limit", func(t *testing.T) {
		setupTestServices(t, 1)

		_, err := runCommand(t, "similar", "brighton", "s3", "--max-pages", "2")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown story", func(t *testing.T) {
		setupTestServices(t, 0)

		_, err := runCommand(t, "similar", "brighton", "s9")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRoundupCmd(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		setupTestServices(t, 0)

		out, err := runCommand(t, "roundup", "list", "brighton")

		require.NoError(t, err)
		assert.Contains(t, out, "r1")
		assert.Contains(t, out, "(3 stories)")
	})

	t.Run("list without roundups", func(t *testing.T) {
		setupTestServices(t, 0)

		out, err := runCommand(t, "roundup", "list", "hove")

		require.NoError(t, err)
		assert.Contains(t, out, "No roundups found.")
	})

	t.Run("rank", func(t *testing.T) {
		setupTestServices(t, 0)

		out, err := runCommand(t, "roundup", "rank", "r1")

		require.NoError(t, err)
		assert.Contains(t, out, "daily roundup r1")
		first := strings.Index(out, "1. Harbour dredging starts (3.0)")
		second := strings.Index(out, "2. Council budget (0.5)")
		third := strings.Index(out, "3. Palace Pier reopens (0.0)")
		assert.True(t, first >= 0 && first < second && second < third, out)
	})

	t.Run("rank as JSON", func(t *testing.T) {
		setupTestServices(t, 0)

		out, err := runCommand(t, "roundup", "rank", "r1", "--json")
		require.NoError(t, err)

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		require.Len(t, decoded, 3)
	})

	t.Run("unknown roundup", func(t *testing.T) {
		setupTestServices(t, 0)

		_, err := runCommand(t, "roundup", "rank", "r9")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSlotsCmd(t *testing.T) {
	setupTestServices(t, 0)

	out, err := runCommand(t, "slots")

	require.NoError(t, err)
	assert.Contains(t, out, "Slot table:")
	assert.Contains(t, out, "sentiment")
	assert.Contains(t, out, "parliamentary_digest")
	assert.Contains(t, out, "No collisions in story indices [0, 50).")
}

func TestSlotsCmd_RejectsSpan(t *testing.T) {
	for _, n := range []string{"0", "10001"} {
		t.Run(n, func(t *testing.T) {
			setupTestServices(t, 0)

			_, err := runCommand(t, "slots", "-n", n)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestTopicsCmd(t *testing.T) {
	t.Run("lists topics", func(t *testing.T) {
		setupTestServices(t, 0)

		out, err := runCommand(t, "topics")

		require.NoError(t, err)
		assert.Contains(t, out, "brighton  Brighton")
		assert.Contains(t, out, "keywords: harbour")
	})

	t.Run("not configured", func(t *testing.T) {
		SetServices(nil)

		_, err := runCommand(t, "topics")

		assert.EqualError(t, err, "topic service not configured")
	})
}

const testCatalog = `
[[topics]]
id = "hove"
name = "Hove"

[[stories]]
id = "h1"
topic = "hove"
title = "Lagoon reopens"
slides = ["The lagoon reopened."]
created_at = 2026-03-15T09:00:00Z
published = true

[[stories]]
title = "No id"
topic = "hove"
`

func TestImportCmd(t *testing.T) {
	setupTestServices(t, 0)
	dir := t.TempDir()
	path := filepath.Join(dir, "hove.toml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))

	out, err := runCommand(t, "import", path)

	require.NoError(t, err)
	assert.Contains(t, out, path+": 1 topics, 1 stories, 0 cards, 0 roundups, 0 interactions, 1 skipped")
	assert.Contains(t, out, "skipped:")

	out, err = runCommand(t, "feed", "hove")
	require.NoError(t, err)
	assert.Contains(t, out, "Lagoon reopens")
}

func TestImportCmd_MissingFile(t *testing.T) {
	setupTestServices(t, 0)

	_, err := runCommand(t, "import", filepath.Join(t.TempDir(), "missing.toml"))

	assert.Error(t, err)
}

func TestFormatSummary(t *testing.T) {
	total := addSummaries(
		domain.IngestSummary{Topics: 1, Stories: 2, Rejected: []string{"a"}},
		domain.IngestSummary{Stories: 1, Cards: 3, Rejected: []string{"b"}},
	)

	assert.Equal(t, "1 topics, 3 stories, 3 cards, 0 roundups, 0 interactions, 2 skipped", formatSummary(total))
}

func TestSettingsCmd(t *testing.T) {
	t.Run("show defaults", func(t *testing.T) {
		setupTestServices(t, 0)

		out, err := runCommand(t, "settings", "show")

		require.NoError(t, err)
		assert.Contains(t, out, "Page size: 20")
		assert.Contains(t, out, "Sort: newest")
		assert.Contains(t, out, "Enabled: true")
	})

	t.Run("set", func(t *testing.T) {
		setupTestServices(t, 0)

		out, err := runCommand(t, "settings", "set", "feed.page_size", "5")
		require.NoError(t, err)
		assert.Contains(t, out, "Set feed.page_size to 5")

		out, err = runCommand(t, "settings", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "Page size: 5")
	})

	t.Run("set invalid value", func(t *testing.T) {
		setupTestServices(t, 0)

		_, err := runCommand(t, "settings", "set", "feed.sort", "sideways")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to set feed.sort")
	})

	t.Run("wizard", func(t *testing.T) {
		setupTestServices(t, 0)
		// page size, max retries, sort (choice 2 = oldest), then defaults.
		rootCmd.SetIn(strings.NewReader("10\n\n2\n\n\n\n\n"))

		out, err := runCommand(t, "settings", "wizard")
		require.NoError(t, err)
		assert.Contains(t, out, "Set feed.page_size to 10")
		assert.Contains(t, out, "Set feed.sort to oldest")
		assert.NotContains(t, out, "Set feed.max_retries")
		assert.Contains(t, out, "Configuration complete.")

		settings, err := settingsService.Get()
		require.NoError(t, err)
		assert.Equal(t, 10, settings.PageSize)
		assert.Equal(t, domain.SortOldest, settings.Sort)
	})
}

func TestSettingValues(t *testing.T) {
	values := settingValues(domain.DefaultFeedSettings())

	assert.Equal(t, "20", values["feed.page_size"])
	assert.Equal(t, "newest", values["feed.sort"])
	assert.Equal(t, "60", values["freshness.interval_seconds"])
	assert.Equal(t, "true", values["prefetch.enabled"])
}

func TestTUICmd_RequiresTerminal(t *testing.T) {
	setupTestServices(t, 0)
	original := isTerminal
	isTerminal = func() bool { return false }
	defer func() { isTerminal = original }()

	_, err := runCommand(t, "tui")

	assert.ErrorIs(t, err, errNoTerminal)
}

func TestMCPServeCmd_Flags(t *testing.T) {
	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "0", port.DefValue)

	host := mcpServeCmd.Flags().Lookup("host")
	require.NotNil(t, host)
	assert.Equal(t, "localhost", host.DefValue)
}

func TestMCPServeCmd_RequiresServices(t *testing.T) {
	SetServices(nil)
	t.Cleanup(resetFlags)

	_, err := runCommand(t, "mcp", "serve")

	assert.Error(t, err)
}

func TestMCPAddr(t *testing.T) {
	assert.Equal(t, "localhost:8080", mcpAddr("localhost", 8080))
	assert.Equal(t, ":9000", mcpAddr("", 9000))
	assert.Equal(t, "[::1]:8080", mcpAddr("::1", 8080))
}

func TestReportImport(t *testing.T) {
	newCmd := func() (*cobra.Command, *strings.Builder) {
		out := new(strings.Builder)
		cmd := &cobra.Command{}
		cmd.SetOut(out)
		cmd.SetErr(out)
		return cmd, out
	}
	ctx := context.Background()

	t.Run("prints summary", func(t *testing.T) {
		cmd, out := newCmd()

		reportImport(ctx, cmd, watch.Result{
			Path:    "inbox/a.toml",
			Summary: domain.IngestSummary{Stories: 2, Rejected: []string{"story \"x\": missing id"}},
		}, nil)

		assert.Contains(t, out.String(), "inbox/a.toml: 0 topics, 2 stories")
		assert.Contains(t, out.String(), "skipped: story")
	})

	t.Run("prints errors", func(t *testing.T) {
		cmd, out := newCmd()

		reportImport(ctx, cmd, watch.Result{Path: "inbox/a.toml", Err: assert.AnError}, nil)

		assert.Contains(t, out.String(), "inbox/a.toml: "+assert.AnError.Error())
	})

	t.Run("reports and merges new stories", func(t *testing.T) {
		cmd, out := newCmd()
		watchTopic = "brighton"
		defer func() { watchTopic = "" }()
		monitor := &stubMonitor{count: 2}

		reportImport(ctx, cmd, watch.Result{Path: "inbox/a.toml"}, monitor)

		assert.Contains(t, out.String(), "2 new stories for brighton")
		assert.Equal(t, 1, monitor.applied)
	})

	t.Run("no new stories", func(t *testing.T) {
		cmd, out := newCmd()
		monitor := &stubMonitor{}

		reportImport(ctx, cmd, watch.Result{Path: "inbox/a.toml"}, monitor)

		assert.NotContains(t, out.String(), "new")
		assert.Equal(t, 0, monitor.applied)
	})
}

func TestWatchCmd_ImportsExistingAndStops(t *testing.T) {
	setupTestServices(t, 0)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hove.toml"), []byte(testCatalog), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buf := new(strings.Builder)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"watch", dir, "--topic", "brighton"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(ctx)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "hove.toml: 1 topics, 1 stories")
}

func TestPluralStories(t *testing.T) {
	assert.Equal(t, "story", pluralStories(1))
	assert.Equal(t, "stories", pluralStories(3))
}

type stubFeedService struct{}

func (stubFeedService) Open(_ context.Context, _ string) (driving.FeedSession, error) {
	return nil, domain.ErrNotFound
}

func (stubFeedService) Monitor(_ driving.FeedSession) (driving.FreshnessMonitor, error) {
	return nil, domain.ErrNotFound
}

type stubMonitor struct {
	count   int
	applied int
}

func (m *stubMonitor) Start(_ context.Context)                  {}
func (m *stubMonitor) Reconnect(_ context.Context) (int, error) { return m.count, nil }
func (m *stubMonitor) Check(_ context.Context) (int, error)     { return m.count, nil }
func (m *stubMonitor) HasNewStories() bool                      { return m.count > 0 }
func (m *stubMonitor) Count() int                               { return m.count }

func (m *stubMonitor) Apply() driving.MergeOutcome {
	m.applied++
	return driving.MergeApplied
}
