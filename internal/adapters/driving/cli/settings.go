package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage feed settings",
	Long: `View and configure page size, retry limit, sort order, freshness
checking and prefetching.

Settings are stored in ~/.storyfeed/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a single setting.

Keys:
  feed.page_size              stories per page (default 20)
  feed.max_retries            retries of a failed page (default 3)
  feed.sort                   newest or oldest (default newest)
  freshness.interval_seconds  seconds between new-story checks (default 60)
  freshness.burst             back-to-back checks allowed (default 1)
  prefetch.enabled            prefetch "more like this" pages (default true)
  prefetch.cache_entries      prefetched pages kept (default 256)`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Walk through every setting, keeping the current value on an empty answer.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Feed]")
	cmd.Printf("  Page size: %d\n", settings.PageSize)
	cmd.Printf("  Max retries: %d\n", settings.MaxRetries)
	cmd.Printf("  Sort: %s\n", settings.Sort)
	cmd.Println()

	cmd.Println("[Freshness]")
	cmd.Printf("  Check interval: %s\n", settings.FreshnessInterval)
	cmd.Printf("  Burst: %d\n", settings.FreshnessBurst)
	cmd.Println()

	cmd.Println("[Prefetch]")
	cmd.Printf("  Enabled: %t\n", settings.PrefetchEnabled)
	cmd.Printf("  Cache entries: %d\n", settings.PrefetchCacheEntries)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s to %s\n", key, value)
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	current := settingValues(settings)

	cmd.Println("storyfeed Settings Wizard")
	cmd.Println("=========================")
	cmd.Println("Press enter to keep the current value.")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())
	for _, key := range settingsService.Keys() {
		value, ok := promptSetting(cmd, reader, key, current[key])
		if !ok {
			continue
		}
		if err := settingsService.Set(key, value); err != nil {
			cmd.Printf("  Skipped %s: %v\n", key, err)
			continue
		}
		cmd.Printf("  Set %s to %s\n", key, value)
	}

	cmd.Println()
	cmd.Println("Configuration complete.")
	return nil
}

// promptSetting asks for one value. It reports false when the answer keeps
// the current value.
func promptSetting(cmd *cobra.Command, reader *bufio.Reader, key, current string) (string, bool) {
	if key == "feed.sort" {
		orders := []domain.SortOrder{domain.SortNewest, domain.SortOldest}
		defaultIdx := 1
		for i, o := range orders {
			cmd.Printf("  %d. %s\n", i+1, o)
			if o.String() == current {
				defaultIdx = i + 1
			}
		}
		cmd.Printf("%s [%d]: ", key, defaultIdx)
		choice := orders[parseChoice(readLine(reader), len(orders), defaultIdx)-1]
		return choice.String(), choice.String() != current
	}

	cmd.Printf("%s [%s]: ", key, current)
	input := readLine(reader)
	if input == "" || input == current {
		return "", false
	}
	return input, true
}

// settingValues renders settings under their config keys.
func settingValues(s domain.FeedSettings) map[string]string {
	return map[string]string{
		"feed.page_size":             strconv.Itoa(s.PageSize),
		"feed.max_retries":           strconv.Itoa(s.MaxRetries),
		"feed.sort":                  s.Sort.String(),
		"freshness.interval_seconds": strconv.Itoa(int(s.FreshnessInterval.Seconds())),
		"freshness.burst":            strconv.Itoa(s.FreshnessBurst),
		"prefetch.enabled":           strconv.FormatBool(s.PrefetchEnabled),
		"prefetch.cache_entries":     strconv.Itoa(s.PrefetchCacheEntries),
	}
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

