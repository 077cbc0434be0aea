package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

var (
	feedPages   int
	feedFilters []string
	feedJSON    bool
)

var feedCmd = &cobra.Command{
	Use:   "feed [topic]",
	Short: "Print a topic's assembled feed",
	Long: `Opens the feed of a topic and prints the assembled sequence: stories,
parliamentary mentions and side-content cards at their slots, followed by a
load-more or end-of-feed marker.

Filters are given as facet=value and may be repeated. Values of the same
facet are alternatives; different facets must all match.

Examples:
  storyfeed feed brighton
  storyfeed feed brighton --pages 3
  storyfeed feed brighton --filter keyword=harbour --filter landmark="Palace Pier"`,
	Args: cobra.ExactArgs(1),
	RunE: runFeed,
}

func init() {
	feedCmd.Flags().IntVarP(&feedPages, "pages", "p", 1, "number of pages to load")
	feedCmd.Flags().StringArrayVarP(&feedFilters, "filter", "f", nil, "facet filter as facet=value (keyword, landmark, organization, source)")
	feedCmd.Flags().BoolVar(&feedJSON, "json", false, "output the feed as JSON")
	rootCmd.AddCommand(feedCmd)
}

func runFeed(cmd *cobra.Command, args []string) error {
	if feedService == nil {
		return notConfigured("feed")
	}

	filters, err := parseFilters(feedFilters)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	session, err := feedService.Open(ctx, args[0])
	if err != nil {
		return fmt.Errorf("opening feed: %w", err)
	}
	defer session.Close()

	if len(filters) > 0 {
		if err := session.SetFilters(ctx, domain.FilterStateFromMatches(filters)); err != nil {
			return fmt.Errorf("applying filters: %w", err)
		}
	}

	if err := loadPages(ctx, session, feedPages); err != nil {
		return err
	}

	view := session.View()
	if feedJSON {
		return outputFeedJSON(cmd, session.Topic(), view)
	}
	outputFeed(cmd, session.Topic(), view)
	return nil
}

// parseFilters parses facet=value pairs.
func parseFilters(raw []string) ([]domain.FacetMatch, error) {
	filters := make([]domain.FacetMatch, 0, len(raw))
	for _, r := range raw {
		facet, value, ok := strings.Cut(r, "=")
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return nil, fmt.Errorf("%w: filter %q must be facet=value", domain.ErrInvalidInput, r)
		}
		ft := domain.FacetType(strings.ToLower(strings.TrimSpace(facet)))
		if !ft.IsValid() {
			return nil, fmt.Errorf("%w: unknown facet %q", domain.ErrUnsupportedType, facet)
		}
		filters = append(filters, domain.FacetMatch{Facet: ft, Value: value})
	}
	return filters, nil
}

// loadPages loads until the session holds pages pages or the stream ends.
// The first page is loaded by Open.
func loadPages(ctx context.Context, session driving.FeedSession, pages int) error {
	for i := 1; i < pages; i++ {
		if !session.View().HasMore {
			return nil
		}
		if err := session.LoadMore(ctx); err != nil {
			return fmt.Errorf("loading page %d: %w", i+1, err)
		}
	}
	return nil
}

type feedItemJSON struct {
	Key        string            `json:"key"`
	Kind       string            `json:"kind"`
	StoryIndex int               `json:"story_index"`
	ID         string            `json:"id,omitempty"`
	Title      string            `json:"title,omitempty"`
	Source     string            `json:"source,omitempty"`
	Body       string            `json:"body,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type feedJSONOutput struct {
	Topic   string             `json:"topic"`
	Filters domain.FilterState `json:"filters"`
	HasMore bool               `json:"has_more"`
	Empty   string             `json:"empty,omitempty"`
	Error   string             `json:"error,omitempty"`
	Items   []feedItemJSON     `json:"items"`
}

func outputFeedJSON(cmd *cobra.Command, topic domain.Topic, view driving.FeedView) error {
	out := feedJSONOutput{
		Topic:   topic.ID,
		Filters: view.Filters,
		HasMore: view.HasMore,
		Empty:   string(view.Empty),
		Items:   make([]feedItemJSON, 0, len(view.Items)),
	}
	if view.Err != nil {
		out.Error = view.Err.Error()
	}
	for i := range view.Items {
		out.Items = append(out.Items, toFeedItemJSON(&view.Items[i]))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal feed: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func toFeedItemJSON(item *domain.ContentItem) feedItemJSON {
	out := feedItemJSON{
		Key:        item.Key,
		Kind:       string(item.Kind),
		StoryIndex: item.StoryIndex,
		ID:         item.ID(),
	}
	switch {
	case item.Story != nil:
		out.Title = item.Story.Title
		out.Source = item.Story.Source.URL
	case item.Card != nil:
		out.Title = item.Card.Title
		out.Body = item.Card.Body
		out.Attributes = item.Card.Attributes
	}
	return out
}

func outputFeed(cmd *cobra.Command, topic domain.Topic, view driving.FeedView) {
	cmd.Printf("%s\n", topic.Name)
	if !view.Filters.IsEmpty() {
		cmd.Printf("Filters: %s\n", describeFilters(view.Filters))
	}
	cmd.Println()

	switch view.Empty {
	case driving.EmptyNoContent:
		cmd.Println("No stories for this topic yet.")
	case driving.EmptyNoMatches:
		cmd.Println("No stories match these filters.")
	case driving.EmptyNone:
		printItems(cmd, view.Items)
	}

	if view.Err != nil {
		cmd.Printf("\nPage failed after %d attempt(s): %v\n", view.Attempts, view.Err)
	}
}

func printItems(cmd *cobra.Command, items []domain.ContentItem) {
	for i := range items {
		item := &items[i]
		switch {
		case item.Kind == domain.ItemStory:
			cmd.Printf("  [%d] %s\n", item.StoryIndex, item.Story.Title)
			if host, err := item.Story.SourceDomain(); err == nil {
				cmd.Printf("      %s\n", host)
			}
		case item.Kind == domain.ItemParliamentaryMention:
			cmd.Printf("  [%d] Parliament: %s\n", item.StoryIndex, item.Story.Title)
		case item.Kind.IsCard():
			cmd.Printf("      * %s: %s\n", item.Card.Type, item.Card.Title)
		case item.Kind == domain.ItemLoadMore:
			cmd.Println("  ... more stories (use --pages)")
		case item.Kind == domain.ItemEndOfFeed:
			cmd.Println("  -- end of feed --")
		}
	}
}

func describeFilters(f domain.FilterState) string {
	var parts []string
	for _, facet := range domain.FacetTypes() {
		for _, v := range f.Values(facet) {
			parts = append(parts, fmt.Sprintf("%s=%s", facet, v))
		}
	}
	return strings.Join(parts, ", ")
}
