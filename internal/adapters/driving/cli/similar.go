package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

var (
	similarMaxPages int
	similarJSON     bool
)

var similarCmd = &cobra.Command{
	Use:   "similar [topic] [story-id]",
	Short: "Show stories like a given story",
	Long: `Finds the topic's keywords, landmarks and organisations mentioned in a
story, applies them as filters and prints the refiltered feed.

The story must be reachable within --max-pages pages of the topic's feed.`,
	Args: cobra.ExactArgs(2),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().IntVar(&similarMaxPages, "max-pages", 10, "pages to load while looking for the story")
	similarCmd.Flags().BoolVar(&similarJSON, "json", false, "output the feed as JSON")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if feedService == nil {
		return notConfigured("feed")
	}
	topicID, storyID := args[0], args[1]

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	session, err := feedService.Open(ctx, topicID)
	if err != nil {
		return fmt.Errorf("opening feed: %w", err)
	}
	defer session.Close()

	for page := 1; !session.IsRendered(storyID); page++ {
		if page >= similarMaxPages || !session.View().HasMore {
			return fmt.Errorf("story %s not found in the first %d page(s) of %s: %w",
				storyID, page, topicID, domain.ErrNotFound)
		}
		if err := session.LoadMore(ctx); err != nil {
			return fmt.Errorf("loading page %d: %w", page+1, err)
		}
	}

	result, err := session.MoreLikeThis(ctx, storyID)
	if err != nil {
		return fmt.Errorf("more like this: %w", err)
	}
	if result.OpenFilterUI {
		cmd.Printf("Story %s mentions none of the topic's terms.\n", storyID)
		return nil
	}

	view := session.View()
	if similarJSON {
		return outputFeedJSON(cmd, session.Topic(), view)
	}
	outputFeed(cmd, session.Topic(), view)
	return nil
}
