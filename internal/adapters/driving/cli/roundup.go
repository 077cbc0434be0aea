package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

var roundupJSON bool

var roundupCmd = &cobra.Command{
	Use:   "roundup",
	Short: "Inspect daily and weekly roundups",
}

var roundupListCmd = &cobra.Command{
	Use:   "list [topic]",
	Short: "List a topic's roundups",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoundupList,
}

var roundupRankCmd = &cobra.Command{
	Use:   "rank [roundup-id]",
	Short: "Rank a roundup's stories by engagement",
	Long: `Ranks the stories of a roundup by reader engagement. Shares weigh 3,
swipes 1 and views 0.5. Equal scores are ordered newest first.`,
	Args: cobra.ExactArgs(1),
	RunE: runRoundupRank,
}

func init() {
	roundupRankCmd.Flags().BoolVar(&roundupJSON, "json", false, "output the ranking as JSON")
	roundupCmd.AddCommand(roundupListCmd)
	roundupCmd.AddCommand(roundupRankCmd)
	rootCmd.AddCommand(roundupCmd)
}

func runRoundupList(cmd *cobra.Command, args []string) error {
	if rankingService == nil {
		return notConfigured("ranking")
	}

	roundups, err := rankingService.ListRoundups(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("listing roundups: %w", err)
	}
	if len(roundups) == 0 {
		cmd.Println("No roundups found.")
		return nil
	}

	for i := range roundups {
		r := &roundups[i]
		cmd.Printf("  %s  %-6s  %s .. %s  (%d stories)\n",
			r.ID, r.Kind,
			r.PeriodStart.Format("2006-01-02"), r.PeriodEnd.Format("2006-01-02"),
			len(r.StoryIDs))
	}
	return nil
}

type rankedJSON struct {
	StoryID string  `json:"story_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
	Shares  int     `json:"shares"`
	Swipes  int     `json:"swipes"`
	Views   int     `json:"views"`
}

func runRoundupRank(cmd *cobra.Command, args []string) error {
	if rankingService == nil {
		return notConfigured("ranking")
	}

	ranked, err := rankingService.RankRoundup(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("ranking roundup: %w", err)
	}

	if roundupJSON {
		out := make([]rankedJSON, 0, len(ranked.Stories))
		for i := range ranked.Stories {
			out = append(out, toRankedJSON(&ranked.Stories[i]))
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal ranking: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("%s roundup %s\n\n", ranked.Roundup.Kind, ranked.Roundup.ID)
	if len(ranked.Stories) == 0 {
		cmd.Println("No stories in this roundup.")
		return nil
	}
	for i := range ranked.Stories {
		s := &ranked.Stories[i]
		cmd.Printf("  %d. %s (%.1f)\n", i+1, s.Story.Title, s.Score)
		cmd.Printf("     %d shares, %d swipes, %d views\n", s.Shares, s.Swipes, s.Views)
	}
	return nil
}

func toRankedJSON(s *domain.RankedStory) rankedJSON {
	return rankedJSON{
		StoryID: s.Story.ID,
		Title:   s.Story.Title,
		Score:   s.Score,
		Shares:  s.Shares,
		Swipes:  s.Swipes,
		Views:   s.Views,
	}
}
