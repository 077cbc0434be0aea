package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

const (
	defaultPages    = 1
	maxPages        = 20
	defaultSlotSpan = 50
)

// FilterInput selects one facet value.
type FilterInput struct {
	Facet string `json:"facet" jsonschema:"facet type: keyword, landmark, organization or source"`
	Value string `json:"value" jsonschema:"the facet value to select"`
}

// FeedPageInput is the input schema for the feed_page tool.
type FeedPageInput struct {
	Topic   string        `json:"topic" jsonschema:"topic ID or slug"`
	Pages   int           `json:"pages,omitempty" jsonschema:"number of pages to load (default 1)"`
	Filters []FilterInput `json:"filters,omitempty" jsonschema:"facet values to filter by"`
}

// FeedItemOutput is one entry of an assembled feed.
type FeedItemOutput struct {
	Key        string `json:"key"`
	Kind       string `json:"kind"`
	StoryIndex int    `json:"story_index"`
	ID         string `json:"id,omitempty"`
	Title      string `json:"title,omitempty"`
	URL        string `json:"url,omitempty"`
}

// FeedPageOutput is the output schema for the feed_page tool.
type FeedPageOutput struct {
	Topic   string           `json:"topic"`
	Items   []FeedItemOutput `json:"items"`
	HasMore bool             `json:"has_more"`
	Empty   string           `json:"empty,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// MoreLikeThisInput is the input schema for the more_like_this tool.
type MoreLikeThisInput struct {
	Topic    string `json:"topic" jsonschema:"topic ID or slug"`
	StoryID  string `json:"story_id" jsonschema:"the story to find similar stories for"`
	MaxPages int    `json:"max_pages,omitempty" jsonschema:"pages to scan for the story (default 20)"`
}

// MoreLikeThisOutput is the output schema for the more_like_this tool.
type MoreLikeThisOutput struct {
	Matches      []FilterInput    `json:"matches"`
	NoMatches    bool             `json:"no_matches"`
	Items        []FeedItemOutput `json:"items"`
	HasMore      bool             `json:"has_more"`
	EmptyResults bool             `json:"empty_results"`
}

// RankRoundupInput is the input schema for the rank_roundup tool.
type RankRoundupInput struct {
	RoundupID string `json:"roundup_id" jsonschema:"the roundup to rank"`
}

// RankedStoryOutput is one ranked roundup story.
type RankedStoryOutput struct {
	StoryID string  `json:"story_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
	Shares  int     `json:"shares"`
	Swipes  int     `json:"swipes"`
	Views   int     `json:"views"`
}

// RankRoundupOutput is the output schema for the rank_roundup tool.
type RankRoundupOutput struct {
	RoundupID string              `json:"roundup_id"`
	Kind      string              `json:"kind"`
	Stories   []RankedStoryOutput `json:"stories"`
}

// SlotReportInput is the input schema for the slot_report tool.
type SlotReportInput struct {
	N int `json:"n,omitempty" jsonschema:"number of story indices to simulate (default 50, at most 10000)"`
}

// SlotRuleOutput is one row of the slot table.
type SlotRuleOutput struct {
	Card   string `json:"card"`
	EveryN int    `json:"every_n"`
	Offset int    `json:"offset"`
}

// SlotCollisionOutput is a story index claimed by several cards.
type SlotCollisionOutput struct {
	StoryIndex int      `json:"story_index"`
	Cards      []string `json:"cards"`
}

// SlotReportOutput is the output schema for the slot_report tool.
type SlotReportOutput struct {
	Rules      []SlotRuleOutput      `json:"rules"`
	Collisions []SlotCollisionOutput `json:"collisions"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "feed_page",
		Description: "Assemble a topic's feed: stories with side-content cards at their slots",
	}, s.handleFeedPage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "more_like_this",
		Description: "Filter a topic's feed by the terms a story mentions",
	}, s.handleMoreLikeThis)

	if s.ports.Ranking != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "rank_roundup",
			Description: "Order a roundup's stories by reader engagement",
		}, s.handleRankRoundup)
	}

	if s.ports.Slots != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "slot_report",
			Description: "Show the side-content slot table and any slot collisions",
		}, s.handleSlotReport)
	}
}

// handleFeedPage handles the feed_page tool invocation.
func (s *Server) handleFeedPage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FeedPageInput,
) (*mcp.CallToolResult, FeedPageOutput, error) {
	filters, err := toFacetMatches(input.Filters)
	if err != nil {
		return nil, FeedPageOutput{}, err
	}

	session, err := s.ports.Feed.Open(ctx, input.Topic)
	if err != nil {
		return nil, FeedPageOutput{}, fmt.Errorf("opening feed: %w", err)
	}
	defer session.Close()

	if len(filters) > 0 {
		if err := session.SetFilters(ctx, domain.FilterStateFromMatches(filters)); err != nil {
			return nil, FeedPageOutput{}, fmt.Errorf("applying filters: %w", err)
		}
	}

	pages := clampPages(input.Pages, defaultPages)
	for i := 1; i < pages && session.View().HasMore; i++ {
		if err := session.LoadMore(ctx); err != nil {
			return nil, FeedPageOutput{}, fmt.Errorf("loading page %d: %w", i+1, err)
		}
	}

	view := session.View()
	output := FeedPageOutput{
		Topic:   session.Topic().ID,
		Items:   toItemOutputs(view.Items),
		HasMore: view.HasMore,
		Empty:   string(view.Empty),
	}
	if view.Err != nil {
		output.Error = view.Err.Error()
	}
	return nil, output, nil
}

// handleMoreLikeThis handles the more_like_this tool invocation.
func (s *Server) handleMoreLikeThis(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MoreLikeThisInput,
) (*mcp.CallToolResult, MoreLikeThisOutput, error) {
	session, err := s.ports.Feed.Open(ctx, input.Topic)
	if err != nil {
		return nil, MoreLikeThisOutput{}, fmt.Errorf("opening feed: %w", err)
	}
	defer session.Close()

	limit := clampPages(input.MaxPages, maxPages)
	for i := 1; !session.IsRendered(input.StoryID); i++ {
		if i >= limit || !session.View().HasMore {
			return nil, MoreLikeThisOutput{}, fmt.Errorf("%w: story %s is not in the feed", domain.ErrNotFound, input.StoryID)
		}
		if err := session.LoadMore(ctx); err != nil {
			return nil, MoreLikeThisOutput{}, fmt.Errorf("loading page %d: %w", i+1, err)
		}
	}

	result, err := session.MoreLikeThis(ctx, input.StoryID)
	if err != nil {
		return nil, MoreLikeThisOutput{}, err
	}

	view := session.View()
	output := MoreLikeThisOutput{
		Matches:      make([]FilterInput, 0, len(result.Matches)),
		NoMatches:    result.OpenFilterUI,
		Items:        toItemOutputs(view.Items),
		HasMore:      view.HasMore,
		EmptyResults: view.Empty == driving.EmptyNoMatches,
	}
	for _, m := range result.Matches {
		output.Matches = append(output.Matches, FilterInput{Facet: string(m.Facet), Value: m.Value})
	}
	return nil, output, nil
}

// handleRankRoundup handles the rank_roundup tool invocation.
func (s *Server) handleRankRoundup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RankRoundupInput,
) (*mcp.CallToolResult, RankRoundupOutput, error) {
	if s.ports.Ranking == nil {
		return nil, RankRoundupOutput{}, errToolUnavailable
	}

	ranked, err := s.ports.Ranking.RankRoundup(ctx, input.RoundupID)
	if err != nil {
		return nil, RankRoundupOutput{}, err
	}

	output := RankRoundupOutput{
		RoundupID: ranked.Roundup.ID,
		Kind:      string(ranked.Roundup.Kind),
		Stories:   make([]RankedStoryOutput, len(ranked.Stories)),
	}
	for i := range ranked.Stories {
		rs := &ranked.Stories[i]
		output.Stories[i] = RankedStoryOutput{
			StoryID: rs.Story.ID,
			Title:   rs.Story.Title,
			Score:   rs.Score,
			Shares:  rs.Shares,
			Swipes:  rs.Swipes,
			Views:   rs.Views,
		}
	}
	return nil, output, nil
}

// handleSlotReport handles the slot_report tool invocation.
func (s *Server) handleSlotReport(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SlotReportInput,
) (*mcp.CallToolResult, SlotReportOutput, error) {
	if s.ports.Slots == nil {
		return nil, SlotReportOutput{}, errToolUnavailable
	}

	n := input.N
	if n <= 0 {
		n = defaultSlotSpan
	}
	n = min(n, domain.MaxSlotSpan)

	rules := s.ports.Slots.Rules()
	collisions := s.ports.Slots.CollisionReport(n)

	output := SlotReportOutput{
		Rules:      make([]SlotRuleOutput, len(rules)),
		Collisions: make([]SlotCollisionOutput, len(collisions)),
	}
	for i, r := range rules {
		output.Rules[i] = SlotRuleOutput{Card: string(r.Card), EveryN: r.EveryN, Offset: r.Offset}
	}
	for i, c := range collisions {
		cards := make([]string, len(c.Cards))
		for j, card := range c.Cards {
			cards[j] = string(card)
		}
		output.Collisions[i] = SlotCollisionOutput{StoryIndex: c.StoryIndex, Cards: cards}
	}
	return nil, output, nil
}

func toFacetMatches(in []FilterInput) ([]domain.FacetMatch, error) {
	out := make([]domain.FacetMatch, 0, len(in))
	for _, f := range in {
		facet := domain.FacetType(strings.ToLower(strings.TrimSpace(f.Facet)))
		if !facet.IsValid() {
			return nil, fmt.Errorf("%w: unknown facet %q", domain.ErrUnsupportedType, f.Facet)
		}
		value := strings.TrimSpace(f.Value)
		if value == "" {
			return nil, fmt.Errorf("%w: empty value for facet %s", domain.ErrInvalidInput, facet)
		}
		out = append(out, domain.FacetMatch{Facet: facet, Value: value})
	}
	return out, nil
}

func clampPages(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return min(n, maxPages)
}

func toItemOutputs(items []domain.ContentItem) []FeedItemOutput {
	out := make([]FeedItemOutput, len(items))
	for i := range items {
		item := &items[i]
		out[i] = FeedItemOutput{
			Key:        item.Key,
			Kind:       string(item.Kind),
			StoryIndex: item.StoryIndex,
			ID:         item.ID(),
		}
		switch {
		case item.Story != nil:
			out[i].Title = item.Story.Title
			out[i].URL = item.Story.Source.URL
		case item.Card != nil:
			out[i].Title = item.Card.Title
		}
	}
	return out
}
