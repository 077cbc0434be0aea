// Package feed provides the assembled feed view of one topic.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

// chrome is the number of lines used by the header, banner and help line.
const chrome = 7

// View renders a feed session and drives its pagination and filters.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	ctx      context.Context
	session  driving.FeedSession
	monitor  driving.FreshnessMonitor
	spinner  spinner.Model
	selected int
	busy     bool
	notice   string
	width    int
	height   int
	ready    bool
}

// NewView creates an empty feed view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Muted

	return &View{
		styles:  s,
		keymap:  keymap.DefaultKeyMap(),
		ctx:     context.Background(),
		spinner: sp,
		width:   80,
		height:  24,
	}
}

// WithContext sets the context for session calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetSession shows a newly opened session. The monitor may be nil.
func (v *View) SetSession(session driving.FeedSession, monitor driving.FreshnessMonitor) {
	v.session = session
	v.monitor = monitor
	v.selected = 0
	v.busy = false
	v.notice = ""
}

// Session returns the session being shown, or nil.
func (v *View) Session() driving.FeedSession {
	return v.session
}

// Init starts the spinner when the feed is still loading.
func (v *View) Init() tea.Cmd {
	if v.session == nil {
		return nil
	}
	if v.session.View().IsLoadingMore {
		v.busy = true
		return v.spinner.Tick
	}
	return nil
}

// Update handles messages for the feed view.
//
//nolint:gocyclo // central key handler
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.PageLoaded:
		v.busy = false
		v.notice = noticeFor(msg.Err)
		return v, nil

	case messages.FiltersChanged:
		v.busy = false
		v.selected = 0
		v.notice = noticeFor(msg.Err)
		return v, nil

	case messages.MoreLikeThisDone:
		return v, v.handleMoreLikeThis(msg)

	case messages.FreshnessTick:
		return v, nil

	case tea.KeyMsg:
		if v.session == nil {
			return v, nil
		}
		return v, v.handleKey(msg.String())
	}

	return v, nil
}

func (v *View) handleKey(key string) tea.Cmd {
	km := v.keymap
	switch {
	case keymap.Matches(key, km.Up):
		if v.selected > 0 {
			v.selected--
		}
		return v.onSelect()

	case keymap.Matches(key, km.Down):
		if v.selected < len(v.session.View().Items)-1 {
			v.selected++
		}
		return v.onSelect()

	case keymap.Matches(key, km.LoadMore):
		return v.loadMore()

	case keymap.Matches(key, km.Retry):
		return v.retry()

	case keymap.Matches(key, km.Filters):
		return changeView(messages.ViewFilters)

	case keymap.Matches(key, km.Clear):
		if v.session.Filters().IsEmpty() {
			return nil
		}
		return v.clearFilters()

	case keymap.Matches(key, km.MoreLikeThis):
		return v.moreLikeThis()

	case keymap.Matches(key, km.ShowNew):
		return v.showNew()

	case keymap.Matches(key, km.Back):
		return changeView(messages.ViewTopics)

	case keymap.Matches(key, km.Help):
		return changeView(messages.ViewHelp)
	}
	return nil
}

// onSelect prefetches the selected story and loads the next page when the
// selection reaches the load-more marker.
func (v *View) onSelect() tea.Cmd {
	item, ok := v.SelectedItem()
	if !ok {
		return nil
	}

	switch {
	case item.Kind == domain.ItemLoadMore:
		return v.loadMore()
	case item.Story != nil:
		session, ctx, id := v.session, v.ctx, item.Story.ID
		return func() tea.Msg {
			session.Prefetch(ctx, id)
			return nil
		}
	}
	return nil
}

func (v *View) loadMore() tea.Cmd {
	snapshot := v.session.View()
	if !snapshot.HasMore || snapshot.IsLoadingMore || v.busy {
		return nil
	}
	v.busy = true
	session, ctx := v.session, v.ctx
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		return messages.PageLoaded{Err: session.LoadMore(ctx)}
	})
}

func (v *View) retry() tea.Cmd {
	snapshot := v.session.View()
	if snapshot.Err == nil || !snapshot.CanRetry || v.busy {
		return nil
	}
	v.busy = true
	session, ctx := v.session, v.ctx
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		return messages.PageLoaded{Err: session.Retry(ctx)}
	})
}

func (v *View) clearFilters() tea.Cmd {
	v.busy = true
	session, ctx := v.session, v.ctx
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		return messages.FiltersChanged{Err: session.ClearAll(ctx)}
	})
}

func (v *View) moreLikeThis() tea.Cmd {
	item, ok := v.SelectedItem()
	if !ok || item.Story == nil {
		return nil
	}
	v.busy = true
	session, ctx, id := v.session, v.ctx, item.Story.ID
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		result, err := session.MoreLikeThis(ctx, id)
		return messages.MoreLikeThisDone{StoryID: id, Result: result, Err: err}
	})
}

func (v *View) handleMoreLikeThis(msg messages.MoreLikeThisDone) tea.Cmd {
	v.busy = false
	if msg.Err != nil {
		v.notice = noticeFor(msg.Err)
		return nil
	}
	if msg.Result.OpenFilterUI {
		v.notice = "No topic terms in this story. Pick filters instead."
		return changeView(messages.ViewFilters)
	}
	if msg.Result.ScrollToTop {
		v.selected = 0
	}
	values := make([]string, 0, len(msg.Result.Matches))
	for _, m := range msg.Result.Matches {
		values = append(values, m.Value)
	}
	v.notice = "More like this: " + strings.Join(values, ", ")
	return nil
}

func (v *View) showNew() tea.Cmd {
	if v.monitor == nil || !v.monitor.HasNewStories() {
		return nil
	}
	switch v.monitor.Apply() {
	case driving.MergeApplied:
		v.selected = 0
		v.notice = ""
	case driving.MergeQueued:
		v.notice = "New stories will appear after this page loads."
	case driving.MergeNoop:
	}
	return nil
}

// noticeFor turns a command error into a one-line notice. Stale results and
// closed sessions are silent.
func noticeFor(err error) string {
	if err == nil || errors.Is(err, domain.ErrStaleResult) || errors.Is(err, domain.ErrSessionClosed) {
		return ""
	}
	return err.Error()
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg {
		return messages.ViewChanged{View: view}
	}
}

// View renders the feed.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}
	if v.session == nil {
		return v.styles.Muted.Render("Opening feed...")
	}

	snapshot := v.session.View()
	topic := v.session.Topic()

	var b strings.Builder
	b.WriteString(v.styles.Title.Render(topic.Name))
	if v.busy || snapshot.IsLoadingMore {
		b.WriteString(" " + v.spinner.View())
	}
	b.WriteString("\n")

	if snapshot.HasNewStories {
		b.WriteString(v.styles.Banner.Render(
			fmt.Sprintf("%d new %s (n to show)", snapshot.NewStoryCount, plural(snapshot.NewStoryCount, "story", "stories")),
		))
		b.WriteString("\n")
	}

	if !snapshot.Filters.IsEmpty() {
		b.WriteString(v.renderFilters(snapshot.Filters))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch snapshot.Empty {
	case driving.EmptyNoContent:
		b.WriteString(v.styles.Muted.Render("No stories for this topic yet."))
		b.WriteString("\n")
	case driving.EmptyNoMatches:
		b.WriteString(v.styles.Muted.Render("No stories match these filters. Press c to clear them."))
		b.WriteString("\n")
	case driving.EmptyNone:
		v.renderItems(&b, snapshot.Items, snapshot)
	}

	if snapshot.Err != nil {
		b.WriteString("\n")
		b.WriteString(v.renderError(snapshot))
		b.WriteString("\n")
	}

	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render(v.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [m] More  [f] Filters  [l] Like this  [esc] Topics"))

	return b.String()
}

func (v *View) renderFilters(filters domain.FilterState) string {
	var chips []string
	for _, facet := range domain.FacetTypes() {
		for _, value := range filters.Values(facet) {
			chips = append(chips, v.styles.Chip.Render(value))
		}
	}
	return v.styles.Muted.Render("Filters: ") + strings.Join(chips, " ")
}

// renderItems writes the window of items around the selection.
func (v *View) renderItems(b *strings.Builder, items []domain.ContentItem, snapshot driving.FeedView) {
	rows := v.height - chrome
	if rows < 3 {
		rows = 3
	}
	start := 0
	if v.selected >= rows {
		start = v.selected - rows + 1
	}
	end := min(start+rows, len(items))

	for i := start; i < end; i++ {
		cursor := "  "
		if i == v.selected {
			cursor = "> "
		}
		b.WriteString(cursor + v.renderItem(&items[i], snapshot, i == v.selected))
		b.WriteString("\n")
	}
}

func (v *View) renderItem(item *domain.ContentItem, snapshot driving.FeedView, selected bool) string {
	switch {
	case item.Kind == domain.ItemStory:
		style := v.styles.Story
		if selected {
			style = v.styles.Selected
		}
		line := style.Render(item.Story.Title)
		if host, err := item.Story.SourceDomain(); err == nil {
			line += "  " + v.styles.Muted.Render(host)
		}
		return line

	case item.Kind == domain.ItemParliamentaryMention:
		return v.styles.Parliamentary.Render("Parliament: " + item.Story.Title)

	case item.Kind.IsCard():
		return v.styles.ForCard(item.Card.Type).Render(fmt.Sprintf("%s  %s", cardLabel(item.Card.Type), item.Card.Title))

	case item.Kind == domain.ItemLoadMore:
		if snapshot.IsLoadingMore {
			return v.styles.Marker.Render("loading more stories...")
		}
		return v.styles.Marker.Render("more stories (m)")

	case item.Kind == domain.ItemEndOfFeed:
		return v.styles.Marker.Render("you're all caught up")
	}
	return ""
}

func (v *View) renderError(snapshot driving.FeedView) string {
	if !snapshot.CanRetry {
		return v.styles.Error.Render(fmt.Sprintf(
			"Could not load stories after %d attempts. Retry limit reached.", snapshot.Attempts))
	}
	return v.styles.Error.Render(fmt.Sprintf(
		"Could not load stories (attempt %d): %v. Press r to retry.", snapshot.Attempts, snapshot.Err))
}

func cardLabel(card domain.CardType) string {
	switch card {
	case domain.CardSentiment:
		return "Mood"
	case domain.CardQuiz:
		return "Quiz"
	case domain.CardInsight:
		return "Insight"
	case domain.CardEvents:
		return "Events"
	case domain.CardCommunityPulse:
		return "Community"
	case domain.CardParliamentaryDigest:
		return "Parliament digest"
	case domain.CardFlashback:
		return "Flashback"
	}
	return card.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the selected item index.
func (v *View) Selected() int {
	return v.selected
}

// SelectedItem returns the selected item, if any.
func (v *View) SelectedItem() (domain.ContentItem, bool) {
	if v.session == nil {
		return domain.ContentItem{}, false
	}
	items := v.session.View().Items
	if v.selected < 0 || v.selected >= len(items) {
		return domain.ContentItem{}, false
	}
	return items[v.selected], true
}

// Notice returns the last one-line notice.
func (v *View) Notice() string {
	return v.notice
}

// Busy reports whether a command started by the view is still running.
func (v *View) Busy() bool {
	return v.busy
}
