// Package filters provides the facet filter panel of an open feed.
package filters

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

// Row is one selectable facet value.
type Row struct {
	Facet    domain.FacetType
	Value    string
	Count    int
	Selected bool
}

// View lists observed facet values with their selection state.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	ctx     context.Context
	session driving.FeedSession
	rows    []Row
	cursor  int
	busy    bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates an empty filter panel.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keymap: keymap.DefaultKeyMap(),
		ctx:    context.Background(),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context for session calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetSession points the panel at a session and rebuilds its rows.
func (v *View) SetSession(session driving.FeedSession) {
	v.session = session
	v.cursor = 0
	v.err = nil
	v.Refresh()
}

// Refresh rebuilds the rows from the session's observed and selected values.
func (v *View) Refresh() {
	v.rows = nil
	if v.session == nil {
		return
	}
	v.rows = BuildRows(v.session.Available(), v.session.Filters())
	if v.cursor >= len(v.rows) {
		v.cursor = max(len(v.rows)-1, 0)
	}
}

// BuildRows lists selected values first within each facet, followed by the
// observed values in the order given.
func BuildRows(available driving.AvailableFacets, filters domain.FilterState) []Row {
	var rows []Row
	for _, facet := range domain.FacetTypes() {
		selected := filters.Values(facet)
		seen := make(map[string]bool, len(selected))
		for _, value := range selected {
			seen[strings.ToLower(value)] = true
			rows = append(rows, Row{Facet: facet, Value: value, Selected: true})
		}
		for _, fc := range observed(available, facet) {
			key := strings.ToLower(fc.Value)
			if seen[key] {
				for i := range rows {
					if rows[i].Facet == facet && strings.EqualFold(rows[i].Value, fc.Value) {
						rows[i].Count = fc.Count
					}
				}
				continue
			}
			seen[key] = true
			rows = append(rows, Row{Facet: facet, Value: fc.Value, Count: fc.Count})
		}
	}
	return rows
}

func observed(available driving.AvailableFacets, facet domain.FacetType) []domain.FacetCount {
	switch facet {
	case domain.FacetKeyword:
		return available.Keywords
	case domain.FacetLandmark:
		return available.Landmarks
	case domain.FacetOrganization:
		return available.Organizations
	case domain.FacetSource:
		return available.Sources
	}
	return nil
}

// Init refreshes the rows.
func (v *View) Init() tea.Cmd {
	v.Refresh()
	return nil
}

// Update handles messages for the filter panel.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.FiltersChanged:
		v.busy = false
		v.err = msg.Err
		v.Refresh()
		return v, nil

	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(key string) tea.Cmd {
	km := v.keymap
	switch {
	case keymap.Matches(key, km.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case keymap.Matches(key, km.Down):
		if v.cursor < len(v.rows)-1 {
			v.cursor++
		}
	case keymap.Matches(key, km.Toggle):
		return v.toggle()
	case keymap.Matches(key, km.Clear):
		return v.clear()
	case keymap.Matches(key, km.Back):
		return func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewFeed}
		}
	}
	return nil
}

func (v *View) toggle() tea.Cmd {
	if v.session == nil || v.busy || v.cursor >= len(v.rows) {
		return nil
	}
	row := v.rows[v.cursor]
	v.busy = true
	session, ctx := v.session, v.ctx
	return func() tea.Msg {
		return messages.FiltersChanged{Err: session.Toggle(ctx, row.Facet, row.Value)}
	}
}

func (v *View) clear() tea.Cmd {
	if v.session == nil || v.busy || v.session.Filters().IsEmpty() {
		return nil
	}
	v.busy = true
	session, ctx := v.session, v.ctx
	return func() tea.Msg {
		return messages.FiltersChanged{Err: session.ClearAll(ctx)}
	}
}

// View renders the filter panel.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Filters"))
	b.WriteString("\n\n")

	if len(v.rows) == 0 {
		b.WriteString(v.styles.Muted.Render("No filterable terms in the loaded stories yet."))
		b.WriteString("\n")
	}

	var facet domain.FacetType
	for i, row := range v.rows {
		if row.Facet != facet {
			facet = row.Facet
			b.WriteString(v.styles.Subtitle.Render(facetHeading(facet)))
			b.WriteString("\n")
		}

		cursor := "  "
		style := v.styles.Normal
		if i == v.cursor {
			cursor = "> "
			style = v.styles.Selected
		}
		box := "[ ]"
		if row.Selected {
			box = "[x]"
		}
		line := fmt.Sprintf("%s%s %s", cursor, box, style.Render(row.Value))
		if row.Count > 0 {
			line += v.styles.Muted.Render(fmt.Sprintf(" (%d)", row.Count))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(v.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[space] Toggle  [c] Clear all  [esc] Back to feed"))
	return b.String()
}

func facetHeading(facet domain.FacetType) string {
	switch facet {
	case domain.FacetKeyword:
		return "Keywords"
	case domain.FacetLandmark:
		return "Landmarks"
	case domain.FacetOrganization:
		return "Organisations"
	case domain.FacetSource:
		return "Sources"
	}
	return facet.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Rows returns the current rows.
func (v *View) Rows() []Row {
	return v.rows
}

// Cursor returns the cursor position.
func (v *View) Cursor() int {
	return v.cursor
}
