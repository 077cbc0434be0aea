package filters

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

type toggleCall struct {
	facet domain.FacetType
	value string
}

type fakeSession struct {
	available driving.AvailableFacets
	filters   domain.FilterState
	toggles   []toggleCall
	cleared   int
}

func (f *fakeSession) ID() string                       { return "session-1" }
func (f *fakeSession) Topic() domain.Topic              { return domain.Topic{ID: "brighton"} }
func (f *fakeSession) View() driving.FeedView           { return driving.FeedView{Filters: f.filters} }
func (f *fakeSession) LoadMore(_ context.Context) error { return nil }
func (f *fakeSession) Retry(_ context.Context) error    { return nil }

func (f *fakeSession) Toggle(_ context.Context, facet domain.FacetType, value string) error {
	f.toggles = append(f.toggles, toggleCall{facet: facet, value: value})
	if facet == domain.FacetKeyword {
		f.filters.Keywords = append(f.filters.Keywords, value)
	}
	return nil
}

func (f *fakeSession) Remove(_ context.Context, _ domain.FacetType, _ string) error { return nil }
func (f *fakeSession) SetFilters(_ context.Context, _ domain.FilterState) error      { return nil }

func (f *fakeSession) ClearAll(_ context.Context) error {
	f.cleared++
	f.filters = domain.FilterState{}
	return nil
}

func (f *fakeSession) Filters() domain.FilterState        { return f.filters }
func (f *fakeSession) Available() driving.AvailableFacets { return f.available }

func (f *fakeSession) MoreLikeThis(_ context.Context, _ string) (driving.MoreLikeThisResult, error) {
	return driving.MoreLikeThisResult{}, nil
}

func (f *fakeSession) Prefetch(_ context.Context, _ string) {}
func (f *fakeSession) NewestCreatedAt() time.Time           { return time.Time{} }
func (f *fakeSession) IsRendered(_ string) bool             { return false }
func (f *fakeSession) Close()                               {}

func (f *fakeSession) MergeNewStories(_ []domain.Story) driving.MergeOutcome {
	return driving.MergeNoop
}

func newSession() *fakeSession {
	return &fakeSession{
		available: driving.AvailableFacets{
			Keywords:  []domain.FacetCount{{Value: "pier", Count: 4}, {Value: "seafront", Count: 2}},
			Landmarks: []domain.FacetCount{{Value: "Royal Pavilion", Count: 1}},
			Sources:   []domain.FacetCount{{Value: "argus.co.uk", Count: 5}},
		},
	}
}

func newTestView(session *fakeSession) *View {
	v := NewView(nil)
	v.SetDimensions(80, 40)
	v.SetSession(session)
	return v
}

func TestBuildRows(t *testing.T) {
	session := newSession()
	session.filters = domain.FilterState{Keywords: []string{"Seafront"}, Organizations: []string{"Council"}}

	rows := BuildRows(session.available, session.filters)

	require.Len(t, rows, 5)
	assert.Equal(t, Row{Facet: domain.FacetKeyword, Value: "Seafront", Count: 2, Selected: true}, rows[0])
	assert.Equal(t, Row{Facet: domain.FacetKeyword, Value: "pier", Count: 4}, rows[1])
	assert.Equal(t, Row{Facet: domain.FacetLandmark, Value: "Royal Pavilion", Count: 1}, rows[2])
	assert.Equal(t, Row{Facet: domain.FacetOrganization, Value: "Council", Selected: true}, rows[3])
	assert.Equal(t, domain.FacetSource, rows[4].Facet)
}

func TestBuildRows_Empty(t *testing.T) {
	assert.Empty(t, BuildRows(driving.AvailableFacets{}, domain.FilterState{}))
}

func TestView_NoSession(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(80, 24)

	assert.Nil(t, v.Init())
	assert.Empty(t, v.Rows())
	assert.Contains(t, v.View(), "No filterable terms")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Nil(t, cmd)
}

func TestView_View_NotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", NewView(nil).View())
}

func TestView_View(t *testing.T) {
	session := newSession()
	session.filters = domain.FilterState{Keywords: []string{"pier"}}
	v := newTestView(session)

	out := v.View()

	assert.Contains(t, out, "Keywords")
	assert.Contains(t, out, "Landmarks")
	assert.Contains(t, out, "Sources")
	assert.NotContains(t, out, "Organisations")
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "(4)")
}

func TestView_Update_Navigate(t *testing.T) {
	v := newTestView(newSession())

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, v.Cursor())

	for range 5 {
		v.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 3, v.Cursor())

	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 2, v.Cursor())
}

func TestView_Update_Toggle(t *testing.T) {
	session := newSession()
	v := newTestView(session)
	v.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, cmd)

	_, again := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again, "toggles are ignored while one is running")

	msg := cmd()
	changed, ok := msg.(messages.FiltersChanged)
	require.True(t, ok)
	assert.NoError(t, changed.Err)
	assert.Equal(t, []toggleCall{{facet: domain.FacetKeyword, value: "seafront"}}, session.toggles)

	v.Update(changed)

	rows := v.Rows()
	require.NotEmpty(t, rows)
	assert.Equal(t, "seafront", rows[0].Value)
	assert.True(t, rows[0].Selected)
}

func TestView_Update_Clear(t *testing.T) {
	session := newSession()
	session.filters = domain.FilterState{Keywords: []string{"pier"}}
	v := newTestView(session)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Equal(t, 1, session.cleared)
	for _, row := range v.Rows() {
		assert.False(t, row.Selected)
	}
}

func TestView_Update_ClearWithoutFilters(t *testing.T) {
	session := newSession()
	v := newTestView(session)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})

	assert.Nil(t, cmd)
	assert.Equal(t, 0, session.cleared)
}

func TestView_Update_Back(t *testing.T) {
	v := newTestView(newSession())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewFeed}, cmd())
}
