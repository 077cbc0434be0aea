package services

import (
	"slices"
	"strings"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// FilterPhase is the state of the filter machine.
type FilterPhase string

// Filter machine phases.
const (
	PhaseIdle      FilterPhase = "idle"
	PhaseFiltering FilterPhase = "filtering"
)

// FilterMode says where a refilter runs.
type FilterMode string

// Filter modes.
const (
	// FilterModeClient refilters the stories already loaded.
	FilterModeClient FilterMode = "client"

	// FilterModeServer restarts pagination with the filters sent upstream.
	FilterModeServer FilterMode = "server"
)

// FilterMachine holds the selected facet values of one feed session.
// It performs no I/O and is not safe for concurrent use; the owning
// session serialises access.
type FilterMachine struct {
	index *FacetIndex
	state domain.FilterState
}

// NewFilterMachine creates an idle filter machine. The index supplies the
// facet values offered by the Available methods.
func NewFilterMachine(index *FacetIndex) *FilterMachine {
	return &FilterMachine{index: index}
}

// Toggle selects value if it is not selected and deselects it otherwise.
// Returns true if the value is selected afterwards.
func (m *FilterMachine) Toggle(facet domain.FacetType, value string) bool {
	if m.isSelected(facet, value) {
		m.Remove(facet, value)
		return false
	}
	return m.Add(facet, value)
}

// Add selects value. Returns true if the selection changed.
func (m *FilterMachine) Add(facet domain.FacetType, value string) bool {
	value = strings.TrimSpace(value)
	if !facet.IsValid() || value == "" || m.isSelected(facet, value) {
		return false
	}
	values := m.slot(facet)
	*values = append(*values, value)
	return true
}

// Remove deselects value. Removing an unselected value is a no-op and
// returns false.
func (m *FilterMachine) Remove(facet domain.FacetType, value string) bool {
	if !facet.IsValid() {
		return false
	}
	values := m.slot(facet)
	for i, v := range *values {
		if strings.EqualFold(v, strings.TrimSpace(value)) {
			rest := append((*values)[:i:i], (*values)[i+1:]...)
			if len(rest) == 0 {
				rest = nil
			}
			*values = rest
			m.dropSubstring(facet, value)
			return true
		}
	}
	return false
}

// ClearAll deselects everything. Returns true if anything was selected.
func (m *FilterMachine) ClearAll() bool {
	changed := m.HasActiveFilters()
	m.state = domain.FilterState{}
	return changed
}

// Replace clears the selection and selects every value of state.
func (m *FilterMachine) Replace(state domain.FilterState) {
	m.state = domain.FilterState{}
	for _, facet := range domain.FacetTypes() {
		for _, v := range state.Values(facet) {
			m.Add(facet, v)
		}
	}
	for _, sm := range state.Substring {
		if m.isSelected(sm.Facet, sm.Value) && !m.state.IsSubstring(sm.Facet, sm.Value) {
			m.state.Substring = append(m.state.Substring, sm)
		}
	}
}

// HasActiveFilters reports whether any value is selected.
func (m *FilterMachine) HasActiveFilters() bool {
	return !m.state.IsEmpty()
}

// Phase returns PhaseFiltering while any value is selected.
func (m *FilterMachine) Phase() FilterPhase {
	if m.HasActiveFilters() {
		return PhaseFiltering
	}
	return PhaseIdle
}

// State returns a copy of the selection.
func (m *FilterMachine) State() domain.FilterState {
	return domain.FilterState{
		Keywords:      cloneStrings(m.state.Keywords),
		Landmarks:     cloneStrings(m.state.Landmarks),
		Organizations: cloneStrings(m.state.Organizations),
		Sources:       cloneStrings(m.state.Sources),
		Substring:     slices.Clone(m.state.Substring),
	}
}

// Matches reports whether a story passes the current selection.
func (m *FilterMachine) Matches(story *domain.Story) bool {
	return m.state.Matches(story)
}

// Apply returns the stories that pass the current selection, in order.
func (m *FilterMachine) Apply(stories []domain.Story) []domain.Story {
	if !m.HasActiveFilters() {
		return stories
	}
	out := make([]domain.Story, 0, len(stories))
	for i := range stories {
		if m.state.Matches(&stories[i]) {
			out = append(out, stories[i])
		}
	}
	return out
}

// Classify picks the refilter mode. Filtering runs client-side only when
// the unfiltered stream is fully loaded; otherwise upstream must page
// through the filtered stream.
func (m *FilterMachine) Classify(complete bool) FilterMode {
	if complete {
		return FilterModeClient
	}
	return FilterModeServer
}

// Available returns the values of a facet observed in stories.
func (m *FilterMachine) Available(facet domain.FacetType, stories []domain.Story) []domain.FacetCount {
	if m.index == nil {
		return nil
	}
	return m.index.Occurrences(stories, facet)
}

// AvailableKeywords returns the keywords observed in stories.
func (m *FilterMachine) AvailableKeywords(stories []domain.Story) []domain.FacetCount {
	return m.Available(domain.FacetKeyword, stories)
}

// AvailableLandmarks returns the landmarks observed in stories.
func (m *FilterMachine) AvailableLandmarks(stories []domain.Story) []domain.FacetCount {
	return m.Available(domain.FacetLandmark, stories)
}

// AvailableOrganizations returns the organisations observed in stories.
func (m *FilterMachine) AvailableOrganizations(stories []domain.Story) []domain.FacetCount {
	return m.Available(domain.FacetOrganization, stories)
}

// AvailableSources returns the source domains observed in stories.
func (m *FilterMachine) AvailableSources(stories []domain.Story) []domain.FacetCount {
	return m.Available(domain.FacetSource, stories)
}

func (m *FilterMachine) dropSubstring(facet domain.FacetType, value string) {
	value = strings.TrimSpace(value)
	m.state.Substring = slices.DeleteFunc(m.state.Substring, func(sm domain.FacetMatch) bool {
		return sm.Facet == facet && strings.EqualFold(sm.Value, value)
	})
	if len(m.state.Substring) == 0 {
		m.state.Substring = nil
	}
}

func (m *FilterMachine) isSelected(facet domain.FacetType, value string) bool {
	value = strings.TrimSpace(value)
	for _, v := range m.state.Values(facet) {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

func (m *FilterMachine) slot(facet domain.FacetType) *[]string {
	switch facet {
	case domain.FacetLandmark:
		return &m.state.Landmarks
	case domain.FacetOrganization:
		return &m.state.Organizations
	case domain.FacetSource:
		return &m.state.Sources
	default:
		return &m.state.Keywords
	}
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
