package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/logger"
)

// MaxFacetMatches is the number of facet values "more like this" applies.
const MaxFacetMatches = 2

// minCandidateLength is the shortest value that can be a match candidate.
const minCandidateLength = 3

// candidateOrder is the priority in which facet types are matched.
var candidateOrder = []domain.FacetType{
	domain.FacetLandmark,
	domain.FacetOrganization,
	domain.FacetKeyword,
}

// FacetRelevance counts word-boundary hits per facet type.
type FacetRelevance map[domain.FacetType]int

// Total returns the hit count across every facet type.
func (r FacetRelevance) Total() int {
	total := 0
	for _, n := range r {
		total += n
	}
	return total
}

// FacetIndex holds a topic's precompiled match candidates.
// It is built once per topic load and is safe for concurrent reads.
type FacetIndex struct {
	topic      domain.Topic
	candidates []FacetCandidate
	strategy   MatchStrategy
}

// FacetIndexOption configures a FacetIndex.
type FacetIndexOption func(*FacetIndex)

// WithMatchStrategy replaces the default two-pass strategy.
func WithMatchStrategy(strategy MatchStrategy) FacetIndexOption {
	return func(x *FacetIndex) {
		if strategy != nil {
			x.strategy = strategy
		}
	}
}

// NewFacetIndex builds the candidate list for a topic in priority order
// (landmarks, organizations, keywords). Values of two characters or fewer
// and values equal to the topic's own name are dropped.
func NewFacetIndex(topic domain.Topic, opts ...FacetIndexOption) *FacetIndex {
	x := &FacetIndex{
		topic:    topic,
		strategy: DefaultMatchStrategy(),
	}
	for _, opt := range opts {
		opt(x)
	}

	for _, facet := range candidateOrder {
		for _, value := range topic.FacetValues(facet) {
			value = strings.TrimSpace(value)
			if len(value) < minCandidateLength || topic.IsOwnName(value) {
				continue
			}
			x.candidates = append(x.candidates, NewFacetCandidate(facet, value))
		}
	}

	logger.Debug("facet index for %s: %d candidates", topic.ID, len(x.candidates))
	return x
}

// Candidates returns the match candidates in priority order.
func (x *FacetIndex) Candidates() []FacetCandidate {
	out := make([]FacetCandidate, len(x.candidates))
	copy(out, x.candidates)
	return out
}

// ComputeMatches returns up to MaxFacetMatches facet values found in the story.
func (x *FacetIndex) ComputeMatches(story *domain.Story) []domain.FacetMatch {
	if story == nil {
		return nil
	}
	return x.strategy.Match(story.Text(), x.candidates, MaxFacetMatches)
}

// Relevance counts the candidates of each facet type that occur in the story
// on word boundaries.
func (x *FacetIndex) Relevance(story *domain.Story) FacetRelevance {
	rel := make(FacetRelevance)
	if story == nil {
		return rel
	}
	text := story.Text()
	for _, c := range x.candidates {
		if c.pattern.MatchString(text) {
			rel[c.Facet]++
		}
	}
	return rel
}

// Occurrences counts, for each value of a facet, the loaded stories it occurs
// in. Values that never occur are omitted. Text facets count the topic's
// configured values; the source facet counts observed source domains.
// Results are ordered by count descending, then value.
func (x *FacetIndex) Occurrences(stories []domain.Story, facet domain.FacetType) []domain.FacetCount {
	if facet == domain.FacetSource {
		return sourceOccurrences(stories)
	}

	var counts []domain.FacetCount
	seen := make(map[string]bool)
	texts := make([]string, 0, len(stories))
	for i := range stories {
		if stories[i].IsGhost() {
			continue
		}
		texts = append(texts, stories[i].Text())
	}

	for _, value := range x.topic.FacetValues(facet) {
		value = strings.TrimSpace(value)
		key := strings.ToLower(value)
		if value == "" || seen[key] {
			continue
		}
		seen[key] = true

		n := 0
		for _, text := range texts {
			if domain.ContainsWord(text, value) {
				n++
			}
		}
		if n > 0 {
			counts = append(counts, domain.FacetCount{Value: value, Count: n})
		}
	}

	sortCounts(counts)
	return counts
}

func sourceOccurrences(stories []domain.Story) []domain.FacetCount {
	byDomain := make(map[string]int)
	for i := range stories {
		if stories[i].IsGhost() {
			continue
		}
		host, err := stories[i].SourceDomain()
		if err != nil {
			logger.Warn("skipping source facet: %v", err)
			continue
		}
		byDomain[host]++
	}

	counts := make([]domain.FacetCount, 0, len(byDomain))
	for host, n := range byDomain {
		counts = append(counts, domain.FacetCount{Value: host, Count: n})
	}
	sortCounts(counts)
	return counts
}

func sortCounts(counts []domain.FacetCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
}
