package services

import (
	"fmt"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
	"github.com/custodia-labs/storyfeed/internal/logger"
)

// Verify interface compliance.
var _ driving.SlotDiagnostics = (*SlotRegistry)(nil)

// DefaultSlotRules returns the shipped slot table. Every card type owns
// distinct residues modulo 12, so no two types ever claim the same index.
func DefaultSlotRules() []domain.SlotRule {
	return []domain.SlotRule{
		{Card: domain.CardSentiment, EveryN: 6, Offset: 0},
		{Card: domain.CardInsight, EveryN: 6, Offset: 3},
		{Card: domain.CardQuiz, EveryN: 12, Offset: 1},
		{Card: domain.CardFlashback, EveryN: 12, Offset: 2},
		{Card: domain.CardCommunityPulse, EveryN: 12, Offset: 5},
		{Card: domain.CardEvents, EveryN: 12, Offset: 7},
		{Card: domain.CardParliamentaryDigest, EveryN: 12, Offset: 11},
	}
}

// SlotRegistry decides where side content is placed in the story stream.
// A registry is immutable once built; per-topic variants are derived with
// ForTopic.
type SlotRegistry struct {
	rules  []domain.SlotRule
	byCard map[domain.CardType]domain.SlotRule
}

// NewSlotRegistry validates a slot table and builds a registry from it.
func NewSlotRegistry(rules []domain.SlotRule) (*SlotRegistry, error) {
	r := &SlotRegistry{
		rules:  make([]domain.SlotRule, 0, len(rules)),
		byCard: make(map[domain.CardType]domain.SlotRule, len(rules)),
	}

	for _, rule := range rules {
		if !rule.Card.IsValid() {
			return nil, fmt.Errorf("%w: unknown card type %q", domain.ErrSlotConfig, rule.Card)
		}
		if rule.EveryN <= 0 {
			return nil, fmt.Errorf("%w: %s: every_n must be positive, got %d", domain.ErrSlotConfig, rule.Card, rule.EveryN)
		}
		if rule.Offset < 0 || rule.Offset >= rule.EveryN {
			return nil, fmt.Errorf("%w: %s: offset %d outside [0, %d)", domain.ErrSlotConfig, rule.Card, rule.Offset, rule.EveryN)
		}
		if _, dup := r.byCard[rule.Card]; dup {
			return nil, fmt.Errorf("%w: %s listed twice", domain.ErrSlotConfig, rule.Card)
		}
		r.rules = append(r.rules, rule)
		r.byCard[rule.Card] = rule
	}

	return r, nil
}

// DefaultSlotRegistry returns a registry over DefaultSlotRules.
func DefaultSlotRegistry() *SlotRegistry {
	r, err := NewSlotRegistry(DefaultSlotRules())
	if err != nil {
		panic(err) // shipped table is static
	}
	return r
}

// Rules returns the slot table in evaluation order.
func (r *SlotRegistry) Rules() []domain.SlotRule {
	out := make([]domain.SlotRule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Rule returns the rule for a card type.
func (r *SlotRegistry) Rule(card domain.CardType) (domain.SlotRule, bool) {
	rule, ok := r.byCard[card]
	return rule, ok
}

// ShouldShow reports whether a card of the given type belongs after the
// story at storyIndex. Cards never show before their EveryN threshold.
func (r *SlotRegistry) ShouldShow(card domain.CardType, storyIndex int) bool {
	rule, ok := r.byCard[card]
	if !ok {
		return false
	}
	return storyIndex >= rule.EveryN+rule.Offset && (storyIndex-rule.Offset)%rule.EveryN == 0
}

// CardInstanceIndex returns the 0-based occurrence ordinal of a card type at
// storyIndex, or -1 if the card does not show there.
func (r *SlotRegistry) CardInstanceIndex(card domain.CardType, storyIndex int) int {
	if !r.ShouldShow(card, storyIndex) {
		return -1
	}
	rule := r.byCard[card]
	return (storyIndex-rule.Offset)/rule.EveryN - 1
}

// CardsAt returns the card types placed after storyIndex, in table order.
func (r *SlotRegistry) CardsAt(storyIndex int) []domain.CardType {
	var cards []domain.CardType
	for _, rule := range r.rules {
		if r.ShouldShow(rule.Card, storyIndex) {
			cards = append(cards, rule.Card)
		}
	}
	return cards
}

// ForTopic derives a registry honoring a topic's side-content switches:
// disabled card types are dropped and cadence overrides replace EveryN.
// An offset that no longer fits the new cadence wraps around it.
func (r *SlotRegistry) ForTopic(cfg domain.SideContentConfig) (*SlotRegistry, error) {
	rules := make([]domain.SlotRule, 0, len(r.rules))
	for _, rule := range r.rules {
		if !cfg.IsEnabled(rule.Card) {
			continue
		}
		if n := cfg.CadenceFor(rule.Card); n > 0 {
			rule.EveryN = n
			rule.Offset %= n
		}
		rules = append(rules, rule)
	}
	return NewSlotRegistry(rules)
}

// CollisionCheckSpan is the number of story indices a slot table is checked
// over when it is built.
const CollisionCheckSpan = 50

// CollisionReport simulates story indices [0, n) and returns every index
// claimed by more than one card type. n is capped at domain.MaxSlotSpan.
func (r *SlotRegistry) CollisionReport(n int) []domain.SlotCollision {
	n = min(n, domain.MaxSlotSpan)

	var collisions []domain.SlotCollision
	for i := 0; i < n; i++ {
		if cards := r.CardsAt(i); len(cards) > 1 {
			collisions = append(collisions, domain.SlotCollision{StoryIndex: i, Cards: cards})
		}
	}
	return collisions
}

// LogCollisionReport runs CollisionReport and logs each collision.
func (r *SlotRegistry) LogCollisionReport(n int) []domain.SlotCollision {
	collisions := r.CollisionReport(n)
	for _, c := range collisions {
		logger.Warn("slot collision at story %d: %v", c.StoryIndex, c.Cards)
	}
	if len(collisions) == 0 {
		logger.Debug("slot table: no collisions in [0, %d)", n)
	}
	return collisions
}
