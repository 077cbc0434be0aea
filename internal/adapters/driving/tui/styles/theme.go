// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

// Theme defines the colour palette and styling for the TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Background is the background colour.
	Background lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color

	// Cards maps side-content types to their accent colour. Types without an
	// entry use Primary.
	Cards map[domain.CardType]lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#E4572E"), // Masthead red
		Secondary:  lipgloss.Color("#4E8098"), // Slate blue
		Background: lipgloss.Color("#1B1B1E"), // Ink
		Foreground: lipgloss.Color("#EDE6DB"), // Newsprint
		Muted:      lipgloss.Color("#7A7772"), // Grey
		Success:    lipgloss.Color("#7BC67B"), // Green
		Warning:    lipgloss.Color("#F2C14E"), // Amber
		Error:      lipgloss.Color("#F25F5C"), // Red
		Border:     lipgloss.Color("#3A3A40"), // Border grey
		Cards: map[domain.CardType]lipgloss.Color{
			domain.CardSentiment:           lipgloss.Color("#7BC67B"),
			domain.CardQuiz:                lipgloss.Color("#F2C14E"),
			domain.CardInsight:             lipgloss.Color("#4E8098"),
			domain.CardEvents:              lipgloss.Color("#C879B2"),
			domain.CardCommunityPulse:      lipgloss.Color("#59C3C3"),
			domain.CardParliamentaryDigest: lipgloss.Color("#A0A4B8"),
			domain.CardFlashback:           lipgloss.Color("#D9A066"),
		},
	}
}

// CardAccent returns the accent colour of a card type.
func (t *Theme) CardAccent(card domain.CardType) lipgloss.Color {
	if c, ok := t.Cards[card]; ok {
		return c
	}
	return t.Primary
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Subtitle style for secondary headers.
	Subtitle lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Selected style for highlighted items.
	Selected lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// Success style for success messages.
	Success lipgloss.Style

	// Warning style for warning messages.
	Warning lipgloss.Style

	// Story style for story headlines.
	Story lipgloss.Style

	// Parliamentary style for parliamentary mentions in the stream.
	Parliamentary lipgloss.Style

	// Card style for side-content cards between stories.
	Card lipgloss.Style

	// Marker style for the load-more and end-of-feed rows.
	Marker lipgloss.Style

	// Banner style for the "N new stories" affordance.
	Banner lipgloss.Style

	// Chip style for selected filter values.
	Chip lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style

	// Help style for help text.
	Help lipgloss.Style

	// Border style for bordered containers.
	Border lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Story: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Parliamentary: lipgloss.NewStyle().
			Italic(true).
			Foreground(theme.Secondary),

		Card: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(theme.Primary).
			Foreground(theme.Foreground).
			PaddingLeft(1),

		Marker: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Banner: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Background).
			Background(theme.Success).
			Padding(0, 1),

		Chip: lipgloss.NewStyle().
			Foreground(theme.Background).
			Background(theme.Secondary).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Border).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// ForCard returns the card style with the card type's accent on its border.
func (s *Styles) ForCard(card domain.CardType) lipgloss.Style {
	return s.Card.BorderForeground(s.theme.CardAccent(card))
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
