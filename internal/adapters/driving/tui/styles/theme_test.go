package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.Equal(t, lipgloss.Color("#E4572E"), theme.Primary)
	assert.NotEqual(t, theme.Primary, theme.Secondary)
	assert.NotEqual(t, theme.Foreground, theme.Background)
	assert.NotEqual(t, theme.Success, theme.Error)
}

func TestDefaultTheme_EveryCardTypeHasAnAccent(t *testing.T) {
	theme := DefaultTheme()

	seen := make(map[lipgloss.Color]domain.CardType)
	for _, card := range domain.CardTypes() {
		accent, ok := theme.Cards[card]
		require.True(t, ok, card)
		if other, dup := seen[accent]; dup {
			t.Errorf("%s and %s share accent %s", card, other, accent)
		}
		seen[accent] = card
	}
}

func TestTheme_CardAccent(t *testing.T) {
	theme := DefaultTheme()

	assert.Equal(t, theme.Cards[domain.CardQuiz], theme.CardAccent(domain.CardQuiz))
	assert.Equal(t, theme.Primary, theme.CardAccent(domain.CardType("horoscope")))

	bare := &Theme{Primary: lipgloss.Color("#000000")}
	assert.Equal(t, bare.Primary, bare.CardAccent(domain.CardQuiz))
}

func TestNewStyles(t *testing.T) {
	custom := DefaultTheme()
	custom.Primary = lipgloss.Color("#123456")

	assert.Equal(t, custom, NewStyles(custom).Theme())
	assert.Equal(t, DefaultTheme(), NewStyles(nil).Theme())
	assert.Equal(t, DefaultTheme(), DefaultStyles().Theme())
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()

	assert.True(t, s.Title.GetBold())
	assert.True(t, s.Parliamentary.GetItalic())

	for name, style := range map[string]lipgloss.Style{
		"story":  s.Story,
		"marker": s.Marker,
		"banner": s.Banner,
		"chip":   s.Chip,
		"card":   s.ForCard(domain.CardSentiment),
	} {
		assert.Contains(t, style.Render("Palace Pier"), "Palace Pier", name)
	}
}

func TestStyles_ForCard(t *testing.T) {
	s := DefaultStyles()

	style := s.ForCard(domain.CardEvents)

	assert.Equal(t, lipgloss.TerminalColor(s.Theme().Cards[domain.CardEvents]), style.GetBorderLeftForeground())
	assert.Equal(t, s.Card.GetPaddingLeft(), style.GetPaddingLeft())
}
