// Package topics provides the topic picker, the TUI's entry view.
package topics

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

// View lists topics and opens the selected one.
type View struct {
	styles   *styles.Styles
	service  driving.TopicService
	ctx      context.Context
	topics   []domain.Topic
	selected int
	loading  bool
	err      error
	width    int
	height   int
	ready    bool
}

// NewView creates a new topic picker.
func NewView(s *styles.Styles, service driving.TopicService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:  s,
		service: service,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the topic list.
func (v *View) Init() tea.Cmd {
	if v.service == nil {
		return nil
	}
	v.loading = true
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		topics, err := service.List(ctx)
		return messages.TopicsLoaded{Topics: topics, Err: err}
	}
}

// Update handles messages for the topic picker.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.TopicsLoaded:
		v.loading = false
		v.err = msg.Err
		v.topics = msg.Topics
		if v.selected >= len(v.topics) {
			v.selected = 0
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
			return v, nil

		case "down", "j":
			if v.selected < len(v.topics)-1 {
				v.selected++
			}
			return v, nil

		case "enter":
			if len(v.topics) == 0 {
				return v, nil
			}
			topic := v.topics[v.selected]
			return v, func() tea.Msg {
				return messages.TopicSelected{Topic: topic}
			}

		case "?":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewHelp}
			}

		case "q":
			return v, tea.Quit
		}
	}

	return v, nil
}

// View renders the topic list.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("storyfeed"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Pick a topic"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading topics..."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Could not load topics: %v", v.err)))
		b.WriteString("\n")
	case len(v.topics) == 0:
		b.WriteString(v.styles.Muted.Render("No topics yet. Import a catalog with 'storyfeed import'."))
		b.WriteString("\n")
	}

	for i, topic := range v.topics {
		cursor := "  "
		style := v.styles.Normal
		if i == v.selected {
			cursor = "> "
			style = v.styles.Selected
		}

		line := cursor + style.Render(topic.Name)
		if topic.Description != "" {
			line += "  " + v.styles.Muted.Render(topic.Description)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Open  [?] Help  [q] Quit"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Topics returns the loaded topics.
func (v *View) Topics() []domain.Topic {
	return v.topics
}
