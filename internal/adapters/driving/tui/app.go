package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/views/feed"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/views/filters"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/tui/views/topics"
	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
	"github.com/custodia-labs/storyfeed/internal/logger"
)

// freshnessRedraw is how often the new-stories banner is redrawn while a feed is open.
const freshnessRedraw = time.Second

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// topicsView is the topic picker.
	topicsView *topics.View

	// feedView renders the open feed session.
	feedView *feed.View

	// filtersView is the facet filter panel.
	filtersView *filters.View

	// statusBar shows counts and key hints.
	statusBar *status.Bar

	// session is the open feed session, nil on the topic picker.
	session driving.FeedSession

	// monitor watches the open session for new stories.
	monitor driving.FreshnessMonitor

	// stopMonitor cancels the monitor's polling loop.
	stopMonitor context.CancelFunc

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when help is dismissed.
	previousView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		topicsView:  topics.NewView(s, ports.Topics),
		feedView:    feed.NewView(s),
		filtersView: filters.NewView(s),
		statusBar:   status.NewBar(s, keymap.DefaultKeyMap()),
		currentView: messages.ViewTopics,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.topicsView.WithContext(ctx)
	a.feedView.WithContext(ctx)
	a.filtersView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("storyfeed"),
		a.topicsView.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.closeSession()
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewTopics:
			a.topicsView, cmd = a.topicsView.Update(msg)
		case messages.ViewFeed:
			a.feedView, cmd = a.feedView.Update(msg)
		case messages.ViewFilters:
			a.filtersView, cmd = a.filtersView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc || msg.String() == "?" {
				a.currentView = a.previousView
			}
		}
		a.syncStatus()
		return a, cmd

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.TopicsLoaded:
		a.topicsView, cmd = a.topicsView.Update(msg)
		if msg.Err != nil {
			a.err = msg.Err
		}
		return a, cmd

	case messages.TopicSelected:
		a.statusBar.SetState(status.StateLoading)
		return a, a.openFeed(msg.Topic)

	case messages.FeedOpened:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
			return a, nil
		}
		return a, a.showFeed(msg.Session, msg.Monitor)

	case messages.PageLoaded, messages.MoreLikeThisDone, spinner.TickMsg:
		a.feedView, cmd = a.feedView.Update(msg)
		a.syncStatus()
		return a, cmd

	case messages.FiltersChanged:
		var filtersCmd tea.Cmd
		a.feedView, cmd = a.feedView.Update(msg)
		a.filtersView, filtersCmd = a.filtersView.Update(msg)
		a.syncStatus()
		return a, tea.Batch(cmd, filtersCmd)

	case messages.FreshnessTick:
		if a.session == nil {
			return a, nil
		}
		a.feedView, _ = a.feedView.Update(msg)
		a.syncStatus()
		return a, freshnessTick()

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(msg.Err.Error())
		return a, nil

	case messages.Quit:
		a.closeSession()
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	switch view {
	case messages.ViewTopics:
		a.closeSession()
		a.currentView = view
		a.statusBar.Clear()
		return a.topicsView.Init()

	case messages.ViewFilters:
		if a.session == nil {
			return nil
		}
		a.filtersView.SetSession(a.session)

	case messages.ViewHelp:
		if a.currentView != messages.ViewHelp {
			a.previousView = a.currentView
		}

	case messages.ViewFeed:
		if a.session == nil {
			return nil
		}
	}

	a.currentView = view
	a.syncStatus()
	return nil
}

// openFeed opens a session for a topic and creates its freshness monitor.
func (a *App) openFeed(topic domain.Topic) tea.Cmd {
	service, ctx := a.ports.Feed, a.ctx
	return func() tea.Msg {
		session, err := service.Open(ctx, topic.ID)
		if err != nil {
			return messages.FeedOpened{Err: err}
		}
		monitor, err := service.Monitor(session)
		if err != nil {
			session.Close()
			return messages.FeedOpened{Err: err}
		}
		return messages.FeedOpened{Session: session, Monitor: monitor}
	}
}

// showFeed switches to a newly opened session and starts its monitor.
func (a *App) showFeed(session driving.FeedSession, monitor driving.FreshnessMonitor) tea.Cmd {
	a.closeSession()

	a.session = session
	a.monitor = monitor
	a.feedView.SetSession(session, monitor)
	a.currentView = messages.ViewFeed
	a.err = nil
	a.syncStatus()

	logger.Debug("tui: opened feed %s for topic %s", session.ID(), session.Topic().ID)

	cmds := []tea.Cmd{a.feedView.Init(), freshnessTick()}
	if monitor != nil {
		ctx, cancel := context.WithCancel(a.ctx)
		a.stopMonitor = cancel
		cmds = append(cmds, func() tea.Msg {
			monitor.Start(ctx)
			return nil
		})
	}
	return tea.Batch(cmds...)
}

// closeSession stops the monitor and invalidates the session's pending fetches.
func (a *App) closeSession() {
	if a.stopMonitor != nil {
		a.stopMonitor()
		a.stopMonitor = nil
	}
	if a.session != nil {
		a.session.Close()
	}
	a.session = nil
	a.monitor = nil
	a.feedView.SetSession(nil, nil)
	a.filtersView.SetSession(nil)
}

func freshnessTick() tea.Cmd {
	return tea.Tick(freshnessRedraw, func(time.Time) tea.Msg {
		return messages.FreshnessTick{}
	})
}

// syncStatus updates the status bar from the current view and session.
func (a *App) syncStatus() {
	switch a.currentView {
	case messages.ViewHelp:
		a.statusBar.SetState(status.StateHelp)
		return
	case messages.ViewTopics:
		if a.statusBar.State() != status.StateLoading && a.statusBar.State() != status.StateError {
			a.statusBar.SetState(status.StateReady)
		}
		return
	case messages.ViewFeed:
		a.statusBar.SetState(status.StateFeed)
	case messages.ViewFilters:
		a.statusBar.SetState(status.StateFilters)
	}

	if a.session == nil {
		return
	}
	view := a.session.View()
	stories := 0
	for i := range view.Items {
		if view.Items[i].Kind.CountsAsStory() {
			stories++
		}
	}
	selected := 0
	for _, facet := range domain.FacetTypes() {
		selected += len(view.Filters.Values(facet))
	}
	a.statusBar.SetCounts(stories, selected)
	a.statusBar.SetMessage(a.feedView.Notice())
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewFeed:
		body = a.feedView.View()
	case messages.ViewFilters:
		body = a.filtersView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.topicsView.View()
	}
	return body + "\n" + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Topics:
  j/k, ↑/↓    Navigate topics
  enter       Open feed
  q           Quit

Feed:
  j/k, ↑/↓    Navigate stories
  m           Load more stories
  r           Retry a failed page
  n           Show new stories
  l           More like this story
  f           Open filters
  c           Clear filters
  esc         Back to topics

Filters:
  space       Toggle value
  c           Clear all
  esc         Back to feed

[esc] close help`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	a.closeSession()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Session returns the open feed session, or nil.
func (a *App) Session() driving.FeedSession {
	return a.session
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions. One line is kept for the status bar.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	body := max(height-1, 1)
	a.topicsView.SetDimensions(width, body)
	a.feedView.SetDimensions(width, body)
	a.filtersView.SetDimensions(width, body)
	a.statusBar.SetWidth(width)
}
