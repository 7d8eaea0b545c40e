package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wevysya/voiceos/internal/adapters/driving/tui/keymap"
	"github.com/wevysya/voiceos/internal/adapters/driving/tui/messages"
	"github.com/wevysya/voiceos/internal/adapters/driving/tui/styles"
	"github.com/wevysya/voiceos/internal/adapters/driving/tui/views/actions"
	"github.com/wevysya/voiceos/internal/adapters/driving/tui/views/console"
	"github.com/wevysya/voiceos/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// caller is who the console speaks as.
	caller domain.CallerContext

	styles *styles.Styles
	keymap *keymap.KeyMap

	// consoleView is the transcript and response view.
	consoleView *console.View

	// actionsView is the action catalog.
	actionsView *actions.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// showHelp toggles the full key help.
	showHelp bool

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
	if ports == nil {
		return nil, ErrInvalidPorts
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		caller:      domain.Anonymous(),
		styles:      s,
		keymap:      km,
		consoleView: console.NewView(s, km, ports.Voice),
		actionsView: actions.NewView(s, km, ports.Actions),
		currentView: messages.ViewConsole,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.consoleView.WithContext(ctx)
	return a
}

// WithCaller sets the caller the console speaks as.
func (a *App) WithCaller(caller domain.CallerContext) *App {
	a.caller = caller
	a.consoleView.WithCaller(caller)
	a.actionsView.WithCaller(caller)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("voiceos - Voice Console"),
		a.consoleView.Init(),
		a.loadTopics(),
	)
}

// loadTopics fetches the knowledge categories when a knowledge service is wired.
func (a *App) loadTopics() tea.Cmd {
	if a.ports.Knowledge == nil {
		return nil
	}
	knowledge, ctx := a.ports.Knowledge, a.ctx
	return func() tea.Msg {
		topics, err := knowledge.Categories(ctx)
		return messages.TopicsLoaded{Topics: topics, Err: err}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), a.keymap.Quit):
			return a, tea.Quit
		case keymap.Matches(msg.String(), a.keymap.Help):
			a.showHelp = !a.showHelp
			return a, nil
		case keymap.Matches(msg.String(), a.keymap.SwitchView):
			next := messages.ViewActions
			if a.currentView == messages.ViewActions {
				next = messages.ViewConsole
			}
			return a, func() tea.Msg { return messages.ViewChanged{View: next} }
		}

		if a.currentView == messages.ViewActions {
			a.actionsView, cmd = a.actionsView.Update(msg)
			return a, cmd
		}
		a.consoleView, cmd = a.consoleView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewActions {
			return a, a.actionsView.Init()
		}
		return a, nil

	case messages.TopicsLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.consoleView.SetTopics(msg.Topics)
		return a, nil

	case messages.TurnCompleted:
		a.err = msg.Err
		a.consoleView, cmd = a.consoleView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.consoleView, cmd = a.consoleView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Playback ticks and input blinks belong to the console even while
	// the catalog is showing.
	a.consoleView, cmd = a.consoleView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewActions:
		body = a.actionsView.View()
	default:
		body = a.consoleView.View()
	}

	if a.showHelp {
		body += "\n\n" + a.viewHelp()
	}
	return body
}

// viewHelp renders the key help.
func (a *App) viewHelp() string {
	return a.styles.Hint.Render(`Keys:
  enter       Speak the typed transcript
  esc         Cancel the current turn
  ctrl+r      Reset after an error
  tab         Switch between console and actions
  ↑/↓         Move through sources or actions
  f1          Toggle this help
  ctrl+c      Quit`)
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Caller returns the caller the console speaks as.
func (a *App) Caller() domain.CallerContext {
	return a.caller
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// ShowingHelp reports whether the key help is visible.
func (a *App) ShowingHelp() bool {
	return a.showHelp
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.consoleView.SetDimensions(width, height)
	a.actionsView.SetDimensions(width, height)
}
