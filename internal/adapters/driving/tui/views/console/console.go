// Package console provides the voice console view for the TUI.
package console

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wevysya/voiceos/internal/adapters/driving/tui/components/list"
	"github.com/wevysya/voiceos/internal/adapters/driving/tui/components/status"
	"github.com/wevysya/voiceos/internal/adapters/driving/tui/keymap"
	"github.com/wevysya/voiceos/internal/adapters/driving/tui/messages"
	"github.com/wevysya/voiceos/internal/adapters/driving/tui/styles"
	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
)

const (
	// historyLimit is how many exchanges are kept on screen.
	historyLimit = 20

	// contextTurns is how many past exchanges are sent as conversation context.
	contextTurns = 3

	// transcriptLimit bounds a typed utterance.
	transcriptLimit = 512

	// promptChrome is the width taken by the prompt frame, padding and marker.
	promptChrome = 6

	// Simulated speech playback runs at a fixed rate per word.
	playbackPerWord = 250 * time.Millisecond
	minPlayback     = 300 * time.Millisecond
	maxPlayback     = 5 * time.Second
)

// exchange is one transcript and the response it produced.
type exchange struct {
	transcript string
	response   *domain.Response
	failed     bool
}

// View is the voice console: a transcript field standing in for the
// recogniser, the conversation so far, the sources behind the latest
// answer and a status bar mirroring the session state.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	transcript textinput.Model
	list       *list.ResultList
	statusbar  *status.Bar

	voice  driving.VoiceService
	caller domain.CallerContext
	ctx    context.Context

	history []exchange
	topics  []string
	busy    bool
	err     error

	width  int
	height int
}

// NewView creates a new console view.
func NewView(s *styles.Styles, km *keymap.KeyMap, voice driving.VoiceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		transcript: newTranscriptField(),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		voice:      voice,
		caller:     domain.Anonymous(),
		ctx:        context.Background(),
	}
	v.SetDimensions(80, 24)
	return v
}

// newTranscriptField is the typed stand-in for speech recognition: whatever
// is submitted is the final transcript.
func newTranscriptField() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = "Say something..."
	ti.CharLimit = transcriptLimit
	ti.Focus()
	return ti
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithCaller sets the caller the turns run as.
func (v *View) WithCaller(caller domain.CallerContext) *View {
	v.caller = caller
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	v.refresh()
	return textinput.Blink
}

// Update handles messages for the console view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.TurnCompleted:
		return v, v.handleTurnCompleted(msg)

	case messages.PlaybackFinished:
		v.handlePlaybackFinished(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.busy = false
		v.err = msg.Err
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.transcript, cmd = v.transcript.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Submit):
		transcript := strings.TrimSpace(v.transcript.Value())
		if transcript == "" || v.busy {
			return v, nil
		}
		v.transcript.Reset()
		return v, v.submit(transcript)

	case keymap.Matches(msg.String(), v.keymap.Cancel):
		if v.voice != nil {
			v.voice.Cancel(v.caller)
		}
		v.busy = false
		v.statusbar.SetMessage("Cancelled")
		v.refresh()
		return v, nil

	case keymap.Matches(msg.String(), v.keymap.Acknowledge):
		if v.voice != nil {
			if err := v.voice.Acknowledge(v.caller); err != nil {
				v.statusbar.SetMessage(err.Error())
				return v, nil
			}
		}
		v.err = nil
		v.statusbar.SetMessage("")
		v.refresh()
		return v, nil

	case keymap.Matches(msg.String(), v.keymap.Up), keymap.Matches(msg.String(), v.keymap.Down):
		v.list, _ = v.list.Update(msg)
		return v, nil
	}

	var cmd tea.Cmd
	v.transcript, cmd = v.transcript.Update(msg)
	return v, cmd
}

// submit starts a turn and returns the command that runs it.
func (v *View) submit(transcript string) tea.Cmd {
	if v.voice == nil {
		return func() tea.Msg {
			return messages.ErrorOccurred{Err: ErrNoVoiceService}
		}
	}

	v.busy = true
	v.statusbar.SetMessage("")
	v.statusbar.SetStatus(domain.StatusProcessing)
	v.transcript.Placeholder = "Thinking..."

	voice, ctx, caller := v.voice, v.ctx, v.caller
	convContext := v.conversationContext()
	return func() tea.Msg {
		resp, err := voice.Turn(ctx, caller, transcript, convContext)
		return messages.TurnCompleted{Transcript: transcript, Response: resp, Err: err}
	}
}

// handleTurnCompleted records the exchange and, for a spoken response,
// schedules the end of playback.
func (v *View) handleTurnCompleted(msg messages.TurnCompleted) tea.Cmd {
	v.busy = false
	v.transcript.Placeholder = "Say something..."

	if msg.Response == nil {
		v.err = msg.Err
		if msg.Err != nil {
			v.statusbar.SetMessage(fmt.Sprintf("Turn not run: %v", msg.Err))
		}
		v.refresh()
		return nil
	}

	v.appendExchange(exchange{
		transcript: msg.Transcript,
		response:   msg.Response,
		failed:     msg.Err != nil,
	})
	v.list.SetResults(msg.Response.Results)
	v.err = msg.Err
	v.refresh()

	if msg.Err != nil {
		v.statusbar.SetMessage(msg.Err.Error())
		return nil
	}
	if msg.Response.Navigation {
		v.statusbar.SetMessage("Navigate to " + msg.Response.Screen)
	}
	if v.voice == nil {
		return nil
	}

	turnID := v.voice.State(v.caller).TurnID
	return tea.Tick(PlaybackDuration(msg.Response.Speech), func(time.Time) tea.Msg {
		return messages.PlaybackFinished{TurnID: turnID}
	})
}

// handlePlaybackFinished ends playback for the turn that scheduled it.
// A newer turn or a cancellation in the meantime makes it a no-op.
func (v *View) handlePlaybackFinished(msg messages.PlaybackFinished) {
	if v.voice == nil {
		return
	}
	state := v.voice.State(v.caller)
	if state.TurnID != msg.TurnID || state.Status != domain.StatusSpeaking {
		return
	}
	if err := v.voice.PlaybackComplete(v.caller); err != nil {
		v.statusbar.SetMessage(err.Error())
	}
	v.refresh()
}

// refresh copies the session state into the status bar.
func (v *View) refresh() {
	if v.voice == nil {
		return
	}
	v.statusbar.Sync(v.voice.State(v.caller))
}

func (v *View) appendExchange(e exchange) {
	v.history = append(v.history, e)
	if len(v.history) > historyLimit {
		v.history = v.history[len(v.history)-historyLimit:]
	}
}

// conversationContext renders the last few successful exchanges.
func (v *View) conversationContext() string {
	var lines []string
	for i := len(v.history) - 1; i >= 0 && len(lines) < contextTurns*2; i-- {
		e := v.history[i]
		if e.failed {
			continue
		}
		lines = append(lines, "Assistant: "+e.response.Text, "User: "+e.transcript)
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}

// PlaybackDuration estimates how long speech takes to play.
func PlaybackDuration(speech string) time.Duration {
	words := len(strings.Fields(speech))
	d := time.Duration(words) * playbackPerWord
	if d < minPlayback {
		return minPlayback
	}
	if d > maxPlayback {
		return maxPlayback
	}
	return d
}

// View renders the console view.
func (v *View) View() string {
	sections := make([]string, 0, 8)

	sections = append(sections,
		v.styles.Header.Render("VoiceOS")+" "+v.styles.Dim.Render(callerLabel(v.caller)))
	if len(v.topics) > 0 {
		sections = append(sections, v.styles.Dim.Render("Topics: "+strings.Join(v.topics, ", ")))
	}
	sections = append(sections,
		"",
		v.renderHistory(),
		"",
	)

	if !v.list.IsEmpty() {
		sections = append(sections, v.list.View(), "")
	}

	sections = append(sections, v.renderPrompt(), v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHistory renders as many recent exchanges as fit.
func (v *View) renderHistory() string {
	if len(v.history) == 0 {
		return v.styles.Dim.Render("Ask a question or request an action.")
	}

	budget := v.height / 2
	if budget < 4 {
		budget = 4
	}

	var blocks []string
	used := 0
	for i := len(v.history) - 1; i >= 0; i-- {
		block := v.renderExchange(&v.history[i])
		lines := strings.Count(block, "\n") + 1
		if used+lines > budget && len(blocks) > 0 {
			break
		}
		blocks = append([]string{block}, blocks...)
		used += lines
	}
	return strings.Join(blocks, "\n")
}

func (v *View) renderExchange(e *exchange) string {
	said := v.styles.Transcript.Render("“" + e.transcript + "”")

	text := e.response.Text
	if wrap := v.width - 4; wrap > 10 && utf8.RuneCountInString(text) > wrap {
		text = lipgloss.NewStyle().Width(wrap).Render(text)
	}

	reply := v.styles.Reply(e.response.Kind, e.failed).Render(text)

	if e.response.Navigation && e.response.Screen != "" {
		reply += "\n" + v.styles.Dim.Render("  → "+e.response.Screen)
	}
	return said + "\n" + reply
}

// renderPrompt frames the transcript field in the session's status colour.
func (v *View) renderPrompt() string {
	return v.styles.Prompt(v.statusbar.Status()).Render(v.transcript.View())
}

func callerLabel(c domain.CallerContext) string {
	if c.UserID == "" {
		return fmt.Sprintf("(anonymous, %s)", c.Tier)
	}
	return fmt.Sprintf("(%s, %s)", c.UserID, c.Tier)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.transcript.Width = max(width-promptChrome, 20)
	v.statusbar.SetWidth(width)
	v.list.SetDimensions(width, height/3)
}

// SetTopics sets the knowledge categories shown under the header.
func (v *View) SetTopics(topics []string) {
	v.topics = topics
}

// Busy reports whether a turn is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Transcript returns the text currently typed.
func (v *View) Transcript() string {
	return v.transcript.Value()
}

// HistoryLen returns the number of exchanges on screen.
func (v *View) HistoryLen() int {
	return len(v.history)
}

// StatusBar exposes the status bar for rendering hints.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}
