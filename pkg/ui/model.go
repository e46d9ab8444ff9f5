package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/smantzavinos/tally/pkg/gesture"
	"github.com/smantzavinos/tally/pkg/model"
	"github.com/smantzavinos/tally/pkg/nav"
	"github.com/smantzavinos/tally/pkg/store"
)

const (
	PulseDuration = 300 * time.Millisecond
	SavedDuration = 1000 * time.Millisecond

	lastCounterWarning = "You need at least one counter!"
)

// pulseDoneMsg clears the value highlight of a counter. gen guards against a
// newer pulse on the same counter being cut short.
type pulseDoneMsg struct {
	id  string
	gen int
}

// savedDoneMsg reverts a "Saved!" button to "Save".
type savedDoneMsg struct {
	id  string
	gen int
}

// SettingsMsg carries reloadable settings into a running program.
type SettingsMsg struct {
	GestureThreshold int
	ThemeMode        string
}

// Options configures a Model.
type Options struct {
	Theme            Theme
	ThemeMode        string
	GestureThreshold int
	Logger           *slog.Logger
	// Clipboard receives text copied with the copy key. Defaults to the
	// system clipboard.
	Clipboard func(string) error
}

// Model is the interactive counter carousel.
type Model struct {
	store  *store.Store
	nav    *nav.Controller
	swipe  *gesture.Recognizer
	view   *Renderer
	theme  Theme
	logger *slog.Logger

	keys  keyMap
	help  help.Model
	input textinput.Model

	// Title editing
	editing string

	// Delete confirmation
	confirm       *huh.Form
	confirmYes    *bool
	pendingDelete string

	warning  string
	showHelp bool
	helpPage *helpOverlay

	status    string
	statusErr bool

	gen    int
	pulses map[string]int
	saves  map[string]int

	width, height int
	clipboard     func(string) error
}

// NewModel builds the carousel over st and renders the first frame.
func NewModel(st *store.Store, opts Options) Model {
	if opts.Theme.Renderer == nil {
		opts.Theme = DefaultTheme(lipgloss.DefaultRenderer())
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cb := opts.Clipboard
	if cb == nil {
		cb = clipboard.WriteAll
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = model.DefaultTitle
	ti.CharLimit = 80

	view := NewRenderer(opts.Theme)
	m := Model{
		store:     st,
		swipe:     gesture.New(opts.GestureThreshold),
		view:      view,
		theme:     opts.Theme,
		logger:    logger,
		keys:      defaultKeyMap(),
		help:      help.New(),
		input:     ti,
		helpPage:  newHelpOverlay(glamourStyle(opts.ThemeMode, opts.Theme.Renderer)),
		pulses:    make(map[string]int),
		saves:     make(map[string]int),
		width:     80,
		height:    24,
		clipboard: cb,
	}
	m.input.Width = max(view.cardWidth()-12, 4)
	m.nav = nav.NewController(st, view)
	m.rebuild()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Store exposes the backing store, mainly for tests and the CLI.
func (m Model) Store() *store.Store { return m.store }

// Renderer exposes the view renderer, mainly for tests.
func (m Model) Renderer() *Renderer { return m.view }

// Status returns the current status line text.
func (m Model) Status() string { return m.status }

// Warning returns the text of the open warning overlay, if any.
func (m Model) Warning() string { return m.warning }

// Confirming reports whether a delete confirmation is open.
func (m Model) Confirming() bool { return m.confirm != nil }

// Editing returns the id of the counter whose title is being edited.
func (m Model) Editing() string { return m.editing }

// GestureThreshold returns the active swipe threshold in cells.
func (m Model) GestureThreshold() int { return m.swipe.Threshold }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.view.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		m.input.Width = max(m.view.cardWidth()-12, 4)
		m.warnIfSwipeUnreachable()
		return m, nil

	case pulseDoneMsg:
		if m.pulses[msg.id] == msg.gen {
			delete(m.pulses, msg.id)
			m.view.SetPulse(msg.id, false)
		}
		return m, nil

	case savedDoneMsg:
		if m.saves[msg.id] == msg.gen {
			delete(m.saves, msg.id)
			m.view.SetSaved(msg.id, false)
		}
		return m, nil

	case SettingsMsg:
		m.applySettings(msg)
		return m, nil
	}

	if m.confirm != nil {
		return m.updateConfirm(msg)
	}

	if m.warning != "" {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			m.warning = ""
		case tea.MouseMsg:
			if msg.Action == tea.MouseActionPress {
				m.warning = ""
			}
		}
		return m, nil
	}

	if m.showHelp {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case msg.String() == "ctrl+c":
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help, m.keys.Cancel, m.keys.Quit):
				m.showHelp = false
			}
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing != "" {
			return m.handleEditorKey(msg)
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	idx := m.store.Current()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Prev):
		m.clearStatus()
		m.nav.Previous()
	case key.Matches(msg, m.keys.Next):
		m.clearStatus()
		m.nav.Next()
	case key.Matches(msg, m.keys.First):
		m.nav.GoTo(0)
	case key.Matches(msg, m.keys.Last):
		m.nav.GoTo(m.store.Len() - 1)
	case key.Matches(msg, m.keys.Increment):
		return m.step(idx, 1)
	case key.Matches(msg, m.keys.Decrement):
		return m.step(idx, -1)
	case key.Matches(msg, m.keys.Reset):
		return m.reset(idx)
	case key.Matches(msg, m.keys.New):
		return m.create()
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit(idx)
	case key.Matches(msg, m.keys.Delete):
		return m.requestDelete(idx)
	case key.Matches(msg, m.keys.Style):
		return m.setStyle(idx, model.Style(msg.String()))
	case key.Matches(msg, m.keys.Copy):
		return m.copyCurrent()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	}
	return m, nil
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	idx, ok := m.store.IndexOf(m.editing)
	if !ok {
		m.stopEdit()
		return m, nil
	}
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Save):
		return m.saveTitle(idx)
	case key.Matches(msg, m.keys.Cancel):
		m.stopEdit()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.view.ScrollList(-1)
		case tea.MouseButtonWheelDown:
			m.view.ScrollList(1)
		case tea.MouseButtonLeft:
			z, ok := m.view.Zones().Hit(msg.X, msg.Y)
			if !ok {
				return m, nil
			}
			if m.swipe.Down(msg.X, z.Action.IsControl(), m.store.Len()) {
				return m, nil
			}
			if z.Action.IsControl() {
				return m.dispatch(z)
			}
		}

	case tea.MouseActionMotion:
		if m.swipe.State() != gesture.Tracking {
			return m, nil
		}
		m.swipe.Move(msg.X)
		if rect, ok := m.view.CarouselRect(); ok && !rect.Contains(msg.X, msg.Y) {
			return m.swiped(m.swipe.Leave())
		}

	case tea.MouseActionRelease:
		if m.swipe.State() != gesture.Tracking {
			return m, nil
		}
		m.swipe.Move(msg.X)
		return m.swiped(m.swipe.Up())
	}
	return m, nil
}

func (m Model) swiped(intent gesture.Intent) (Model, tea.Cmd) {
	switch intent {
	case gesture.IntentPrevious:
		m.stopEdit()
		m.nav.Previous()
	case gesture.IntentNext:
		m.stopEdit()
		m.nav.Next()
	}
	return m, nil
}

// dispatch runs the action of a pressed zone. The zone's counter id is
// resolved to a position now, so zones from an older frame still act on the
// counter they were drawn for, or on nothing if it is gone.
func (m Model) dispatch(z Zone) (Model, tea.Cmd) {
	if z.Disabled {
		return m, nil
	}
	idx := -1
	if z.CounterID != "" {
		i, ok := m.store.IndexOf(z.CounterID)
		if !ok {
			return m, nil
		}
		idx = i
	}

	switch z.Action {
	case ActionPrev:
		m.stopEdit()
		m.nav.Previous()
	case ActionNext:
		m.stopEdit()
		m.nav.Next()
	case ActionNew:
		return m.create()
	case ActionIncrement:
		return m.step(idx, 1)
	case ActionDecrement:
		return m.step(idx, -1)
	case ActionReset:
		return m.reset(idx)
	case ActionEditTitle:
		return m.startEdit(idx)
	case ActionSaveTitle:
		return m.saveTitle(idx)
	case ActionStyle:
		return m.setStyle(idx, model.Style(z.Arg))
	case ActionIndicator, ActionSelectRow:
		if idx != m.store.Current() {
			m.stopEdit()
		}
		m.nav.GoTo(idx)
	case ActionDelete:
		return m.requestDelete(idx)
	}
	return m, nil
}

// Mutations

func (m Model) create() (Model, tea.Cmd) {
	m.stopEdit()
	c, err := m.store.Create()
	m.rebuild()
	m.report(err, "Created "+c.Title)
	return m, nil
}

func (m Model) step(idx, delta int) (Model, tea.Cmd) {
	var changed bool
	var err error
	if delta > 0 {
		changed, err = m.store.Increment(idx)
	} else {
		changed, err = m.store.Decrement(idx)
	}
	if !changed {
		return m, nil
	}
	m.rebuild()
	m.report(err, "")
	c, _ := m.store.At(idx)
	cmd := m.pulse(c.ID)
	return m, cmd
}

func (m Model) reset(idx int) (Model, tea.Cmd) {
	changed, err := m.store.Reset(idx)
	if !changed {
		return m, nil
	}
	m.rebuild()
	m.report(err, "")
	c, _ := m.store.At(idx)
	cmd := m.pulse(c.ID)
	return m, cmd
}

func (m Model) setStyle(idx int, s model.Style) (Model, tea.Cmd) {
	changed, err := m.store.SetStyle(idx, s)
	if errors.Is(err, store.ErrInvalidStyle) {
		return m, nil
	}
	if changed {
		m.rebuild()
	}
	m.report(err, "")
	return m, nil
}

func (m Model) startEdit(idx int) (Model, tea.Cmd) {
	c, err := m.store.At(idx)
	if err != nil {
		return m, nil
	}
	if m.editing == c.ID {
		// Already editing; keep what has been typed.
		return m, nil
	}
	if idx != m.store.Current() {
		m.nav.GoTo(idx)
	}
	m.editing = c.ID
	m.input.SetValue(c.Title)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) saveTitle(idx int) (Model, tea.Cmd) {
	c, err := m.store.At(idx)
	if err != nil {
		return m, nil
	}
	if m.editing != c.ID {
		// Save without an open editor confirms the current title.
		cmd := m.flashSaved(c.ID)
		return m, cmd
	}
	changed, err := m.store.SetTitle(idx, m.input.Value())
	m.stopEdit()
	if !changed {
		return m, nil
	}
	m.rebuild()
	m.report(err, "")
	cmd := m.flashSaved(c.ID)
	return m, cmd
}

func (m Model) requestDelete(idx int) (Model, tea.Cmd) {
	c, err := m.store.At(idx)
	if err != nil {
		return m, nil
	}
	m.stopEdit()
	if m.store.Len() <= 1 {
		m.warning = lastCounterWarning
		return m, nil
	}
	yes := false
	m.confirmYes = &yes
	m.pendingDelete = c.ID
	m.confirm = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q?", c.Title)).
			Description(fmt.Sprintf("Current value: %s", FormatValue(c.Value))).
			Affirmative("Delete").
			Negative("Cancel").
			Value(m.confirmYes),
	)).WithShowHelp(false).WithWidth(min(max(m.width-8, 30), 50))
	return m, m.confirm.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Cancel) {
		return m.resolveDelete(false)
	}
	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}
	switch m.confirm.State {
	case huh.StateCompleted:
		return m.resolveDelete(*m.confirmYes)
	case huh.StateAborted:
		return m.resolveDelete(false)
	}
	return m, cmd
}

// resolveDelete closes the confirmation and deletes the pending counter if
// confirmed. The counter is looked up by id, so it is still the one the user
// was asked about.
func (m Model) resolveDelete(confirmed bool) (Model, tea.Cmd) {
	id := m.pendingDelete
	m.confirm, m.confirmYes, m.pendingDelete = nil, nil, ""
	if !confirmed {
		return m, nil
	}
	idx, ok := m.store.IndexOf(id)
	if !ok {
		return m, nil
	}
	removed, err := m.store.Delete(idx)
	if errors.Is(err, store.ErrLastCounter) {
		m.warning = lastCounterWarning
		return m, nil
	}
	if errors.Is(err, store.ErrOutOfRange) {
		return m, nil
	}
	m.rebuild()
	m.report(err, "Deleted "+removed.Title)
	return m, nil
}

func (m Model) copyCurrent() (Model, tea.Cmd) {
	c, err := m.store.At(m.store.Current())
	if err != nil {
		return m, nil
	}
	text := fmt.Sprintf("%s: %d", c.Title, c.Value)
	if err := m.clipboard(text); err != nil {
		m.logger.Warn("clipboard write failed", "error", err)
		m.setStatus("Clipboard unavailable", true)
		return m, nil
	}
	m.setStatus("Copied "+text, false)
	return m, nil
}

// Transient feedback

func (m *Model) pulse(id string) tea.Cmd {
	m.gen++
	gen := m.gen
	m.pulses[id] = gen
	m.view.SetPulse(id, true)
	return tea.Tick(PulseDuration, func(time.Time) tea.Msg {
		return pulseDoneMsg{id: id, gen: gen}
	})
}

func (m *Model) flashSaved(id string) tea.Cmd {
	m.gen++
	gen := m.gen
	m.saves[id] = gen
	m.view.SetSaved(id, true)
	return tea.Tick(SavedDuration, func(time.Time) tea.Msg {
		return savedDoneMsg{id: id, gen: gen}
	})
}

// Helpers

func (m *Model) rebuild() {
	m.view.Rebuild(m.store.Counters(), m.store.Current(), m.nav.Affordances())
}

func (m *Model) stopEdit() {
	if m.editing == "" {
		return
	}
	m.editing = ""
	m.input.Blur()
	m.input.SetValue("")
}

// report shows err on the status line, or ok when err is nil and ok is set.
func (m *Model) report(err error, ok string) {
	switch {
	case err != nil:
		m.setStatus("Not saved: "+err.Error(), true)
	case ok != "":
		m.setStatus(ok, false)
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m *Model) clearStatus() {
	if !m.statusErr {
		m.status = ""
	}
}

func (m *Model) applySettings(s SettingsMsg) {
	m.swipe.SetThreshold(s.GestureThreshold)
	if s.ThemeMode != "" {
		ApplyThemeMode(m.theme.Renderer, s.ThemeMode)
		m.theme = DefaultTheme(m.theme.Renderer)
		m.view.SetTheme(m.theme)
		m.helpPage.setStyle(glamourStyle(s.ThemeMode, m.theme.Renderer))
	}
	m.logger.Info("settings reloaded", "gesture_threshold", m.swipe.Threshold, "theme", s.ThemeMode)
	m.warnIfSwipeUnreachable()
}

// SwipeFits reports whether a drag across the window can travel further than
// the swipe threshold. Before the first resize the width is unknown and
// swiping is assumed to fit.
func (m Model) SwipeFits() bool {
	return m.width == 0 || m.width-1 > m.swipe.Threshold
}

func (m Model) warnIfSwipeUnreachable() {
	if !m.SwipeFits() {
		m.logger.Warn("window too narrow to swipe; use the arrows or keys",
			"width", m.width, "gesture_threshold", m.swipe.Threshold)
	}
}

func (m Model) View() string {
	if m.confirm != nil {
		m.view.ClearZones()
		return m.overlay(m.confirm.View())
	}
	if m.warning != "" {
		m.view.ClearZones()
		body := lipgloss.JoinVertical(lipgloss.Center,
			m.theme.Renderer.NewStyle().Foreground(m.theme.Danger).Bold(true).Render(m.warning),
			"",
			m.theme.Status.Render("press any key"),
		)
		return m.overlay(body)
	}
	if m.showHelp {
		m.view.ClearZones()
		return m.overlay(m.helpPage.render(max(m.width-10, 20)))
	}

	if m.editing != "" {
		m.view.SetEditor(m.editing, m.input.View())
	} else {
		m.view.SetEditor("", "")
	}

	status := m.theme.Status.Render(m.status)
	if m.statusErr {
		status = m.theme.Renderer.NewStyle().Foreground(m.theme.Danger).Render(m.status)
	}
	bindings := m.keys.ShortHelp()
	if m.editing != "" {
		bindings = m.keys.editorHelp()
	}
	return m.view.View(status, m.help.ShortHelpView(bindings))
}

func (m Model) overlay(body string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.theme.Overlay.Render(body))
}
