package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/streammagic/pkg/streammagic"
)

// Controller is the part of *streammagic.Client the remote drives
type Controller interface {
	GetInfo(ctx context.Context) (streammagic.Info, error)
	GetSources(ctx context.Context) ([]streammagic.Source, error)
	GetState(ctx context.Context) (streammagic.State, error)
	SetPower(ctx context.Context, on bool) error
	SetMute(ctx context.Context, mute bool) error
	VolumeStepUp(ctx context.Context) error
	VolumeStepDown(ctx context.Context) error
	SetSource(ctx context.Context, src streammagic.Source) error
}

var _ Controller = (*streammagic.Client)(nil)

// Message types for async device calls
type (
	loadedMsg struct {
		info    streammagic.Info
		sources []streammagic.Source
		state   streammagic.State
		err     error
	}

	stateMsg struct {
		action string
		state  streammagic.State
		err    error
	}
)

// remoteKeyMap defines key bindings for the remote screen
type remoteKeyMap struct {
	Power      key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Mute       key.Binding
	NextSource key.Binding
	Refresh    key.Binding
	Quit       key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k remoteKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Power, k.VolumeUp, k.VolumeDown, k.Mute, k.NextSource, k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k remoteKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Power, k.Mute, k.NextSource},
		{k.VolumeUp, k.VolumeDown},
		{k.Refresh, k.Quit},
	}
}

func newRemoteKeyMap() remoteKeyMap {
	return remoteKeyMap{
		Power: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "power"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("+", "=", "up"),
			key.WithHelp("+", "vol up"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("-", "down"),
			key.WithHelp("-", "vol down"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		NextSource: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "source"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// RemoteModel is an interactive remote control for one device.
// Device calls run as commands; while one is in flight further keys other
// than quit are ignored.
type RemoteModel struct {
	ctx  context.Context
	ctrl Controller
	host string

	Info    streammagic.Info
	Sources []streammagic.Source
	State   streammagic.State
	Loaded  bool

	Busy   bool
	Status string // Last completed action
	Err    error  // Last failure, cleared by the next success

	Width   int
	Spinner spinner.Model
	Help    help.Model
	Keys    remoteKeyMap
}

// NewRemoteModel creates a remote for ctrl. host is shown in the title.
func NewRemoteModel(ctx context.Context, ctrl Controller, host string) RemoteModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return RemoteModel{
		ctx:     ctx,
		ctrl:    ctrl,
		host:    host,
		Busy:    true,
		Width:   MinTerminalWidth,
		Spinner: s,
		Help:    help.New(),
		Keys:    newRemoteKeyMap(),
	}
}

// Init loads the device identity, sources and state
func (m RemoteModel) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, m.load())
}

// Update handles messages and updates the model
func (m RemoteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = ClampWidth(msg.Width)
		m.Help.Width = m.Width
		return m, nil

	case spinner.TickMsg:
		if !m.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.Busy = false
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.Info, m.Sources, m.State = msg.info, msg.sources, msg.state
		m.Loaded = true
		m.Err = nil
		m.Status = "connected"
		return m, nil

	case stateMsg:
		m.Busy = false
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.State = msg.state
		m.Err = nil
		m.Status = msg.action
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m RemoteModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.Keys.Quit) {
		return m, tea.Quit
	}
	if m.Busy {
		return m, nil
	}

	if key.Matches(msg, m.Keys.Refresh) {
		return m.start(m.load())
	}
	if !m.Loaded {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.Keys.Power):
		on := !m.State.Power
		return m.start(m.act("power "+onOff(on), func(ctx context.Context) error {
			return m.ctrl.SetPower(ctx, on)
		}))

	case key.Matches(msg, m.Keys.Mute):
		mute := !m.State.Mute
		return m.start(m.act("mute "+onOff(mute), func(ctx context.Context) error {
			return m.ctrl.SetMute(ctx, mute)
		}))

	case key.Matches(msg, m.Keys.VolumeUp):
		return m.start(m.act("volume up", m.ctrl.VolumeStepUp))

	case key.Matches(msg, m.Keys.VolumeDown):
		return m.start(m.act("volume down", m.ctrl.VolumeStepDown))

	case key.Matches(msg, m.Keys.NextSource):
		src, ok := NextSource(m.Sources, m.State.Source)
		if !ok {
			return m, nil
		}
		return m.start(m.act("source "+src.Name, func(ctx context.Context) error {
			return m.ctrl.SetSource(ctx, src)
		}))
	}

	return m, nil
}

// start marks the model busy and runs cmd alongside the spinner
func (m RemoteModel) start(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.Busy = true
	return m, tea.Batch(m.Spinner.Tick, cmd)
}

func (m RemoteModel) load() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		info, err := ctrl.GetInfo(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		sources, err := ctrl.GetSources(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		state, err := ctrl.GetState(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{info: info, sources: sources, state: state}
	}
}

// act performs a mutation and reads the state back
func (m RemoteModel) act(action string, fn func(context.Context) error) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return stateMsg{action: action, err: err}
		}
		state, err := ctrl.GetState(ctx)
		return stateMsg{action: action, state: state, err: err}
	}
}

// NextSource returns the UI-selectable source after current, wrapping around
func NextSource(sources []streammagic.Source, current string) (streammagic.Source, bool) {
	var selectable []streammagic.Source
	for _, s := range sources {
		if s.UISelectable {
			selectable = append(selectable, s)
		}
	}
	if len(selectable) == 0 {
		return streammagic.Source{}, false
	}
	for i, s := range selectable {
		if s.ID == current {
			return selectable[(i+1)%len(selectable)], true
		}
	}
	return selectable[0], true
}

// View renders the remote
func (m RemoteModel) View() string {
	var lines []string

	title := m.host
	if m.Loaded {
		title = m.Info.Name
	}
	lines = append(lines, TitleStyle.Render(title))
	if m.Loaded {
		lines = append(lines, SubtitleStyle.Render(fmt.Sprintf("%s · API %s · %s", m.Info.Model, m.Info.APIVersion, m.host)))
	}
	lines = append(lines, "")

	if m.Loaded {
		lines = append(lines,
			row("Power", renderPower(m.State.Power)),
			row("Source", m.sourceName()),
			row("Volume", renderVolume(m.State)),
		)
		if m.State.Mute {
			lines = append(lines, row("", MutedStyle.Render("MUTED")))
		}
		lines = append(lines, "")
	}

	switch {
	case m.Busy:
		lines = append(lines, m.Spinner.View()+" "+StatusStyle.Render("talking to device..."))
	case m.Err != nil:
		lines = append(lines, ErrorLine.Render(FailureMarker+" "+streammagic.ShortMessage(m.Err)))
	case m.Status != "":
		lines = append(lines, StatusStyle.Render(SuccessMarker+" "+m.Status))
	}

	lines = append(lines, "", m.Help.View(m.Keys))

	return PanelStyle(m.Width).Render(strings.Join(lines, "\n")) + "\n"
}

func (m RemoteModel) sourceName() string {
	if src, ok := streammagic.FindSource(m.Sources, m.State.Source); ok {
		return ActiveSource.Render(src.Name) + " " + SubtitleStyle.Render(src.ID)
	}
	return ActiveSource.Render(m.State.Source)
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), value)
}

func renderPower(on bool) string {
	if on {
		return PowerOnStyle.Render("ON")
	}
	return StandbyStyle.Render("STANDBY")
}

func renderVolume(s streammagic.State) string {
	filled := s.VolumePercent * VolumeBarWidth / 100
	if filled < 0 {
		filled = 0
	}
	if filled > VolumeBarWidth {
		filled = VolumeBarWidth
	}
	bar := VolumeFill.Render(strings.Repeat("█", filled)) +
		VolumeEmpty.Render(strings.Repeat("░", VolumeBarWidth-filled))
	return bar + " " + ValueStyle.Render(s.FormatVolume())
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// RunRemote starts the interactive remote on a terminal. When out is not a
// terminal it prints the device identity and state once instead.
func RunRemote(ctx context.Context, ctrl Controller, host string, out io.Writer) error {
	if !IsTerminal(out) {
		return PrintSnapshot(ctx, ctrl, out)
	}

	p := tea.NewProgram(NewRemoteModel(ctx, ctrl, host), tea.WithOutput(out), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(RemoteModel); ok && m.Err != nil && !m.Loaded {
		return m.Err
	}
	return nil
}

// PrintSnapshot writes the device identity, state and sources as plain text
func PrintSnapshot(ctx context.Context, ctrl Controller, out io.Writer) error {
	info, err := ctrl.GetInfo(ctx)
	if err != nil {
		return err
	}
	state, err := ctrl.GetState(ctx)
	if err != nil {
		return err
	}
	sources, err := ctrl.GetSources(ctx)
	if err != nil {
		return err
	}

	_, err = io.WriteString(out, info.FormatDetailed()+"\n"+state.FormatDetailed()+"\n"+streammagic.FormatSources(sources, state.Source))
	return err
}
