// Package dashboard is the interactive terminal UI for a monitoring session.
package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/history"
	"github.com/rileyhilliard/sensormon/internal/sensor"
	"github.com/rileyhilliard/sensormon/internal/session"
	"github.com/rileyhilliard/sensormon/internal/source"
)

// Session is the part of session.Controller the dashboard drives.
type Session interface {
	Start(ctx context.Context) error
	Stop() error
	State() session.State
	Snapshot() history.Snapshot
	Notices() <-chan session.Notice
	Discarded() uint64
	Source() source.Source
}

// Options configure a Model.
type Options struct {
	Config *config.Config
	// ConfigPath is where "write thresholds" saves. Empty disables saving.
	ConfigPath string
	Session    Session
	// Now replaces time.Now in tests.
	Now func() time.Time
}

const chartTitle = "Live Sensor Data"

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	cfg        *config.Config
	configPath string
	sess       Session
	now        func() time.Time

	channels []sensor.Channel
	visible  []bool
	selected int

	snap     history.Snapshot
	checks   []sensor.Check
	state    session.State
	linkOpen bool

	connecting bool
	spinner    spinner.Model

	editing bool
	focus   int
	inputs  [2]textinput.Model

	notice      string
	noticeLevel session.NoticeLevel

	keys     keyMap
	help     help.Model
	showHelp bool

	width    int
	height   int
	interval time.Duration
	quitting bool
}

type tickMsg time.Time

type noticeMsg session.Notice

type startedMsg struct{ err error }

type stoppedMsg struct{ err error }

type exportedMsg struct {
	kind string
	path string
	err  error
}

type savedMsg struct{ err error }

// New creates a dashboard for an existing session.
func New(opts Options) Model {
	cfg := opts.Config
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = time.Second
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorWarning)),
	)

	var inputs [2]textinput.Model
	for i, prompt := range []string{"min ", "max "} {
		in := textinput.New()
		in.Prompt = prompt
		in.CharLimit = 16
		in.Width = 10
		in.PromptStyle = LabelStyle
		in.TextStyle = ValueStyle
		inputs[i] = in
	}

	m := Model{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		sess:       opts.Session,
		now:        now,
		channels:   cfg.SensorChannels(),
		visible:    cfg.Visible(),
		spinner:    sp,
		inputs:     inputs,
		keys:       newKeyMap(),
		help:       help.New(),
		interval:   interval,
	}
	m.refresh()
	return m
}

// Init starts the redraw tick and the notice listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.waitForNotice())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.refresh()
		return m, m.tickCmd()

	case noticeMsg:
		m.setNotice(msg.Level, msg.Message)
		m.refresh()
		return m, m.waitForNotice()

	case startedMsg:
		m.connecting = false
		if msg.err != nil {
			m.setNotice(session.NoticeError, errorText(msg.err))
		} else {
			m.setNotice(session.NoticeInfo, "Started on "+m.sess.Source().Name())
		}
		m.refresh()
		return m, nil

	case stoppedMsg:
		if msg.err != nil {
			m.setNotice(session.NoticeWarn, errorText(msg.err))
		} else {
			m.setNotice(session.NoticeInfo, "Stopped")
		}
		m.refresh()
		return m, nil

	case exportedMsg:
		m.handleExported(msg)
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.setNotice(session.NoticeError, errorText(msg.err))
		} else {
			m.setNotice(session.NoticeInfo, "Thresholds written to "+m.configPath)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.connecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.editing {
		return m.updateInputs(msg)
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// refresh pulls a fresh snapshot and re-evaluates thresholds for visible
// channels.
func (m *Model) refresh() {
	m.snap = m.sess.Snapshot()
	m.state = m.sess.State()
	m.linkOpen = m.sess.Source().IsOpen()

	m.checks = nil
	latest := m.snap.Latest()
	if latest == nil {
		return
	}
	for i, ch := range m.channels {
		if i < len(latest) && m.visible[i] {
			m.checks = append(m.checks, ch.Evaluate(latest[i]))
		}
	}
}

func (m *Model) setNotice(level session.NoticeLevel, text string) {
	m.notice = text
	m.noticeLevel = level
}

// TitleState is the suffix shown after the chart title.
func (m Model) TitleState() string {
	if !m.linkOpen {
		return "Disconnected"
	}
	hasData := !m.snap.Empty()
	if m.state == session.Running {
		if hasData {
			return "Running"
		}
		return "Waiting for data"
	}
	if hasData {
		return "Stopped"
	}
	return "Ready"
}

// StatusLine is "Alert: ..." or "Status: Normal" for the visible channels.
func (m Model) StatusLine() string {
	return sensor.Summary(m.checks)
}

// Visible reports whether channel i is drawn.
func (m Model) Visible(i int) bool {
	return i >= 0 && i < len(m.visible) && m.visible[i]
}

// Channels returns the channels with their current threshold text.
func (m Model) Channels() []sensor.Channel {
	return append([]sensor.Channel(nil), m.channels...)
}

// Notice returns the last notice shown in the footer.
func (m Model) Notice() string { return m.notice }

// Editing reports whether the threshold editor is open.
func (m Model) Editing() bool { return m.editing }

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForNotice blocks on the session's notice channel. Update re-issues it
// after every notice.
func (m Model) waitForNotice() tea.Cmd {
	ch := m.sess.Notices()
	return func() tea.Msg {
		return noticeMsg(<-ch)
	}
}
