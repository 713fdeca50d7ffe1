package dashboard

import (
	"context"
	"errors"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/sensormon/internal/config"
	smerrors "github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/export"
	"github.com/rileyhilliard/sensormon/internal/session"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleEditKey(msg)
	}

	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return m, nil
	}
	if m.showHelp && key.Matches(msg, m.keys.Cancel) {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Start):
		if m.connecting || m.state != session.Disconnected {
			return m, nil
		}
		m.connecting = true
		m.setNotice(session.NoticeInfo, "Connecting to "+m.sess.Source().Name())
		return m, tea.Batch(m.startCmd(), m.spinner.Tick)

	case key.Matches(msg, m.keys.Stop):
		if m.state != session.Running {
			m.setNotice(session.NoticeInfo, "Not running")
			return m, nil
		}
		return m, m.stopCmd()

	case key.Matches(msg, m.keys.ExportCSV):
		return m, m.exportCSVCmd()

	case key.Matches(msg, m.keys.SaveGraph):
		return m, m.saveGraphCmd()

	case key.Matches(msg, m.keys.Toggle):
		i, _ := strconv.Atoi(msg.String())
		m.toggle(i - 1)
		return m, nil

	case key.Matches(msg, m.keys.selectPrev):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.selectNext):
		if m.selected < len(m.channels)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		return m, m.openEditor()

	case key.Matches(msg, m.keys.Save):
		return m, m.saveThresholdsCmd()
	}
	return m, nil
}

// toggle flips visibility of channel i and re-evaluates alerts.
func (m *Model) toggle(i int) {
	if i < 0 || i >= len(m.channels) {
		return
	}
	m.visible[i] = !m.visible[i]
	m.refresh()
}

func (m Model) startCmd() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		return startedMsg{err: sess.Start(context.Background())}
	}
}

func (m Model) stopCmd() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		return stoppedMsg{err: sess.Stop()}
	}
}

func (m Model) exportCSVCmd() tea.Cmd {
	snap := m.sess.Snapshot()
	channels := m.Channels()
	path := export.Filename(m.cfg.Export.Dir, "csv", m.now())
	return func() tea.Msg {
		return exportedMsg{kind: "CSV", path: path, err: export.SaveCSV(path, channels, snap)}
	}
}

func (m Model) saveGraphCmd() tea.Cmd {
	snap := m.sess.Snapshot()
	channels := m.Channels()
	visible := append([]bool(nil), m.visible...)
	path := export.Filename(m.cfg.Export.Dir, "png", m.now())
	exportCfg := m.cfg.Export
	title := chartTitle + " - " + m.TitleState()
	return func() tea.Msg {
		opts, err := export.ImageOptionsFrom(exportCfg)
		if err != nil {
			return exportedMsg{kind: "Graph", path: path, err: err}
		}
		opts.Title = title
		opts.Visible = visible
		return exportedMsg{kind: "Graph", path: path, err: export.SaveImage(path, channels, snap, opts)}
	}
}

func (m *Model) handleExported(msg exportedMsg) {
	switch {
	case errors.Is(msg.err, export.ErrNoData):
		m.setNotice(session.NoticeInfo, "No data to export")
	case msg.err != nil:
		m.setNotice(session.NoticeError, errorText(msg.err))
	default:
		m.setNotice(session.NoticeInfo, msg.kind+" saved to "+msg.path)
	}
}

// saveThresholdsCmd writes every channel's current threshold text back to
// the config file, keeping its comments.
func (m Model) saveThresholdsCmd() tea.Cmd {
	path := m.configPath
	if path == "" {
		return func() tea.Msg {
			return savedMsg{err: smerrors.New(smerrors.ErrConfig,
				"No config file to write thresholds to",
				"Run 'sensormon init' to create "+config.ConfigFileName)}
		}
	}
	channels := m.Channels()
	return func() tea.Msg {
		for _, ch := range channels {
			if err := config.SetChannelThresholds(path, ch.ID, ch.Min, ch.Max); err != nil {
				return savedMsg{err: err}
			}
		}
		return savedMsg{}
	}
}

// openEditor starts editing the selected channel's thresholds.
func (m *Model) openEditor() tea.Cmd {
	if len(m.channels) == 0 {
		return nil
	}
	ch := m.channels[m.selected]
	m.inputs[0].SetValue(ch.Min)
	m.inputs[1].SetValue(ch.Max)
	m.focus = 0
	m.editing = true
	m.inputs[1].Blur()
	return m.inputs[0].Focus()
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeEditor()
		return m, nil

	case key.Matches(msg, m.keys.Apply):
		ch := &m.channels[m.selected]
		ch.Min = m.inputs[0].Value()
		ch.Max = m.inputs[1].Value()
		m.closeEditor()
		m.refresh()
		if check := ch.Evaluate(0); check.Err != nil {
			m.setNotice(session.NoticeWarn, ch.Label+": "+errorText(check.Err))
		} else {
			m.setNotice(session.NoticeInfo, ch.Label+" thresholds updated")
		}
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		m.inputs[m.focus].Blur()
		m.focus = 1 - m.focus
		return m, m.inputs[m.focus].Focus()
	}
	return m.updateInputs(msg)
}

func (m *Model) closeEditor() {
	m.editing = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func errorText(err error) string {
	return smerrors.Summary(err)
}
