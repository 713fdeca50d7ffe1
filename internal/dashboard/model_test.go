package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/session"
	sourcetest "github.com/rileyhilliard/sensormon/internal/source/testing"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

type fixture struct {
	cfg  *config.Config
	fake *sourcetest.Fake
	sess *session.Controller
}

func newFixture(t *testing.T, preset string, lines ...string) fixture {
	t.Helper()
	cfg, err := config.Preset(preset)
	require.NoError(t, err)
	cfg.Source.Serial.ReadTimeout = 50 * time.Millisecond
	cfg.Lock.Dir = t.TempDir()
	cfg.Export.Dir = t.TempDir()

	fake := sourcetest.NewFake("/dev/ttyFAKE", lines...)
	fake.SetDelay(2 * time.Millisecond)
	sess := session.New(cfg, fake, session.Options{})
	t.Cleanup(func() { _ = sess.Close() })
	return fixture{cfg: cfg, fake: fake, sess: sess}
}

func (f fixture) model(configPath string) Model {
	return New(Options{
		Config:     f.cfg,
		ConfigPath: configPath,
		Session:    f.sess,
		Now:        func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = update(t, m, keyRunes(string(r)))
	}
	return m
}

func clearInput(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; i < 16; i++ {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	return m
}

// startAndWait starts the session outside Bubble Tea and waits for n samples.
func startAndWait(t *testing.T, f fixture, m Model, n int) Model {
	t.Helper()
	require.NoError(t, f.sess.Start(context.Background()))
	require.Eventually(t, func() bool { return f.sess.Snapshot().Len() >= n },
		2*time.Second, 5*time.Millisecond)
	return update(t, m, startedMsg{})
}

func TestTitleStateTransitions(t *testing.T) {
	f := newFixture(t, config.PresetClimate)
	m := f.model("")
	assert.Equal(t, "Disconnected", m.TitleState())

	require.NoError(t, f.sess.Start(context.Background()))
	m = update(t, m, startedMsg{})
	assert.Equal(t, "Waiting for data", m.TitleState())
	assert.Equal(t, "Started on /dev/ttyFAKE", m.Notice())

	f.fake.Push("20,50")
	require.Eventually(t, func() bool { return f.sess.Snapshot().Len() == 1 },
		2*time.Second, 5*time.Millisecond)
	m = update(t, m, tickMsg(time.Now()))
	assert.Equal(t, "Running", m.TitleState())

	require.NoError(t, f.sess.Stop())
	m = update(t, m, stoppedMsg{})
	assert.Equal(t, "Stopped", m.TitleState(), "climate keeps the port open after stop")
}

func TestTitleReadyWhenOpenWithoutData(t *testing.T) {
	f := newFixture(t, config.PresetClimate)
	m := f.model("")

	require.NoError(t, f.sess.Start(context.Background()))
	require.NoError(t, f.sess.Stop())
	m = update(t, m, stoppedMsg{})
	assert.Equal(t, "Ready", m.TitleState())
}

func TestStatusLine(t *testing.T) {
	f := newFixture(t, config.PresetClimate, "40,50")
	m := startAndWait(t, f, f.model(""), 1)

	assert.Equal(t, "Alert: Temperature HIGH", m.StatusLine())
	assert.Contains(t, m.View(), "Alert: Temperature HIGH")
}

func TestToggleExcludesHiddenChannelFromAlerts(t *testing.T) {
	f := newFixture(t, config.PresetClimate, "40,80")
	m := startAndWait(t, f, f.model(""), 1)
	assert.Equal(t, "Alert: Temperature HIGH; Humidity HIGH", m.StatusLine())

	m = update(t, m, keyRunes("1"))
	assert.False(t, m.Visible(0))
	assert.Equal(t, "Alert: Humidity HIGH", m.StatusLine())

	m = update(t, m, keyRunes("2"))
	assert.Equal(t, "Status: Normal", m.StatusLine())
	assert.Contains(t, m.View(), "all channels hidden")

	m = update(t, m, keyRunes("1"))
	assert.True(t, m.Visible(0))
	assert.Equal(t, "Alert: Temperature HIGH", m.StatusLine())
}

func TestToggleOutOfRangeIsIgnored(t *testing.T) {
	f := newFixture(t, config.PresetClimate)
	m := update(t, f.model(""), keyRunes("7"))
	assert.True(t, m.Visible(0))
	assert.True(t, m.Visible(1))
	assert.False(t, m.Visible(6))
}

func TestEditThresholds(t *testing.T) {
	f := newFixture(t, config.PresetClimate, "40,50")
	m := startAndWait(t, f, f.model(""), 1)
	require.Equal(t, "Alert: Temperature HIGH", m.StatusLine())

	m = update(t, m, keyRunes("t"))
	require.True(t, m.Editing())
	assert.Equal(t, "15", m.inputs[0].Value())
	assert.Equal(t, "35", m.inputs[1].Value())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = clearInput(t, m)
	m = typeText(t, m, "45")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.Editing())
	assert.Equal(t, "45", m.Channels()[0].Max)
	assert.Equal(t, "Status: Normal", m.StatusLine())
	assert.Equal(t, "Temperature thresholds updated", m.Notice())
}

func TestEditSelectsChannel(t *testing.T) {
	f := newFixture(t, config.PresetClimate)
	m := f.model("")

	m = update(t, m, keyRunes("l"))
	m = update(t, m, keyRunes("l"))
	assert.Equal(t, 1, m.selected, "selection stops at the last channel")

	m = update(t, m, keyRunes("t"))
	assert.Equal(t, "30", m.inputs[0].Value())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Editing())
	assert.Equal(t, "30", m.Channels()[1].Min, "cancel keeps the old value")
}

func TestInvalidThresholdOnlyAffectsItsChannel(t *testing.T) {
	f := newFixture(t, config.PresetClimate, "20,80")
	m := startAndWait(t, f, f.model(""), 1)

	m = update(t, m, keyRunes("t"))
	m = clearInput(t, m)
	m = typeText(t, m, "abc")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "Alert: Temperature: invalid threshold; Humidity HIGH", m.StatusLine())
	assert.Equal(t, session.NoticeWarn, m.noticeLevel)
	assert.True(t, strings.HasPrefix(m.Notice(), "Temperature: "))
}

func TestBlankThresholdIsUnbounded(t *testing.T) {
	f := newFixture(t, config.PresetClimate, "99,50")
	m := startAndWait(t, f, f.model(""), 1)

	m = update(t, m, keyRunes("t"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = clearInput(t, m)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "", m.Channels()[0].Max)
	assert.Equal(t, "Status: Normal", m.StatusLine())
}

func TestExportCSVWithoutData(t *testing.T) {
	f := newFixture(t, config.PresetClimate)
	m := f.model("")

	msg := m.exportCSVCmd()()
	m = update(t, m, msg)
	assert.Equal(t, "No data to export", m.Notice())
	assert.Equal(t, session.NoticeInfo, m.noticeLevel)
}

func TestExportCSVWritesFile(t *testing.T) {
	f := newFixture(t, config.PresetClimate, "21.5,40", "21.6,41")
	m := startAndWait(t, f, f.model(""), 2)

	m = update(t, m, m.exportCSVCmd()())
	path := filepath.Join(f.cfg.Export.Dir, "sensormon-20260301-120000.csv")
	assert.Equal(t, "CSV saved to "+path, m.Notice())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Time (s),Temperature (°C),Humidity (%)\n"))
}

func TestSaveGraphWritesPNG(t *testing.T) {
	f := newFixture(t, config.PresetClimate, "21.5,40", "21.6,41")
	m := startAndWait(t, f, f.model(""), 2)

	m = update(t, m, m.saveGraphCmd()())
	path := filepath.Join(f.cfg.Export.Dir, "sensormon-20260301-120000.png")
	assert.Equal(t, "Graph saved to "+path, m.Notice())
	assert.FileExists(t, path)
}

func TestSaveThresholdsWithoutConfig(t *testing.T) {
	f := newFixture(t, config.PresetClimate)
	m := f.model("")

	m = update(t, m, m.saveThresholdsCmd()())
	assert.Equal(t, session.NoticeError, m.noticeLevel)
	assert.Contains(t, m.Notice(), "No config file")
}

func TestStopWhenNotRunning(t *testing.T) {
	f := newFixture(t, config.PresetClimate)
	m := update(t, f.model(""), keyRunes("x"))
	assert.Equal(t, "Not running", m.Notice())
}

func TestStartKeySetsConnecting(t *testing.T) {
	f := newFixture(t, config.PresetClimate)
	m := f.model("")

	next, cmd := m.Update(keyRunes("s"))
	m = next.(Model)
	assert.True(t, m.connecting)
	assert.NotNil(t, cmd)
	assert.Equal(t, "Connecting to /dev/ttyFAKE", m.Notice())
	assert.Contains(t, m.View(), "connecting")

	// A second press while connecting is ignored.
	_, cmd = m.Update(keyRunes("s"))
	assert.Nil(t, cmd)
}

func TestNoticeFromSession(t *testing.T) {
	f := newFixture(t, config.PresetClimate)
	m := f.model("")

	m = update(t, m, noticeMsg(session.Notice{Level: session.NoticeError, Message: "Connection to /dev/ttyFAKE lost"}))
	assert.Equal(t, "Connection to /dev/ttyFAKE lost", m.Notice())
	assert.Contains(t, m.View(), "Connection to /dev/ttyFAKE lost")
}

func TestHelpToggle(t *testing.T) {
	f := newFixture(t, config.PresetClimate)
	m := f.model("")

	m = update(t, m, keyRunes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)
}

func TestQuit(t *testing.T) {
	f := newFixture(t, config.PresetClimate)
	next, cmd := f.model("").Update(keyRunes("q"))
	m := next.(Model)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestViewShowsCardsAndChart(t *testing.T) {
	f := newFixture(t, config.PresetClimate, "21.5,40.25")
	m := startAndWait(t, f, f.model(""), 1)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	assert.Contains(t, view, "Live Sensor Data - Running")
	assert.Contains(t, view, "21.50 °C")
	assert.Contains(t, view, "40.25 %")
	assert.Contains(t, view, "Status: Normal")
}

func TestViewBeforeData(t *testing.T) {
	f := newFixture(t, config.PresetClimate)
	view := f.model("").View()

	assert.Contains(t, view, "Live Sensor Data - Disconnected")
	assert.Contains(t, view, "Temperature: -- °C")
	assert.Contains(t, view, "no data")
}
