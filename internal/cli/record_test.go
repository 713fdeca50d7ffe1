package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/history"
	"github.com/rileyhilliard/sensormon/internal/session"
	"github.com/rileyhilliard/sensormon/internal/source"
	sourcetest "github.com/rileyhilliard/sensormon/internal/source/testing"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

func init() {
	ui.DisableColors()
}

func recordSetup(t *testing.T, lines ...string) (*config.Config, *sourcetest.Fake, *session.Controller) {
	t.Helper()
	cfg, err := config.Preset(config.PresetClimate)
	require.NoError(t, err)
	cfg.Source.Serial.ReadTimeout = 50 * time.Millisecond
	cfg.Lock.Dir = t.TempDir()
	cfg.RefreshInterval = 10 * time.Millisecond

	fake := sourcetest.NewFake("/dev/ttyFAKE", lines...)
	fake.SetDelay(2 * time.Millisecond)
	ctrl := session.New(cfg, fake, session.Options{})
	t.Cleanup(func() { _ = ctrl.Close() })
	return cfg, fake, ctrl
}

func TestRunRecording_DurationThenExport(t *testing.T) {
	cfg, fake, ctrl := recordSetup(t, "21.5,40", "21.6,41", "21.7,42")
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "run.csv")
	pngPath := filepath.Join(dir, "run.png")

	var out bytes.Buffer
	err := runRecording(context.Background(), cfg, ctrl, RecordOptions{
		Duration:  300 * time.Millisecond,
		CSVPath:   csvPath,
		ImagePath: pngPath,
		Out:       &out,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"START", "STOP"}, fake.Sent())
	assert.Equal(t, session.Disconnected, ctrl.State())

	text := out.String()
	assert.Contains(t, text, "sensormon")
	assert.Contains(t, text, "recording for 300ms")
	assert.Contains(t, text, "Recorded 3 samples (0 discarded)")
	assert.Contains(t, text, "CSV saved to "+csvPath)
	assert.Contains(t, text, "Chart saved to "+pngPath)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4)
	assert.FileExists(t, pngPath)
}

func TestRunRecording_NoDataSkipsExport(t *testing.T) {
	cfg, _, ctrl := recordSetup(t)
	csvPath := filepath.Join(t.TempDir(), "run.csv")

	var out bytes.Buffer
	err := runRecording(context.Background(), cfg, ctrl, RecordOptions{
		Duration: 100 * time.Millisecond,
		CSVPath:  csvPath,
		Out:      &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No data to export")
	assert.NoFileExists(t, csvPath)
}

func TestRunRecording_CancelledContext(t *testing.T) {
	cfg, _, ctrl := recordSetup(t, "1,2")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	var out bytes.Buffer
	require.NoError(t, runRecording(ctx, cfg, ctrl, RecordOptions{Out: &out}))
	assert.Contains(t, out.String(), "recording until interrupted")
	assert.Contains(t, out.String(), "Recorded 1 samples")
}

func TestRunRecording_LinkLostStillExports(t *testing.T) {
	cfg, fake, ctrl := recordSetup(t, "21.5,40", "21.6,41")
	fake.FailWith = stderrors.New("device unplugged")
	csvPath := filepath.Join(t.TempDir(), "run.csv")

	var out bytes.Buffer
	err := runRecording(context.Background(), cfg, ctrl, RecordOptions{
		Duration: 5 * time.Second,
		CSVPath:  csvPath,
		Out:      &out,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
	assert.Contains(t, out.String(), "Recorded 2 samples")
	assert.FileExists(t, csvPath)
}

func TestRunRecording_StartFailure(t *testing.T) {
	cfg, fake, ctrl := recordSetup(t)
	fake.OpenErr = stderrors.New("no such device")

	var out bytes.Buffer
	err := runRecording(context.Background(), cfg, ctrl, RecordOptions{Out: &out})
	require.Error(t, err)
	assert.Contains(t, out.String(), ui.SymbolFail+" Connecting to /dev/ttyFAKE")
}

func TestStatusLine(t *testing.T) {
	cfg, err := config.Preset(config.PresetClimate)
	require.NoError(t, err)
	channels := cfg.SensorChannels()

	line, alerting := statusLine(channels, cfg.Visible(), history.Snapshot{})
	assert.Equal(t, "Waiting for data", line)
	assert.False(t, alerting)

	snap := history.Snapshot{
		Elapsed: []float64{0.5, 1.25},
		Values:  [][]float64{{20, 40}, {50, 80}},
	}
	line, alerting = statusLine(channels, []bool{true, true}, snap)
	assert.Equal(t, "t=1.2s Temperature=40.00 °C Humidity=80.00 % | Alert: Temperature HIGH; Humidity HIGH", line)
	assert.True(t, alerting)

	line, alerting = statusLine(channels, []bool{false, true}, snap)
	assert.Equal(t, "t=1.2s Temperature=40.00 °C Humidity=80.00 % | Alert: Humidity HIGH", line)
	assert.True(t, alerting)

	line, alerting = statusLine(channels, []bool{false, false}, snap)
	assert.Equal(t, "t=1.2s Temperature=40.00 °C Humidity=80.00 % | Status: Normal", line)
	assert.False(t, alerting, "hidden channels are logged but not alerted")

	normal := history.Snapshot{Elapsed: []float64{2}, Values: [][]float64{{20}, {50}}}
	line, alerting = statusLine(channels, []bool{true, true}, normal)
	assert.Equal(t, "t=2.0s Temperature=20.00 °C Humidity=50.00 % | Status: Normal", line)
	assert.False(t, alerting)
}

func TestDescribeDuration(t *testing.T) {
	assert.Equal(t, "until interrupted", describeDuration(0))
	assert.Equal(t, "for 5m0s", describeDuration(5*time.Minute))
}

func TestDescribeSource(t *testing.T) {
	assert.Equal(t, "/dev/ttyFAKE", describeSource(sourcetest.NewFake("/dev/ttyFAKE")))

	ts := source.NewThingSpeak(config.HTTPConfig{
		BaseURL:   "https://api.thingspeak.com",
		ChannelID: "42",
		APIKey:    "SECRET",
		Results:   10,
	}, 2, nil, nil)
	assert.Equal(t, "https://api.thingspeak.com/channels/42/feeds.json?api_key=REDACTED&results=10", describeSource(ts))

	bad := source.NewThingSpeak(config.HTTPConfig{BaseURL: "not a url", ChannelID: "42"}, 2, nil, nil)
	assert.Equal(t, "thingspeak:42", describeSource(bad))
}
