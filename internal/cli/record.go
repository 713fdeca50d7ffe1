package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/export"
	"github.com/rileyhilliard/sensormon/internal/history"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/sensor"
	"github.com/rileyhilliard/sensormon/internal/session"
	"github.com/rileyhilliard/sensormon/internal/source"
	"github.com/rileyhilliard/sensormon/internal/ui"
)

// recordStatusEvery is the floor for the status log period.
const recordStatusEvery = 500 * time.Millisecond

// RecordOptions configure a headless recording.
type RecordOptions struct {
	Flags     SessionFlags
	Duration  time.Duration
	CSVPath   string
	ImagePath string
	Out       io.Writer
}

func recordCommand(ctx context.Context, opts RecordOptions) error {
	cfg, _, err := loadSessionConfig(opts.Flags)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctrl, closeSession, err := openSession(cfg, sessionDeps{})
	if err != nil {
		return err
	}
	defer closeSession()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runRecording(ctx, cfg, ctrl, opts)
}

// runRecording drives one session until ctx ends, the duration elapses or
// the link drops, then writes the exports. Exports are written even when the
// link was lost so the captured data survives.
func runRecording(ctx context.Context, cfg *config.Config, ctrl *session.Controller, opts RecordOptions) error {
	log := logger.Named("record")
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprint(out, ui.RenderHeader(ui.HeaderInfo{
		Version: formatVersion(version),
		Tagline: "recording " + describeDuration(opts.Duration),
		Source:  describeSource(ctrl.Source()),
	}))

	spin := ui.NewSpinner(out, "Connecting to "+ctrl.Source().Name())
	spin.Start()
	if err := ctrl.Start(ctx); err != nil {
		spin.Fail()
		return err
	}
	spin.Success()

	if opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	interval := cfg.RefreshInterval
	if interval < recordStatusEvery {
		interval = recordStatusEvery
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	channels := cfg.SensorChannels()
	visible := cfg.Visible()

	var linkErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case n := <-ctrl.Notices():
			logNotice(log, n)
			if n.Level == session.NoticeError && ctrl.State() == session.Disconnected {
				linkErr = n.Err
				if linkErr == nil {
					linkErr = errors.New(errors.ErrLink, n.Message, "Check the cable and that the device is powered")
				}
				break loop
			}
		case <-ticker.C:
			if line, alerting := statusLine(channels, visible, ctrl.Snapshot()); alerting {
				log.Warn("%s", line)
			} else {
				log.Info("%s", line)
			}
		}
	}

	if ctrl.State() == session.Running {
		if err := ctrl.Stop(); err != nil {
			log.Warn("stop: %v", err)
		}
	}

	snap := ctrl.Snapshot()
	fmt.Fprintf(out, "Recorded %d samples (%d discarded)\n", snap.Len(), ctrl.Discarded())

	if err := writeExports(out, cfg, channels, visible, snap, opts); err != nil {
		return err
	}
	return linkErr
}

func writeExports(out io.Writer, cfg *config.Config, channels []sensor.Channel, visible []bool, snap history.Snapshot, opts RecordOptions) error {
	if opts.CSVPath != "" {
		err := export.SaveCSV(opts.CSVPath, channels, snap)
		if reportExport(out, "CSV", opts.CSVPath, err) != nil {
			return err
		}
	}
	if opts.ImagePath != "" {
		imgOpts, err := export.ImageOptionsFrom(cfg.Export)
		if err != nil {
			return err
		}
		imgOpts.Title = "Live Sensor Data"
		imgOpts.Visible = visible
		err = export.SaveImage(opts.ImagePath, channels, snap, imgOpts)
		if reportExport(out, "Chart", opts.ImagePath, err) != nil {
			return err
		}
	}
	return nil
}

// reportExport prints the outcome. An empty history is reported, not failed.
func reportExport(out io.Writer, kind, path string, err error) error {
	switch {
	case stderrors.Is(err, export.ErrNoData):
		fmt.Fprintf(out, "%s No data to export, skipped %s\n", ui.WarningStyle().Render(ui.SymbolWarning), path)
		return nil
	case err != nil:
		return err
	default:
		fmt.Fprintf(out, "%s %s saved to %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), kind, path)
		return nil
	}
}

func logNotice(log logger.Logger, n session.Notice) {
	switch n.Level {
	case session.NoticeError:
		log.Error("%s", n.Message)
	case session.NoticeWarn:
		log.Warn("%s", n.Message)
	default:
		log.Info("%s", n.Message)
	}
}

// statusLine is the periodic record log: elapsed time, each latest value,
// then the alert summary over visible channels. alerting is set when a
// visible channel is out of range.
func statusLine(channels []sensor.Channel, visible []bool, snap history.Snapshot) (line string, alerting bool) {
	if snap.Empty() {
		return "Waiting for data", false
	}

	latest := snap.Latest()
	parts := []string{fmt.Sprintf("t=%.1fs", snap.Elapsed[snap.Len()-1])}
	var checks []sensor.Check
	for i, ch := range channels {
		if i >= len(latest) {
			break
		}
		parts = append(parts, ch.Label+"="+ch.Format(latest[i]))
		if i < len(visible) && visible[i] {
			checks = append(checks, ch.Evaluate(latest[i]))
		}
	}
	return strings.Join(parts, " ") + " | " + sensor.Summary(checks), sensor.Alerting(checks)
}

// describeSource names the source for the header. Feeds show the request
// URL, with the API key redacted.
func describeSource(src source.Source) string {
	if f, ok := src.(interface{ FeedURL() string }); ok {
		if u := f.FeedURL(); u != "" {
			return u
		}
	}
	return src.Name()
}

func describeDuration(d time.Duration) string {
	if d <= 0 {
		return "until interrupted"
	}
	return "for " + d.String()
}
