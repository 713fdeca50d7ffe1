package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/sensor"
	"gonum.org/v1/plot/vg"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but sensormon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade sensormon or lower the version field.")
	}

	if err := validateChannels(cfg.Channels); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'channels' section in your .sensormon.yaml.")
	}

	if err := validateFormat(cfg.Format, len(cfg.Channels)); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'format' section in your .sensormon.yaml.")
	}

	if err := validateSource(cfg.Source, len(cfg.Channels)); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'source' section in your .sensormon.yaml.")
	}

	if cfg.History.Size <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("history.size needs to be positive (got %d)", cfg.History.Size),
			"50 is a good starting point.")
	}

	if cfg.RefreshInterval <= 0 {
		return errors.New(errors.ErrConfig,
			"refresh_interval needs to be positive",
			"Try something like '1s' or '500ms'.")
	}

	if err := validateExport(cfg.Export); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'export' section in your .sensormon.yaml.")
	}

	if err := validateArchive(cfg.Archive); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'archive' section in your .sensormon.yaml.")
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "log.level isn't valid", "Use debug, info, warn, or error.")
	}

	return nil
}

func validateChannels(channels []ChannelConfig) error {
	if len(channels) == 0 {
		return fmt.Errorf("no channels configured - add at least one under 'channels'")
	}
	if len(channels) > sensor.MaxChannels {
		return fmt.Errorf("%d channels configured but the limit is %d", len(channels), sensor.MaxChannels)
	}

	seen := make(map[string]bool)
	for i, ch := range channels {
		if strings.TrimSpace(ch.ID) == "" {
			return fmt.Errorf("channel %d needs an 'id'", i+1)
		}
		if seen[ch.ID] {
			return fmt.Errorf("channel id '%s' is used twice", ch.ID)
		}
		seen[ch.ID] = true

		if _, err := sensor.ParseThreshold(ch.Min, ch.Max); err != nil {
			return fmt.Errorf("channel '%s' has bad thresholds (min=%q, max=%q)", ch.ID, ch.Min, ch.Max)
		}

		if ch.Precision < 0 || ch.Precision > 6 {
			return fmt.Errorf("channel '%s' precision needs to be 0-6 (got %d)", ch.ID, ch.Precision)
		}

		if (ch.AxisMin == nil) != (ch.AxisMax == nil) {
			return fmt.Errorf("channel '%s' sets only one of axis_min/axis_max - set both or neither", ch.ID)
		}
		if ch.AxisMin != nil && *ch.AxisMin >= *ch.AxisMax {
			return fmt.Errorf("channel '%s' axis_min (%v) needs to be below axis_max (%v)", ch.ID, *ch.AxisMin, *ch.AxisMax)
		}

		prev := 0.0
		for j, b := range ch.Bands {
			switch b.Level {
			case "", "normal", "warning", "warn", "critical":
			default:
				return fmt.Errorf("channel '%s' band %d has level '%s' - use normal, warning, or critical", ch.ID, j+1, b.Level)
			}
			if j > 0 && b.Below <= prev {
				return fmt.Errorf("channel '%s' bands need increasing 'below' values", ch.ID)
			}
			prev = b.Below
		}
	}
	return nil
}

func validateFormat(f FormatConfig, channels int) error {
	switch f.Kind {
	case FormatCSV, "":
	case FormatVoltage:
		if channels != 1 {
			return fmt.Errorf("format 'voltage' reads exactly one channel, but %d are configured", channels)
		}
	default:
		return fmt.Errorf("format.kind '%s' isn't valid - use 'csv' or 'voltage'", f.Kind)
	}
	return nil
}

func validateSource(s SourceConfig, channels int) error {
	switch s.Kind {
	case SourceSerial:
		if strings.TrimSpace(s.Serial.Port) == "" {
			return fmt.Errorf("source.serial.port is empty - run 'sensormon ports' to find your device")
		}
		if s.Serial.Baud <= 0 {
			return fmt.Errorf("source.serial.baud needs to be positive (got %d)", s.Serial.Baud)
		}
		if s.Serial.ReadTimeout <= 0 {
			return fmt.Errorf("source.serial.read_timeout needs to be positive")
		}
		if s.Serial.Settle < 0 {
			return fmt.Errorf("source.serial.settle can't be negative")
		}
		if s.Serial.WarmupLines < 0 {
			return fmt.Errorf("source.serial.warmup_lines can't be negative")
		}
	case SourceHTTP:
		if s.HTTP.ChannelID == "" {
			return fmt.Errorf("source.http.channel_id is empty - find it on your ThingSpeak channel page")
		}
		u, err := url.Parse(s.HTTP.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("source.http.base_url '%s' isn't a valid URL", s.HTTP.BaseURL)
		}
		if s.HTTP.Results <= 0 {
			return fmt.Errorf("source.http.results needs to be positive (got %d)", s.HTTP.Results)
		}
		if s.HTTP.PollInterval <= 0 {
			return fmt.Errorf("source.http.poll_interval needs to be positive")
		}
		if s.HTTP.Timeout <= 0 {
			return fmt.Errorf("source.http.timeout needs to be positive")
		}
		if channels > 8 {
			return fmt.Errorf("ThingSpeak feeds carry at most 8 fields")
		}
	default:
		return fmt.Errorf("source.kind '%s' isn't valid - use 'serial' or 'http'", s.Kind)
	}
	return nil
}

func validateExport(e ExportConfig) error {
	for name, v := range map[string]string{"width": e.Width, "height": e.Height} {
		l, err := vg.ParseLength(v)
		if err != nil || l <= 0 {
			return fmt.Errorf("export.%s '%s' doesn't look like a length - try '10in' or '25cm'", name, v)
		}
	}
	if e.DPI <= 0 {
		return fmt.Errorf("export.dpi needs to be positive (got %d)", e.DPI)
	}
	return nil
}

func validateArchive(a ArchiveConfig) error {
	if !a.Enabled {
		return nil
	}
	if strings.TrimSpace(a.Path) == "" {
		return fmt.Errorf("archive.path is empty")
	}
	if a.BatchSize <= 0 {
		return fmt.Errorf("archive.batch_size needs to be positive (got %d)", a.BatchSize)
	}
	if a.FlushInterval <= 0 {
		return fmt.Errorf("archive.flush_interval needs to be positive")
	}
	return nil
}
