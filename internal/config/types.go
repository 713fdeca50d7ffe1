package config

import (
	"time"

	"github.com/rileyhilliard/sensormon/internal/sensor"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Source kinds.
const (
	SourceSerial = "serial"
	SourceHTTP   = "http"
)

// Line format kinds.
const (
	FormatCSV     = "csv"
	FormatVoltage = "voltage"
)

// Config represents the complete .sensormon.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Preset names a built-in configuration the file is layered over.
	Preset string `yaml:"preset,omitempty" mapstructure:"preset"`

	Source   SourceConfig    `yaml:"source" mapstructure:"source"`
	Format   FormatConfig    `yaml:"format" mapstructure:"format"`
	Channels []ChannelConfig `yaml:"channels" mapstructure:"channels"`
	History  HistoryConfig   `yaml:"history" mapstructure:"history"`

	// RefreshInterval is the dashboard redraw period.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Archive ArchiveConfig `yaml:"archive" mapstructure:"archive"`
	Lock    LockConfig    `yaml:"lock" mapstructure:"lock"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SourceConfig selects and configures where readings come from.
type SourceConfig struct {
	// Kind is "serial" or "http".
	Kind   string       `yaml:"kind" mapstructure:"kind"`
	Serial SerialConfig `yaml:"serial" mapstructure:"serial"`
	HTTP   HTTPConfig   `yaml:"http" mapstructure:"http"`
}

// SerialConfig configures a serial-connected device.
type SerialConfig struct {
	Port        string        `yaml:"port" mapstructure:"port"`
	Baud        int           `yaml:"baud" mapstructure:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`

	// Settle is how long to wait after opening before talking to the device.
	// Many boards reset when the port opens.
	Settle time.Duration `yaml:"settle" mapstructure:"settle"`

	// WarmupLines are read and discarded after opening.
	WarmupLines int `yaml:"warmup_lines" mapstructure:"warmup_lines"`

	StartToken string `yaml:"start_token" mapstructure:"start_token"`
	StopToken  string `yaml:"stop_token" mapstructure:"stop_token"`

	// CloseOnStop releases the port as soon as the session stops instead of
	// holding it until exit.
	CloseOnStop bool `yaml:"close_on_stop" mapstructure:"close_on_stop"`
}

// HTTPConfig configures the ThingSpeak-style feed poller.
type HTTPConfig struct {
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	ChannelID    string        `yaml:"channel_id" mapstructure:"channel_id"`
	APIKey       string        `yaml:"api_key" mapstructure:"api_key"`
	Results      int           `yaml:"results" mapstructure:"results"`
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MaxFailures is how many consecutive failed polls end the session.
	MaxFailures int `yaml:"max_failures" mapstructure:"max_failures"`
}

// FormatConfig describes the device's line format.
type FormatConfig struct {
	// Kind is "csv" (N comma-separated numbers) or "voltage".
	Kind         string   `yaml:"kind" mapstructure:"kind"`
	SkipPrefixes []string `yaml:"skip_prefixes" mapstructure:"skip_prefixes"`
}

// ChannelConfig describes one measurement stream.
type ChannelConfig struct {
	ID    string `yaml:"id" mapstructure:"id"`
	Label string `yaml:"label" mapstructure:"label"`
	Unit  string `yaml:"unit,omitempty" mapstructure:"unit"`

	// Min and Max are alert thresholds. Blank means unbounded.
	Min string `yaml:"min,omitempty" mapstructure:"min"`
	Max string `yaml:"max,omitempty" mapstructure:"max"`

	Precision int          `yaml:"precision,omitempty" mapstructure:"precision"`
	Hidden    bool         `yaml:"hidden,omitempty" mapstructure:"hidden"`
	Bands     []BandConfig `yaml:"bands,omitempty" mapstructure:"bands"`
	AxisMin   *float64     `yaml:"axis_min,omitempty" mapstructure:"axis_min"`
	AxisMax   *float64     `yaml:"axis_max,omitempty" mapstructure:"axis_max"`
}

// BandConfig colours values below Below with Level (normal, warning, critical).
type BandConfig struct {
	Below float64 `yaml:"below" mapstructure:"below"`
	Level string  `yaml:"level" mapstructure:"level"`
}

// HistoryConfig bounds the in-memory sample history.
type HistoryConfig struct {
	Size int `yaml:"size" mapstructure:"size"`
}

// ExportConfig controls CSV and chart image output.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
	// Width and Height are lengths such as "10in" or "25cm".
	Width  string `yaml:"width" mapstructure:"width"`
	Height string `yaml:"height" mapstructure:"height"`
	DPI    int    `yaml:"dpi" mapstructure:"dpi"`
	// Thresholds draws min/max guide lines on saved charts.
	Thresholds bool `yaml:"thresholds" mapstructure:"thresholds"`
}

// ArchiveConfig controls the optional SQLite reading archive.
type ArchiveConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	Path          string        `yaml:"path" mapstructure:"path"`
	BatchSize     int           `yaml:"batch_size" mapstructure:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval" mapstructure:"flush_interval"`
}

// LockConfig controls the per-port lock that stops two processes sharing a device.
type LockConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

// SensorChannels converts the channel config into the runtime model.
func (c *Config) SensorChannels() []sensor.Channel {
	out := make([]sensor.Channel, len(c.Channels))
	for i, ch := range c.Channels {
		out[i] = ch.Sensor()
	}
	return out
}

// Sensor converts one channel config into the runtime model.
func (ch ChannelConfig) Sensor() sensor.Channel {
	s := sensor.Channel{
		ID:        ch.ID,
		Label:     ch.Label,
		Unit:      ch.Unit,
		Min:       ch.Min,
		Max:       ch.Max,
		Precision: ch.Precision,
		AxisMin:   ch.AxisMin,
		AxisMax:   ch.AxisMax,
	}
	if s.Label == "" {
		s.Label = ch.ID
	}
	for _, b := range ch.Bands {
		s.Bands = append(s.Bands, sensor.Band{Below: b.Below, Level: parseLevel(b.Level)})
	}
	return s
}

// Visible returns the per-channel visibility flags.
func (c *Config) Visible() []bool {
	out := make([]bool, len(c.Channels))
	for i, ch := range c.Channels {
		out[i] = !ch.Hidden
	}
	return out
}

// JoinTimeout bounds how long shutdown waits for the reader goroutine.
func (c *Config) JoinTimeout() time.Duration {
	if c.Source.Kind == SourceHTTP {
		return c.Source.HTTP.Timeout + 500*time.Millisecond
	}
	return c.Source.Serial.ReadTimeout + 500*time.Millisecond
}

func parseLevel(s string) sensor.Level {
	switch s {
	case "warning", "warn":
		return sensor.LevelWarning
	case "critical":
		return sensor.LevelCritical
	default:
		return sensor.LevelNormal
	}
}

// DefaultConfig returns the climate preset, which is what a bare config
// file layers over.
func DefaultConfig() *Config {
	return climatePreset()
}

func baseConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Source: SourceConfig{
			Kind: SourceSerial,
			Serial: SerialConfig{
				Baud:        115200,
				ReadTimeout: time.Second,
				Settle:      1500 * time.Millisecond,
				StartToken:  "START",
				StopToken:   "STOP",
			},
			HTTP: HTTPConfig{
				BaseURL:      "https://api.thingspeak.com",
				Results:      10,
				PollInterval: 15 * time.Second,
				Timeout:      10 * time.Second,
				MaxFailures:  3,
			},
		},
		Format: FormatConfig{
			Kind: FormatCSV,
		},
		History:         HistoryConfig{Size: 50},
		RefreshInterval: time.Second,
		Export: ExportConfig{
			Dir:    ".",
			Width:  "10in",
			Height: "5in",
			DPI:    300,
		},
		Archive: ArchiveConfig{
			Path:          "sensormon.db",
			BatchSize:     20,
			FlushInterval: 5 * time.Second,
		},
		Lock: LockConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
