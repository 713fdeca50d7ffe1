package config

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rileyhilliard/sensormon/internal/errors"
)

// Preset names.
const (
	PresetClimate    = "climate"
	PresetTriple     = "triple"
	PresetVoltage    = "voltage"
	PresetThingSpeak = "thingspeak"
)

// PresetInfo describes a built-in preset for listings and the init wizard.
type PresetInfo struct {
	Name        string
	Description string
	build       func() *Config
}

var presets = map[string]PresetInfo{
	PresetClimate: {
		Name:        PresetClimate,
		Description: "Temperature and humidity over serial (2 channels)",
		build:       climatePreset,
	},
	PresetTriple: {
		Name:        PresetTriple,
		Description: "Three analog sensors over serial",
		build:       triplePreset,
	},
	PresetVoltage: {
		Name:        PresetVoltage,
		Description: "Single ADC voltage over serial with colour bands",
		build:       voltagePreset,
	},
	PresetThingSpeak: {
		Name:        PresetThingSpeak,
		Description: "Temperature and humidity polled from a ThingSpeak channel",
		build:       thingSpeakPreset,
	},
}

// Presets returns the built-in presets sorted by name.
func Presets() []PresetInfo {
	out := make([]PresetInfo, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PresetNames returns the sorted preset names.
func PresetNames() []string {
	var names []string
	for _, p := range Presets() {
		names = append(names, p.Name)
	}
	return names
}

// Preset returns a fresh copy of the named preset.
func Preset(name string) (*Config, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown preset '%s'", name),
			"Available presets: "+strings.Join(PresetNames(), ", "))
	}
	cfg := p.build()
	cfg.Preset = p.Name
	return cfg, nil
}

func climatePreset() *Config {
	cfg := baseConfig()
	cfg.Source.Serial.Port = "/dev/cu.usbserial-110"
	cfg.Channels = []ChannelConfig{
		{ID: "temperature", Label: "Temperature", Unit: "°C", Min: "15", Max: "35"},
		{ID: "humidity", Label: "Humidity", Unit: "%", Min: "30", Max: "70"},
	}
	return cfg
}

func triplePreset() *Config {
	cfg := baseConfig()
	cfg.Source.Serial.Port = "/dev/cu.usbserial-110"
	cfg.Source.Serial.WarmupLines = 5
	cfg.Format.SkipPrefixes = []string{"INFO"}
	cfg.Channels = []ChannelConfig{
		{ID: "s1", Label: "Sensor 1", Min: "10", Max: "90"},
		{ID: "s2", Label: "Sensor 2", Min: "60", Max: "140"},
		{ID: "s3", Label: "Sensor 3", Min: "-15", Max: "15"},
	}
	return cfg
}

func voltagePreset() *Config {
	cfg := baseConfig()
	cfg.Source.Serial.Port = "/dev/cu.usbserial-10"
	cfg.Source.Serial.CloseOnStop = true
	cfg.Format.Kind = FormatVoltage
	cfg.RefreshInterval = 500 * time.Millisecond
	lo, hi := 0.0, 3.3
	cfg.Channels = []ChannelConfig{
		{
			ID:        "voltage",
			Label:     "Voltage",
			Unit:      "V",
			Min:       "0",
			Max:       "3.3",
			Precision: 3,
			Bands: []BandConfig{
				{Below: 1.5, Level: "normal"},
				{Below: 2.8, Level: "warning"},
				{Below: math.Inf(1), Level: "critical"},
			},
			AxisMin: &lo,
			AxisMax: &hi,
		},
	}
	return cfg
}

func thingSpeakPreset() *Config {
	cfg := baseConfig()
	cfg.Source.Kind = SourceHTTP
	cfg.RefreshInterval = time.Second
	cfg.Lock.Enabled = false
	cfg.Channels = []ChannelConfig{
		{ID: "field1", Label: "Temperature", Unit: "°C", Min: "15", Max: "35"},
		{ID: "field2", Label: "Humidity", Unit: "%", Min: "30", Max: "70"},
	}
	return cfg
}
