// Package sensor holds the channel model shared by sources, the session
// controller, exporters and the dashboard: channel specs, readings and
// threshold evaluation.
package sensor

import (
	"fmt"
	"time"
)

// MaxChannels bounds how many values a single reading may carry.
const MaxChannels = 8

// Channel describes one measurement stream.
type Channel struct {
	ID    string
	Label string
	Unit  string

	// Min and Max are kept as text because the dashboard edits them live and
	// a bad entry must degrade to an invalid-threshold notice, not a crash.
	Min string
	Max string

	// Precision is the number of decimals used for readouts. Zero means 2.
	Precision int

	// Bands optionally colour the readout by absolute value, independent of
	// the alert thresholds.
	Bands []Band

	// AxisMin and AxisMax pin the chart's Y range when both are set.
	AxisMin *float64
	AxisMax *float64
}

// Level is a severity used for colouring.
type Level int

const (
	LevelNormal Level = iota
	LevelWarning
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Band applies Level to values below Below. Bands are checked in order; a
// value above every band gets the last band's level.
type Band struct {
	Below float64
	Level Level
}

// BandLevel returns the colour band for v, or LevelNormal without bands.
func (c Channel) BandLevel(v float64) Level {
	if len(c.Bands) == 0 {
		return LevelNormal
	}
	for _, b := range c.Bands {
		if v < b.Below {
			return b.Level
		}
	}
	return c.Bands[len(c.Bands)-1].Level
}

// Title is the label with the unit appended, e.g. "Temperature (°C)".
func (c Channel) Title() string {
	if c.Unit == "" {
		return c.Label
	}
	return fmt.Sprintf("%s (%s)", c.Label, c.Unit)
}

// Format renders v using the channel's precision and unit.
func (c Channel) Format(v float64) string {
	p := c.Precision
	if p <= 0 {
		p = 2
	}
	s := fmt.Sprintf("%.*f", p, v)
	if c.Unit != "" {
		s += " " + c.Unit
	}
	return s
}

// Reading is one sample across all channels.
type Reading struct {
	// At is the wall-clock time the sample was accepted (or reported, for
	// cloud feeds).
	At time.Time
	// Elapsed is seconds since the session started.
	Elapsed float64
	// Label is an optional display timestamp, e.g. the feed's time of day.
	Label  string
	Values []float64
}
