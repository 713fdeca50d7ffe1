package sensor

import (
	"math"
	"strconv"
	"strings"

	smerrors "github.com/rileyhilliard/sensormon/internal/errors"
)

// Alert is the outcome of checking one value against a threshold.
type Alert int

const (
	AlertNone Alert = iota
	AlertLow
	AlertHigh
	AlertInvalid
)

func (a Alert) String() string {
	switch a {
	case AlertLow:
		return "LOW"
	case AlertHigh:
		return "HIGH"
	case AlertInvalid:
		return "invalid threshold"
	default:
		return "normal"
	}
}

// Threshold is a parsed (min, max) pair. An empty side is unbounded.
type Threshold struct {
	Min float64
	Max float64
}

// ParseThreshold parses threshold text. Blank text leaves that side unbounded.
func ParseThreshold(minText, maxText string) (Threshold, error) {
	t := Threshold{Min: math.Inf(-1), Max: math.Inf(1)}

	parse := func(text, side string) (float64, bool, error) {
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, false, nil
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(v) {
			return 0, false, smerrors.WrapWithCode(err, smerrors.ErrThreshold,
				"invalid "+side+" threshold "+strconv.Quote(text),
				"Enter a number, e.g. 15 or -2.5")
		}
		return v, true, nil
	}

	if v, ok, err := parse(minText, "min"); err != nil {
		return t, err
	} else if ok {
		t.Min = v
	}
	if v, ok, err := parse(maxText, "max"); err != nil {
		return t, err
	} else if ok {
		t.Max = v
	}

	if t.Min > t.Max {
		return t, smerrors.New(smerrors.ErrThreshold,
			"min threshold is above max threshold",
			"Swap the values so min <= max")
	}
	return t, nil
}

// Evaluate applies the rule v<min → LOW, v>max → HIGH, otherwise none.
func (t Threshold) Evaluate(v float64) Alert {
	switch {
	case v < t.Min:
		return AlertLow
	case v > t.Max:
		return AlertHigh
	default:
		return AlertNone
	}
}

// Check is the result of evaluating one channel's latest value.
type Check struct {
	Channel Channel
	Value   float64
	Alert   Alert
	Err     error
}

// Message is the status-line fragment for this check, or "" when normal.
func (c Check) Message() string {
	switch c.Alert {
	case AlertLow, AlertHigh:
		return c.Channel.Label + " " + c.Alert.String()
	case AlertInvalid:
		return c.Channel.Label + ": invalid threshold"
	default:
		return ""
	}
}

// Level maps the alert to a colour severity, falling back to the channel's
// bands when the value is in range.
func (c Check) Level() Level {
	switch c.Alert {
	case AlertLow, AlertHigh:
		return LevelCritical
	case AlertInvalid:
		return LevelWarning
	default:
		return c.Channel.BandLevel(c.Value)
	}
}

// Evaluate checks v against the channel's current threshold text. A parse
// failure only affects this channel.
func (c Channel) Evaluate(v float64) Check {
	t, err := ParseThreshold(c.Min, c.Max)
	if err != nil {
		return Check{Channel: c, Value: v, Alert: AlertInvalid, Err: err}
	}
	return Check{Channel: c, Value: v, Alert: t.Evaluate(v)}
}

// EvaluateAll checks each value against its channel. Channels without a value
// are skipped.
func EvaluateAll(channels []Channel, values []float64) []Check {
	n := len(channels)
	if len(values) < n {
		n = len(values)
	}
	checks := make([]Check, 0, n)
	for i := 0; i < n; i++ {
		checks = append(checks, channels[i].Evaluate(values[i]))
	}
	return checks
}

// Summary renders the status line: "Alert: a; b" or "Status: Normal".
func Summary(checks []Check) string {
	var msgs []string
	for _, c := range checks {
		if m := c.Message(); m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		return "Status: Normal"
	}
	return "Alert: " + strings.Join(msgs, "; ")
}

// Alerting reports whether any check is outside its range.
func Alerting(checks []Check) bool {
	for _, c := range checks {
		if c.Alert == AlertLow || c.Alert == AlertHigh {
			return true
		}
	}
	return false
}
