// Package wire decodes the device line formats and the cloud feed payload.
//
// Parsers return ErrMalformed for lines that don't fit the expected shape
// and ErrIgnored for lines that are deliberately skipped (blank lines,
// informational chatter). Both are discarded by the reader loop; neither is
// a connection problem.
package wire

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrMalformed marks a line with the wrong field count or a non-numeric field.
	ErrMalformed = errors.New("malformed line")
	// ErrIgnored marks a line that is skipped on purpose.
	ErrIgnored = errors.New("ignored line")
)

// Parser turns one line of device output into channel values.
type Parser interface {
	Parse(line string) ([]float64, error)
}

// ParseFields splits a comma-separated line into exactly n floats.
func ParseFields(line string, n int) ([]float64, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, ErrIgnored
	}

	parts := strings.Split(line, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%w: want %d fields, got %d", ErrMalformed, n, len(parts))
	}

	values := make([]float64, n)
	for i, p := range parts {
		v, err := parseNumber(p)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %q", ErrMalformed, i+1, strings.TrimSpace(p))
		}
		values[i] = v
	}
	return values, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not finite: %v", v)
	}
	return v, nil
}

// CSVParser parses comma-separated numeric lines.
type CSVParser struct {
	Fields int
	// SkipPrefixes lists line prefixes that are ignored, e.g. "INFO".
	SkipPrefixes []string
}

func (p CSVParser) Parse(line string) ([]float64, error) {
	if skipped(line, p.SkipPrefixes) {
		return nil, ErrIgnored
	}
	return ParseFields(line, p.Fields)
}

var voltagePattern = regexp.MustCompile(`Voltage:\s*([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)\s*V`)

// ParseVoltage extracts the number from a line such as "Voltage: 1.23 V".
func ParseVoltage(line string) (float64, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, ErrIgnored
	}
	m := voltagePattern.FindStringSubmatch(line)
	if m == nil {
		return 0, fmt.Errorf("%w: no voltage in %q", ErrMalformed, line)
	}
	v, err := parseNumber(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

// VoltageParser parses single-channel "Voltage: x V" lines.
type VoltageParser struct {
	SkipPrefixes []string
}

func (p VoltageParser) Parse(line string) ([]float64, error) {
	if skipped(line, p.SkipPrefixes) {
		return nil, ErrIgnored
	}
	v, err := ParseVoltage(line)
	if err != nil {
		return nil, err
	}
	return []float64{v}, nil
}

func skipped(line string, prefixes []string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// Discarded reports whether err is a per-line parse outcome the reader loop
// should drop rather than treat as a failure.
func Discarded(err error) bool {
	return errors.Is(err, ErrMalformed) || errors.Is(err, ErrIgnored)
}
