package history

import (
	"math"
	"time"
)

// Snapshot is an owned copy of the buffer. Callers may keep and modify it
// without holding any lock.
type Snapshot struct {
	Elapsed []float64
	At      []time.Time
	Labels  []string
	// Values holds one series per channel, each the same length as Elapsed.
	Values [][]float64
	// Total counts readings appended since the session started.
	Total uint64
}

// Len returns the number of samples.
func (s Snapshot) Len() int {
	return len(s.Elapsed)
}

// Empty reports whether there are no samples.
func (s Snapshot) Empty() bool {
	return len(s.Elapsed) == 0
}

// Series returns channel i's values, or nil when out of range.
func (s Snapshot) Series(i int) []float64 {
	if i < 0 || i >= len(s.Values) {
		return nil
	}
	return s.Values[i]
}

// Latest returns the newest value of every channel.
func (s Snapshot) Latest() []float64 {
	if s.Empty() {
		return nil
	}
	out := make([]float64, len(s.Values))
	for i, series := range s.Values {
		out[i] = series[len(series)-1]
	}
	return out
}

// Range returns the min and max of channel i. ok is false when the series
// is empty.
func (s Snapshot) Range(i int) (lo, hi float64, ok bool) {
	series := s.Series(i)
	if len(series) == 0 {
		return 0, 0, false
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range series {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, true
}
