// Package history keeps the bounded, lock-guarded sample history for a session.
package history

import (
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/sensormon/internal/sensor"
)

// DefaultSize is the default number of samples retained.
const DefaultSize = 50

// Buffer stores the last N readings as parallel ring buffers: one for
// elapsed time, one for wall-clock time, one for display labels and one per
// channel. All of them are pushed and reset together, so they always have
// the same length.
//
// The reader goroutine is the only writer; the redraw tick and the exporters
// read through Snapshot, which copies under the read lock.
type Buffer struct {
	mu       sync.RWMutex
	size     int
	elapsed  *ring[float64]
	at       *ring[time.Time]
	labels   *ring[string]
	channels []*ring[float64]
	total    uint64
}

// New creates a buffer for the given channel count. A non-positive size
// falls back to DefaultSize.
func New(channels, size int) *Buffer {
	if size <= 0 {
		size = DefaultSize
	}
	if channels < 1 {
		channels = 1
	}
	b := &Buffer{size: size}
	b.alloc(channels)
	return b
}

func (b *Buffer) alloc(channels int) {
	b.elapsed = newRing[float64](b.size)
	b.at = newRing[time.Time](b.size)
	b.labels = newRing[string](b.size)
	b.channels = make([]*ring[float64], channels)
	for i := range b.channels {
		b.channels[i] = newRing[float64](b.size)
	}
}

// Append adds one reading, evicting the oldest sample when full. A reading
// whose value count doesn't match the channel count is rejected and leaves
// the buffer untouched.
func (b *Buffer) Append(r sensor.Reading) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(r.Values) != len(b.channels) {
		return fmt.Errorf("reading has %d values, buffer has %d channels", len(r.Values), len(b.channels))
	}

	b.elapsed.push(r.Elapsed)
	b.at.push(r.At)
	b.labels.push(r.Label)
	for i, v := range r.Values {
		b.channels[i].push(v)
	}
	b.total++
	return nil
}

// Reset drops every sample, keeping the channel count and capacity.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alloc(len(b.channels))
	b.total = 0
}

// Len returns the number of samples currently held.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.elapsed.count
}

// Channels returns the channel count.
func (b *Buffer) Channels() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.channels)
}

// Total returns how many readings were appended since the last Reset,
// including ones that have since been evicted.
func (b *Buffer) Total() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.total
}

// Snapshot copies the buffer out in chronological order.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Snapshot{
		Elapsed: b.elapsed.all(),
		At:      b.at.all(),
		Labels:  b.labels.all(),
		Values:  make([][]float64, len(b.channels)),
		Total:   b.total,
	}
	for i, ch := range b.channels {
		s.Values[i] = ch.all()
	}
	return s
}

// Latest returns the most recent reading, if any.
func (b *Buffer) Latest() (sensor.Reading, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.elapsed.count == 0 {
		return sensor.Reading{}, false
	}
	r := sensor.Reading{
		Elapsed: b.elapsed.last(),
		At:      b.at.last(),
		Label:   b.labels.last(),
		Values:  make([]float64, len(b.channels)),
	}
	for i, ch := range b.channels {
		r.Values[i] = ch.last()
	}
	return r, true
}

// ring is a fixed-size circular buffer.
type ring[T any] struct {
	data  []T
	head  int
	count int
	size  int
}

func newRing[T any](size int) *ring[T] {
	return &ring[T]{
		data: make([]T, size),
		size: size,
	}
}

func (r *ring[T]) push(v T) {
	r.data[r.head] = v
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values, oldest first.
func (r *ring[T]) getLast(count int) []T {
	if count <= 0 || r.count == 0 {
		return []T{}
	}
	if count > r.count {
		count = r.count
	}

	result := make([]T, count)
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}

func (r *ring[T]) all() []T {
	return r.getLast(r.count)
}

func (r *ring[T]) last() T {
	return r.data[(r.head-1+r.size)%r.size]
}
