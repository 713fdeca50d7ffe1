// Package source implements the places readings come from: a serial device
// that pushes lines, and a cloud feed that is polled.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/rileyhilliard/sensormon/internal/sensor"
)

// Mode tells the session controller which loop to run.
type Mode int

const (
	// Push sources deliver a line at a time and accept control tokens.
	Push Mode = iota
	// Poll sources are fetched on their own interval.
	Poll
)

func (m Mode) String() string {
	if m == Poll {
		return "poll"
	}
	return "push"
}

// ErrTimeout is returned by ReadLine when no complete line arrived within
// the read timeout. It is not a failure; callers retry.
var ErrTimeout = errors.New("read timeout")

// ErrClosed is returned when the source is used after Close.
var ErrClosed = errors.New("source closed")

// Source is the common lifecycle for every data source.
type Source interface {
	// Name identifies the source in notices and logs, e.g. the port path.
	Name() string
	Mode() Mode
	// Open connects. Opening an already-open source is a no-op.
	Open(ctx context.Context) error
	// IsOpen reports whether the link is currently held.
	IsOpen() bool
	Close() error
}

// LineSource is a push source.
type LineSource interface {
	Source
	// ReadLine blocks for at most the read timeout. It returns ErrTimeout
	// when nothing complete arrived; any other error means the link failed.
	ReadLine(ctx context.Context) (string, error)
	// Send writes a control token followed by a newline.
	Send(token string) error
}

// Batch is the result of one poll.
type Batch struct {
	Readings []sensor.Reading
	// Discarded counts entries dropped as malformed or already seen.
	Discarded int
}

// PollSource is a poll source.
type PollSource interface {
	Source
	Poll(ctx context.Context) (Batch, error)
	Interval() time.Duration
}
