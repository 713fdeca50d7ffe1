// Package testing provides test doubles for the source package.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/sensormon/internal/source"
)

// Fake is a scripted source.LineSource. Lines are returned in
// order; once exhausted, ReadLine reports ErrTimeout (or FailWith, if set).
type Fake struct {
	mu       sync.Mutex
	name     string
	lines    []string
	open     bool
	sent     []string
	opens    int
	delay    time.Duration
	OpenErr  error
	SendErr  error
	FailWith error
	// OnClose, if set, runs at the start of every Close.
	OnClose func()
}

// NewFake creates a fake that will yield lines.
func NewFake(name string, lines ...string) *Fake {
	return &Fake{name: name, lines: lines}
}

// SetDelay makes every ReadLine wait d before returning.
func (f *Fake) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// Push appends more lines.
func (f *Fake) Push(lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, lines...)
}

func (f *Fake) Name() string      { return f.name }
func (f *Fake) Mode() source.Mode { return source.Push }

func (f *Fake) Open(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.OpenErr != nil {
		return f.OpenErr
	}
	if !f.open {
		f.opens++
	}
	f.open = true
	return nil
}

func (f *Fake) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *Fake) Close() error {
	if f.OnClose != nil {
		f.OnClose()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	return nil
}

func (f *Fake) ReadLine(ctx context.Context) (string, error) {
	f.mu.Lock()
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return "", source.ErrClosed
	}
	if len(f.lines) > 0 {
		line := f.lines[0]
		f.lines = f.lines[1:]
		return line, nil
	}
	if f.FailWith != nil {
		return "", f.FailWith
	}
	return "", source.ErrTimeout
}

func (f *Fake) Send(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	f.sent = append(f.sent, token)
	return nil
}

// Sent returns the control tokens written so far.
func (f *Fake) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// Opens counts how many times the fake went from closed to open.
func (f *Fake) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

// Remaining returns how many scripted lines are left.
func (f *Fake) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lines)
}

var _ source.LineSource = (*Fake)(nil)
