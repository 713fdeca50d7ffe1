// Package session owns a monitoring session: the link to the source, the
// background reader and the history buffer it fills.
package session

import (
	"errors"
	"time"
)

// State is the connection state of a Controller.
type State int

const (
	Disconnected State = iota
	Connecting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "disconnected"
	}
}

var (
	// ErrBusy is returned by Start when a session is already connecting or running.
	ErrBusy = errors.New("session already active")
	// ErrNotRunning is returned by Stop when there is nothing to stop.
	ErrNotRunning = errors.New("session not running")
)

// NoticeLevel grades a Notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeWarn:
		return "warn"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a message from the reader to whoever is displaying the session.
type Notice struct {
	Level   NoticeLevel
	Message string
	Err     error
	At      time.Time
}
