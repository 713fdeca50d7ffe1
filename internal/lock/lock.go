// Package lock keeps two sensormon processes from opening the same serial
// port. A lock is a directory created with mkdir, which is atomic, holding an
// info.json that names the owner.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rileyhilliard/sensormon/internal/errors"
)

const infoFileName = "info.json"

// Lock represents an acquired port lock.
type Lock struct {
	Dir  string    // The lock directory path
	Info *LockInfo // Info about the lock holder (us)
}

// pidAlive reports whether a local process exists. Swapped in tests.
var pidAlive = func(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}

// DefaultDir is where port locks live when no directory is configured.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "sensormon-locks")
}

// Path returns the lock directory for a port under baseDir.
func Path(baseDir, port string) string {
	if baseDir == "" {
		baseDir = DefaultDir()
	}
	return filepath.Join(baseDir, sanitize(port)+".lock")
}

func sanitize(port string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	return strings.Trim(r.Replace(port), "_")
}

// TryAcquire takes the lock for port without waiting. A lock left behind by
// a process that no longer exists on this host is reclaimed.
func TryAcquire(baseDir, port string) (*Lock, error) {
	dir := Path(baseDir, port)
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			"Cannot create lock directory",
			"Check permissions on "+filepath.Dir(dir))
	}

	info := NewLockInfo(port)

	for attempt := 0; attempt < 2; attempt++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			data, err := info.Marshal()
			if err == nil {
				err = os.WriteFile(filepath.Join(dir, infoFileName), data, 0o644)
			}
			if err != nil {
				os.RemoveAll(dir)
				return nil, errors.WrapWithCode(err, errors.ErrLock,
					"Failed to write lock info file",
					"Check disk space and permissions on "+dir)
			}
			return &Lock{Dir: dir, Info: info}, nil
		}
		if !os.IsExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrLock,
				"Failed to create lock for "+port,
				"Check permissions on "+filepath.Dir(dir))
		}

		holder, _ := readInfo(dir)
		if !isStale(holder, info.Hostname) {
			who := "another process"
			if holder != nil {
				who = holder.String()
			}
			return nil, errors.WrapWithCode(ErrLocked, errors.ErrLock,
				fmt.Sprintf("%s is in use by %s", port, who),
				"Stop the other sensormon session, or remove "+dir+" if it crashed")
		}
		if err := os.RemoveAll(dir); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrLock,
				"Failed to remove stale lock "+dir,
				"Remove it by hand")
		}
	}

	return nil, errors.WrapWithCode(ErrLocked, errors.ErrLock,
		port+" lock keeps reappearing",
		"Another process is racing for the port")
}

// Release removes the lock, allowing others to acquire it.
func (l *Lock) Release() error {
	if l == nil || l.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(l.Dir); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Failed to remove lock directory: %s", l.Dir),
			"Remove it by hand")
	}
	return nil
}

// Holder returns who holds the lock for port, or nil when it is free or stale.
func Holder(baseDir, port string) *LockInfo {
	info, err := readInfo(Path(baseDir, port))
	if err != nil || info == nil {
		return nil
	}
	host, _ := os.Hostname()
	if isStale(info, host) {
		return nil
	}
	return info
}

func readInfo(dir string) (*LockInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, infoFileName))
	if err != nil {
		return nil, err
	}
	return ParseLockInfo(data)
}

// isStale reports whether a lock can be reclaimed. Locks from other hosts
// (shared temp dirs) are never considered stale. An unreadable info file
// means the holder is mid-write, so it is left alone.
func isStale(holder *LockInfo, hostname string) bool {
	if holder == nil {
		return false
	}
	if holder.Hostname != hostname {
		return false
	}
	return !pidAlive(holder.PID)
}
