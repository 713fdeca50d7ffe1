// Package archive keeps an append-only SQLite log of every reading a
// session accepts. The log is never read back into a session.
package archive

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	smerrors "github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/sensor"
)

// Options configure a Recorder.
type Options struct {
	Path          string
	BatchSize     int
	FlushInterval time.Duration
	// Channels names the value columns, in reading order.
	Channels []string
}

// Recorder buffers readings and writes them in batches.
type Recorder struct {
	db       *sql.DB
	log      logger.Logger
	opts     Options
	channels []string

	mu      sync.Mutex
	session int64
	buffer  []sensor.Reading
	closed  bool

	ticker   *time.Ticker
	shutdown chan struct{}
	done     chan struct{}
}

// Open opens (creating if needed) the archive database and starts the
// background flusher.
func Open(opts Options, log logger.Logger) (*Recorder, error) {
	if log == nil {
		log = logger.Noop()
	}
	if opts.Path == "" {
		return nil, smerrors.New(smerrors.ErrArchive, "Archive path is empty", "Set archive.path")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, smerrors.WrapWithCode(err, smerrors.ErrArchive,
			"Cannot create archive directory", "Check archive.path")
	}

	db, err := sql.Open("sqlite3", opts.Path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, smerrors.WrapWithCode(err, smerrors.ErrArchive,
			"Cannot open archive "+opts.Path, "Check archive.path")
	}
	if err := initSchema(db, log); err != nil {
		db.Close()
		return nil, smerrors.WrapWithCode(err, smerrors.ErrArchive,
			"Cannot initialise archive schema in "+opts.Path,
			"Move the file aside if it was created by something else")
	}

	r := &Recorder{
		db:       db,
		log:      log,
		opts:     opts,
		channels: opts.Channels,
		buffer:   make([]sensor.Reading, 0, opts.BatchSize),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	if opts.FlushInterval > 0 {
		r.ticker = time.NewTicker(opts.FlushInterval)
		go r.flusher()
	} else {
		close(r.done)
	}

	log.Info("archive %s open (batch %d, flush every %s)", opts.Path, opts.BatchSize, opts.FlushInterval)
	return r, nil
}

// Begin flushes what belongs to the previous session and starts a new one.
func (r *Recorder) Begin(source, preset string, started time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return smerrors.New(smerrors.ErrArchive, "Archive is closed", "")
	}
	if err := r.flush(); err != nil {
		r.log.Warn("flush before new session: %v", err)
	}

	res, err := r.db.Exec(insertSessionSQL, started.UnixMilli(), source, preset)
	if err != nil {
		return smerrors.WrapWithCode(err, smerrors.ErrArchive, "Cannot record session start", "")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return smerrors.WrapWithCode(err, smerrors.ErrArchive, "Cannot record session start", "")
	}
	r.session = id
	r.log.Debug("archive session %d for %s", id, source)
	return nil
}

// Record buffers a reading. It is dropped when no session has begun.
func (r *Recorder) Record(reading sensor.Reading) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.session == 0 {
		return
	}
	r.buffer = append(r.buffer, reading)
	if len(r.buffer) >= r.opts.BatchSize {
		if err := r.flush(); err != nil {
			r.log.Warn("archive flush: %v", err)
		}
	}
}

// Flush writes buffered readings now.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush()
}

// Close flushes, stops the flusher and checkpoints the WAL.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	close(r.shutdown)
	if r.ticker != nil {
		r.ticker.Stop()
	}
	<-r.done

	r.mu.Lock()
	err := r.flush()
	r.mu.Unlock()
	if err != nil {
		r.log.Warn("final archive flush: %v", err)
	}

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		r.log.Warn("wal checkpoint: %v", err)
	}
	if err := r.db.Close(); err != nil {
		return smerrors.WrapWithCode(err, smerrors.ErrArchive, "Failed to close archive", "")
	}
	r.log.Info("archive closed")
	return nil
}

func (r *Recorder) flusher() {
	defer close(r.done)
	for {
		select {
		case <-r.ticker.C:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				r.log.Warn("archive flush: %v", err)
			}
			r.mu.Unlock()
		case <-r.shutdown:
			return
		}
	}
}

// flush writes the buffer in one transaction. Must be called with r.mu held.
// A failed batch is dropped so a broken archive can't grow memory forever.
func (r *Recorder) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}
	batch := r.buffer
	r.buffer = r.buffer[:0:0]

	tx, err := r.db.Begin()
	if err != nil {
		return smerrors.WrapWithCode(err, smerrors.ErrArchive, "Cannot begin archive transaction", "")
	}
	stmt, err := tx.Prepare(insertReadingSQL)
	if err != nil {
		tx.Rollback()
		return smerrors.WrapWithCode(err, smerrors.ErrArchive, "Cannot prepare archive insert", "")
	}
	defer stmt.Close()

	for _, reading := range batch {
		for i, v := range reading.Values {
			if _, err := stmt.Exec(r.session, reading.At.UnixMilli(), reading.Elapsed, r.channelName(i), v); err != nil {
				tx.Rollback()
				return smerrors.WrapWithCode(err, smerrors.ErrArchive,
					"Failed to archive reading", "")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return smerrors.WrapWithCode(err, smerrors.ErrArchive, "Failed to commit archive batch", "")
	}
	r.log.Debug("archived %d readings", len(batch))
	return nil
}

func (r *Recorder) channelName(i int) string {
	if i < len(r.channels) {
		return r.channels[i]
	}
	return "ch" + strconv.Itoa(i+1)
}

// SessionInfo is a row of the sessions table.
type SessionInfo struct {
	ID        int64
	StartedAt time.Time
	Source    string
	Preset    string
	// Values counts stored channel values, not readings.
	Values int
}

// Sessions lists archived sessions, newest first.
func (r *Recorder) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
	    SELECT s.id, s.started_at, s.source, s.preset,
	           (SELECT COUNT(*) FROM readings WHERE session_id = s.id)
	    FROM sessions s ORDER BY s.id DESC`)
	if err != nil {
		return nil, smerrors.WrapWithCode(err, smerrors.ErrArchive, "Cannot list sessions", "")
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var s SessionInfo
		var ms int64
		if err := rows.Scan(&s.ID, &ms, &s.Source, &s.Preset, &s.Values); err != nil {
			return nil, smerrors.WrapWithCode(err, smerrors.ErrArchive, "Cannot read session row", "")
		}
		s.StartedAt = time.UnixMilli(ms)
		out = append(out, s)
	}
	return out, rows.Err()
}
