package session

import (
	"context"
	"errors"
	"time"

	"github.com/rileyhilliard/sensormon/internal/sensor"
	"github.com/rileyhilliard/sensormon/internal/source"
	"github.com/rileyhilliard/sensormon/internal/wire"
)

func (c *Controller) run(ctx context.Context, done chan struct{}, started time.Time) {
	defer close(done)

	var err error
	switch src := c.src.(type) {
	case source.LineSource:
		err = c.readLines(ctx, src, started)
	case source.PollSource:
		err = c.poll(ctx, src, started)
	default:
		c.log.Error("source %s is neither push nor poll", c.src.Name())
		return
	}

	if err != nil && ctx.Err() == nil {
		c.linkLost(err)
	}
}

// readLines is the push loop. Timeouts are retried; any other read error
// ends the session.
func (c *Controller) readLines(ctx context.Context, src source.LineSource, started time.Time) error {
	for ctx.Err() == nil {
		line, err := src.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, source.ErrTimeout) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		values, err := c.parser.Parse(line)
		if err != nil {
			if !wire.Discarded(err) {
				return err
			}
			c.reject(line, err)
			continue
		}
		now := c.now()
		c.accept(sensor.Reading{
			At:      now,
			Elapsed: now.Sub(started).Seconds(),
			Values:  values,
		})
	}
	return nil
}

// poll is the poll loop. It fetches immediately and then every Interval.
func (c *Controller) poll(ctx context.Context, src source.PollSource, started time.Time) error {
	interval := src.Interval()
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// The first poll back-fills entries older than started; the session
	// clock starts at the earliest of them so elapsed time is never negative.
	origin := started
	first := true

	for {
		batch, err := src.Poll(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			var transient *source.TransientError
			if !errors.As(err, &transient) {
				return err
			}
			c.log.Warn("%v", err)
			c.notify(NoticeWarn, "Poll failed, retrying: "+transient.Err.Error(), err)
		default:
			if batch.Discarded > 0 {
				c.discarded.Add(uint64(batch.Discarded))
			}
			if first && len(batch.Readings) > 0 {
				first = false
				for _, r := range batch.Readings {
					if r.At.Before(origin) {
						origin = r.At
					}
				}
			}
			for _, r := range batch.Readings {
				r.Elapsed = max(0, r.At.Sub(origin).Seconds())
				c.accept(r)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (c *Controller) reject(line string, err error) {
	if errors.Is(err, wire.ErrIgnored) {
		c.log.Debug("ignored line %q", line)
		return
	}
	c.discarded.Add(1)
	c.log.Debug("discarded line %q: %v", line, err)
}

func (c *Controller) accept(r sensor.Reading) {
	if err := c.hist.Append(r); err != nil {
		c.discarded.Add(1)
		c.log.Debug("rejected reading: %v", err)
		return
	}
	if c.archive != nil {
		c.archive.Record(r)
	}
}
