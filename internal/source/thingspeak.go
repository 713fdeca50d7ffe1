package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/sensormon/internal/config"
	"github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/logger"
	"github.com/rileyhilliard/sensormon/internal/sensor"
	"github.com/rileyhilliard/sensormon/internal/wire"
)

// ThingSpeak polls a ThingSpeak channel feed.
type ThingSpeak struct {
	cfg      config.HTTPConfig
	channels int
	client   *http.Client
	log      logger.Logger

	mu        sync.Mutex
	open      bool
	lastEntry int64
	failures  int
	described bool
}

// NewThingSpeak creates a poller for fields 1..channels of the configured feed.
// A nil client gets one with the configured timeout.
func NewThingSpeak(cfg config.HTTPConfig, channels int, client *http.Client, log logger.Logger) *ThingSpeak {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = logger.Noop()
	}
	return &ThingSpeak{
		cfg:      cfg,
		channels: channels,
		client:   client,
		log:      log,
	}
}

func (t *ThingSpeak) Name() string            { return "thingspeak:" + t.cfg.ChannelID }
func (t *ThingSpeak) Mode() Mode              { return Poll }
func (t *ThingSpeak) Interval() time.Duration { return t.cfg.PollInterval }

func (t *ThingSpeak) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// Open checks the URL is usable and resets de-duplication. There is no
// persistent connection to hold.
func (t *ThingSpeak) Open(ctx context.Context) error {
	if _, err := t.feedURL(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConnect,
			"Invalid feed URL for channel "+t.cfg.ChannelID,
			"Check source.http.base_url and channel_id")
	}
	t.mu.Lock()
	t.open = true
	t.lastEntry = 0
	t.failures = 0
	t.described = false
	t.mu.Unlock()
	return nil
}

func (t *ThingSpeak) Close() error {
	t.mu.Lock()
	t.open = false
	t.mu.Unlock()
	t.client.CloseIdleConnections()
	return nil
}

// FeedURL returns the request URL with the API key redacted, for display.
func (t *ThingSpeak) FeedURL() string {
	u, err := t.feedURL()
	if err != nil {
		return ""
	}
	q := u.Query()
	if q.Get("api_key") != "" {
		q.Set("api_key", "REDACTED")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (t *ThingSpeak) feedURL() (*url.URL, error) {
	base, err := url.Parse(strings.TrimRight(t.cfg.BaseURL, "/"))
	if err != nil {
		return nil, err
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q needs a scheme and host", t.cfg.BaseURL)
	}
	u := base.JoinPath("channels", t.cfg.ChannelID, "feeds.json")
	q := url.Values{}
	if t.cfg.APIKey != "" {
		q.Set("api_key", t.cfg.APIKey)
	}
	q.Set("results", strconv.Itoa(t.cfg.Results))
	u.RawQuery = q.Encode()
	return u, nil
}

// Poll fetches the feed and returns entries newer than the last one seen.
// A single failed poll returns a transient error; MaxFailures in a row
// returns a LINK error, which ends the session.
func (t *ThingSpeak) Poll(ctx context.Context) (Batch, error) {
	if !t.IsOpen() {
		return Batch{}, ErrClosed
	}

	feed, err := t.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Batch{}, ctx.Err()
		}
		t.mu.Lock()
		t.failures++
		failures := t.failures
		t.mu.Unlock()

		if t.cfg.MaxFailures > 0 && failures >= t.cfg.MaxFailures {
			return Batch{}, errors.WrapWithCode(err, errors.ErrLink,
				fmt.Sprintf("Feed %s failed %d times in a row", t.cfg.ChannelID, failures),
				"Check your network connection and API key")
		}
		return Batch{}, &TransientError{Err: err, Failures: failures}
	}

	t.mu.Lock()
	t.failures = 0
	last := t.lastEntry
	describe := !t.described
	t.described = true
	t.mu.Unlock()

	if describe {
		t.log.Info("feed %s %q: %s", t.cfg.ChannelID, feed.Channel.Name, describeFields(feed.Channel, t.channels))
	}

	var batch Batch
	for _, entry := range feed.Feeds {
		if entry.EntryID != 0 && entry.EntryID <= last {
			batch.Discarded++
			continue
		}
		values, err := entry.Values(t.channels)
		if err != nil {
			t.log.Debug("skipping feed entry: %v", err)
			batch.Discarded++
			if entry.EntryID > last {
				last = entry.EntryID
			}
			continue
		}
		at, err := entry.Time()
		if err != nil {
			at = time.Now()
		}
		batch.Readings = append(batch.Readings, sensor.Reading{
			At:     at,
			Label:  entry.TimeOfDay(),
			Values: values,
		})
		if entry.EntryID > last {
			last = entry.EntryID
		}
	}

	t.mu.Lock()
	t.lastEntry = last
	t.mu.Unlock()

	t.log.Debug("polled %s: %d new, %d discarded", t.cfg.ChannelID, len(batch.Readings), batch.Discarded)
	return batch, nil
}

// describeFields lists the feed's own names for the fields that are read.
func describeFields(ch wire.FeedChannel, n int) string {
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		name := ch.FieldName(i)
		if name == "" {
			name = "(unnamed)"
		}
		parts = append(parts, fmt.Sprintf("field%d=%s", i, name))
	}
	return strings.Join(parts, " ")
}

func (t *ThingSpeak) fetch(ctx context.Context) (wire.Feed, error) {
	u, err := t.feedURL()
	if err != nil {
		return wire.Feed{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return wire.Feed{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return wire.Feed{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return wire.Feed{}, fmt.Errorf("feed returned %s", resp.Status)
	}
	return wire.DecodeFeed(resp.Body)
}

// TransientError is a failed poll that hasn't yet hit the failure limit.
type TransientError struct {
	Err      error
	Failures int
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("poll failed (%d in a row): %v", e.Failures, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
