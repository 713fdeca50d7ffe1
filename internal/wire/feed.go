package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Feed is the channel-feed document returned by the ThingSpeak REST API.
type Feed struct {
	Channel FeedChannel `json:"channel"`
	Feeds   []FeedEntry `json:"feeds"`
}

// FeedChannel carries the channel metadata, including field names.
type FeedChannel struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Field1 string `json:"field1"`
	Field2 string `json:"field2"`
	Field3 string `json:"field3"`
	Field4 string `json:"field4"`
}

// FieldValue is a feed field. ThingSpeak sends numbers as strings and
// missing values as null.
type FieldValue struct {
	Raw   string
	Valid bool
}

func (f *FieldValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FieldValue{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FieldValue{Raw: s, Valid: strings.TrimSpace(s) != ""}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FieldValue{Raw: n.String(), Valid: true}
	return nil
}

// FeedEntry is one row in the feed.
type FeedEntry struct {
	CreatedAt string     `json:"created_at"`
	EntryID   int64      `json:"entry_id"`
	Field1    FieldValue `json:"field1"`
	Field2    FieldValue `json:"field2"`
	Field3    FieldValue `json:"field3"`
	Field4    FieldValue `json:"field4"`
	Field5    FieldValue `json:"field5"`
	Field6    FieldValue `json:"field6"`
	Field7    FieldValue `json:"field7"`
	Field8    FieldValue `json:"field8"`
}

func (e FeedEntry) field(i int) FieldValue {
	switch i {
	case 1:
		return e.Field1
	case 2:
		return e.Field2
	case 3:
		return e.Field3
	case 4:
		return e.Field4
	case 5:
		return e.Field5
	case 6:
		return e.Field6
	case 7:
		return e.Field7
	case 8:
		return e.Field8
	}
	return FieldValue{}
}

// Values returns fields 1..n as floats. An empty or non-numeric field makes
// the whole entry malformed.
func (e FeedEntry) Values(n int) ([]float64, error) {
	values := make([]float64, n)
	for i := 1; i <= n; i++ {
		f := e.field(i)
		if !f.Valid {
			return nil, fmt.Errorf("%w: entry %d field%d empty", ErrMalformed, e.EntryID, i)
		}
		v, err := parseNumber(f.Raw)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d field%d %q", ErrMalformed, e.EntryID, i, f.Raw)
		}
		values[i-1] = v
	}
	return values, nil
}

// Time parses CreatedAt as RFC 3339.
func (e FeedEntry) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, e.CreatedAt)
}

// TimeOfDay is the display label for the entry, "15:04:05" in the feed's
// own offset. Unparseable timestamps fall back to their last eight
// characters.
func (e FeedEntry) TimeOfDay() string {
	if t, err := e.Time(); err == nil {
		return t.Format("15:04:05")
	}
	s := strings.TrimSpace(e.CreatedAt)
	if len(s) > 8 {
		return s[len(s)-8:]
	}
	return s
}

// DecodeFeed reads a feed document.
func DecodeFeed(r io.Reader) (Feed, error) {
	var f Feed
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return Feed{}, fmt.Errorf("decode feed: %w", err)
	}
	return f, nil
}

// FieldName returns the channel's configured name for field i, if any.
func (c FeedChannel) FieldName(i int) string {
	switch i {
	case 1:
		return c.Field1
	case 2:
		return c.Field2
	case 3:
		return c.Field3
	case 4:
		return c.Field4
	}
	return ""
}
