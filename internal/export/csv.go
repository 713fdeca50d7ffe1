// Package export writes session history to CSV files and chart images.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	smerrors "github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/history"
	"github.com/rileyhilliard/sensormon/internal/sensor"
)

// ErrNoData is returned when there are no samples to export. No file is
// written.
var ErrNoData = errors.New("no data to export")

const timeHeader = "Time (s)"

// Data is a table read back from a CSV export.
type Data struct {
	Channels []sensor.Channel
	Snapshot history.Snapshot
}

// WriteCSV writes a header row and one row per sample. Elapsed time is
// rounded to 2 decimals and values to 3.
func WriteCSV(w io.Writer, channels []sensor.Channel, snap history.Snapshot) error {
	if snap.Empty() {
		return ErrNoData
	}
	if len(snap.Values) != len(channels) {
		return fmt.Errorf("snapshot has %d channels, want %d", len(snap.Values), len(channels))
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(channels)+1)
	header = append(header, timeHeader)
	for _, ch := range channels {
		header = append(header, ch.Title())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(channels)+1)
	for i := 0; i < snap.Len(); i++ {
		row[0] = formatRounded(snap.Elapsed[i], 2)
		for c := range channels {
			row[c+1] = formatRounded(snap.Values[c][i], 3)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the snapshot to path. The file is only created when there
// is something to write.
func SaveCSV(path string, channels []sensor.Channel, snap history.Snapshot) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, channels, snap); err != nil {
		if errors.Is(err, ErrNoData) {
			return err
		}
		return smerrors.WrapWithCode(err, smerrors.ErrExport, "Failed to encode CSV", "")
	}
	return writeFile(path, buf.Bytes())
}

// ReadCSV parses a file written by WriteCSV. Channel labels and units are
// recovered from the header.
func ReadCSV(r io.Reader) (Data, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return Data{}, smerrors.WrapWithCode(err, smerrors.ErrExport,
			"Failed to read CSV", "Is this a file exported by sensormon?")
	}
	if len(records) == 0 {
		return Data{}, ErrNoData
	}

	header := records[0]
	if len(header) < 2 || strings.TrimPrefix(header[0], "\ufeff") != timeHeader {
		return Data{}, smerrors.New(smerrors.ErrExport,
			"Unexpected CSV header",
			fmt.Sprintf("The first column must be '%s' followed by one column per channel", timeHeader))
	}

	data := Data{Channels: make([]sensor.Channel, len(header)-1)}
	for i, title := range header[1:] {
		data.Channels[i] = parseTitle(title)
	}

	rows := records[1:]
	if len(rows) == 0 {
		return Data{}, ErrNoData
	}

	snap := history.Snapshot{
		Elapsed: make([]float64, len(rows)),
		At:      make([]time.Time, len(rows)),
		Labels:  make([]string, len(rows)),
		Values:  make([][]float64, len(data.Channels)),
	}
	for c := range snap.Values {
		snap.Values[c] = make([]float64, len(rows))
	}
	for i, row := range rows {
		for j, field := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return Data{}, smerrors.WrapWithCode(err, smerrors.ErrExport,
					fmt.Sprintf("Bad number on line %d", i+2), "")
			}
			if j == 0 {
				snap.Elapsed[i] = v
			} else {
				snap.Values[j-1][i] = v
			}
		}
	}
	snap.Total = uint64(len(rows))
	data.Snapshot = snap
	return data, nil
}

// LoadCSV opens and parses a CSV export.
func LoadCSV(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, smerrors.WrapWithCode(err, smerrors.ErrExport,
			"Cannot open "+path, "Check the path")
	}
	defer f.Close()
	return ReadCSV(f)
}

// parseTitle splits "Label (unit)" back into its parts.
func parseTitle(title string) sensor.Channel {
	title = strings.TrimSpace(title)
	if strings.HasSuffix(title, ")") {
		if open := strings.LastIndex(title, " ("); open > 0 {
			label := title[:open]
			unit := title[open+2 : len(title)-1]
			return sensor.Channel{ID: label, Label: label, Unit: unit}
		}
	}
	return sensor.Channel{ID: title, Label: title}
}

func formatRounded(v float64, places int) string {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		r = 0 // no "-0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Filename builds a timestamped export path, e.g.
// dir/sensormon-20240501-100000.csv.
func Filename(dir, ext string, at time.Time) string {
	ext = strings.TrimPrefix(ext, ".")
	return filepath.Join(dir, "sensormon-"+at.Format("20060102-150405")+"."+ext)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return smerrors.WrapWithCode(err, smerrors.ErrExport,
				"Cannot create "+dir, "Check export.dir and its permissions")
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return smerrors.WrapWithCode(err, smerrors.ErrExport,
			"Cannot write "+path, "Check the path and disk space")
	}
	return nil
}
