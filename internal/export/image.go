package export

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/sensormon/internal/config"
	smerrors "github.com/rileyhilliard/sensormon/internal/errors"
	"github.com/rileyhilliard/sensormon/internal/history"
	"github.com/rileyhilliard/sensormon/internal/sensor"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// ImageOptions controls chart rendering.
type ImageOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	DPI    int
	// Visible selects channels by index. Nil shows every channel.
	Visible []bool
	// Thresholds draws dashed guide lines at each channel's min and max.
	Thresholds bool
}

// ImageOptionsFrom reads sizes from the export config.
func ImageOptionsFrom(cfg config.ExportConfig) (ImageOptions, error) {
	w, err := vg.ParseLength(cfg.Width)
	if err != nil {
		return ImageOptions{}, smerrors.WrapWithCode(err, smerrors.ErrConfig,
			"Invalid export.width "+cfg.Width, "Use a length like 10in or 800pt")
	}
	h, err := vg.ParseLength(cfg.Height)
	if err != nil {
		return ImageOptions{}, smerrors.WrapWithCode(err, smerrors.ErrConfig,
			"Invalid export.height "+cfg.Height, "Use a length like 5in or 400pt")
	}
	return ImageOptions{
		Title:      "sensormon",
		Width:      w,
		Height:     h,
		DPI:        cfg.DPI,
		Thresholds: cfg.Thresholds,
	}, nil
}

// Format is an image output format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	PDF  Format = "pdf"
	SVG  Format = "svg"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "pdf":
		return PDF, nil
	case "svg":
		return SVG, nil
	}
	return "", smerrors.New(smerrors.ErrExport,
		fmt.Sprintf("Unsupported image type '%s'", filepath.Ext(path)),
		"Use .png, .jpg, .pdf or .svg")
}

// SaveImage renders the snapshot and writes it to path, choosing the format
// from the extension. Nothing is written when there is no data.
func SaveImage(path string, channels []sensor.Channel, snap history.Snapshot, opts ImageOptions) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := RenderImage(&buf, format, channels, snap, opts); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

// RenderImage draws one line per visible channel against elapsed time.
func RenderImage(w io.Writer, format Format, channels []sensor.Channel, snap history.Snapshot, opts ImageOptions) error {
	if snap.Empty() {
		return ErrNoData
	}
	p, err := buildPlot(channels, snap, opts)
	if err != nil {
		return err
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 10 * vg.Inch
	}
	if height <= 0 {
		height = 5 * vg.Inch
	}

	var canvas interface {
		vg.CanvasSizer
		io.WriterTo
	}
	switch format {
	case PNG, JPEG:
		dpi := opts.DPI
		if dpi <= 0 {
			dpi = vgimg.DefaultDPI
		}
		img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi))
		p.Draw(draw.New(img))
		if format == PNG {
			_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(w)
		} else {
			_, err = vgimg.JpegCanvas{Canvas: img}.WriteTo(w)
		}
		return wrapRender(err)
	case PDF:
		canvas = vgpdf.New(width, height)
	case SVG:
		canvas = vgsvg.New(width, height)
	default:
		return smerrors.New(smerrors.ErrExport, fmt.Sprintf("Unsupported image type '%s'", format), "")
	}
	p.Draw(draw.New(canvas))
	_, err = canvas.WriteTo(w)
	return wrapRender(err)
}

func wrapRender(err error) error {
	if err == nil {
		return nil
	}
	return smerrors.WrapWithCode(err, smerrors.ErrExport, "Failed to render chart", "")
}

func buildPlot(channels []sensor.Channel, snap history.Snapshot, opts ImageOptions) (*plot.Plot, error) {
	var shown []int
	for i := range channels {
		if i < len(snap.Values) && (opts.Visible == nil || (i < len(opts.Visible) && opts.Visible[i])) {
			shown = append(shown, i)
		}
	}
	if len(shown) == 0 {
		return nil, smerrors.New(smerrors.ErrExport,
			"No visible channels to draw", "Toggle at least one channel on")
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = timeHeader
	if len(shown) == 1 {
		p.Y.Label.Text = channels[shown[0]].Title()
	} else {
		p.Y.Label.Text = "Value"
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	xmin, xmax := snap.Elapsed[0], snap.Elapsed[len(snap.Elapsed)-1]
	for n, i := range shown {
		xys := make(plotter.XYs, snap.Len())
		for j := range xys {
			xys[j].X = snap.Elapsed[j]
			xys[j].Y = snap.Values[i][j]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, smerrors.WrapWithCode(err, smerrors.ErrExport,
				"Cannot plot "+channels[i].Label, "")
		}
		line.Color = plotutil.Color(n)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(channels[i].Title(), line)

		if opts.Thresholds {
			addGuides(p, channels[i], xmin, xmax)
		}
	}

	if lo, hi, ok := fixedAxis(channels, shown); ok {
		p.Y.Min = lo
		p.Y.Max = hi
	}
	return p, nil
}

// addGuides draws dashed lines at the channel's finite thresholds. Invalid
// threshold text draws nothing.
func addGuides(p *plot.Plot, ch sensor.Channel, xmin, xmax float64) {
	th, err := sensor.ParseThreshold(ch.Min, ch.Max)
	if err != nil {
		return
	}
	for _, y := range []float64{th.Min, th.Max} {
		if math.IsInf(y, 0) {
			continue
		}
		guide, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: y}, {X: xmax, Y: y}})
		if err != nil {
			continue
		}
		guide.Color = colornames.Crimson
		guide.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(guide)
	}
}

// fixedAxis returns the Y range when every shown channel pins one.
func fixedAxis(channels []sensor.Channel, shown []int) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, i := range shown {
		ch := channels[i]
		if ch.AxisMin == nil || ch.AxisMax == nil {
			return 0, 0, false
		}
		lo = math.Min(lo, *ch.AxisMin)
		hi = math.Max(hi, *ch.AxisMax)
	}
	return lo, hi, true
}
