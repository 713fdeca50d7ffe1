package dashboard

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)

const brailleBase = '\u2800'

var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps [row][col] to the bit offset of that dot.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// Series is one line on a chart.
type Series struct {
	Values []float64
	Color  lipgloss.Color
}

// Bounds returns the min and max over every series. ok is false when there
// are no values at all.
func Bounds(series []Series) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	return lo, hi, ok
}

// RenderBrailleChart plots every series into a width x height grid of
// braille cells, two samples per cell horizontally and four dots vertically.
// Samples are right-aligned so the newest reading sits at the right edge.
// Where series overlap, the later series' color wins the cell.
func RenderBrailleChart(series []Series, width, height int, lo, hi float64) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	grid := make([][]rune, height)
	colors := make([][]int, height)
	for r := range grid {
		grid[r] = make([]rune, width)
		colors[r] = make([]int, width)
		for c := range grid[r] {
			grid[r][c] = brailleBase
			colors[r][c] = -1
		}
	}

	totalDots := height * 4
	targetPoints := width * 2
	for si, s := range series {
		data := s.Values
		if len(data) > targetPoints {
			data = resampleData(data, targetPoints)
		}
		offset := targetPoints - len(data)
		for i, v := range data {
			col := (i + offset) / 2
			sub := (i + offset) % 2
			level := clampInt(int(normalizeValue(v, lo, hi)*float64(totalDots-1)+0.5), totalDots-1)
			row := height - 1 - level/4
			dot := 3 - level%4
			grid[row][col] |= rune(1 << brailleDots[dot][sub])
			colors[row][col] = si
		}
	}

	var lines []string
	for r := range grid {
		var b strings.Builder
		for c, ch := range grid[r] {
			style := lipgloss.NewStyle().Background(ColorSurfaceBg)
			if idx := colors[r][c]; idx >= 0 {
				style = style.Foreground(series[idx].Color)
			}
			b.WriteString(style.Render(string(ch)))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// RenderMiniSparkline renders a single-row sparkline using block characters.
func RenderMiniSparkline(data []float64, width int, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(data) > width {
		data = resampleData(data, width)
	}

	var b strings.Builder
	for _, v := range data {
		idx := clampInt(int(normalizeValue(v, lo, hi)*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		b.WriteRune(sparklineBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(b.String())
}

// normalizeValue converts a value to 0-1 given bounds. A flat range sits in
// the middle.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		n := (val - minVal) / (maxVal - minVal)
		return math.Max(0, math.Min(1, n))
	}
	return 0.5
}

func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// resampleData shrinks data to targetSize buckets, keeping the max of each
// bucket so spikes survive.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) <= targetSize || targetSize <= 0 {
		return data
	}
	result := make([]float64, targetSize)
	bucket := float64(len(data)) / float64(targetSize)
	for i := range result {
		start := int(float64(i) * bucket)
		end := int(float64(i+1) * bucket)
		if end > len(data) {
			end = len(data)
		}
		if start >= end {
			start = end - 1
		}
		pick := data[start]
		for _, v := range data[start+1 : end] {
			if v > pick {
				pick = v
			}
		}
		result[i] = pick
	}
	return result
}
