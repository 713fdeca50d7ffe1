package dashboard

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runesOf keeps only braille and block runes so ANSI styling is ignored.
func runesOf(s string) []rune {
	var out []rune
	for _, r := range s {
		if (r >= brailleBase && r <= brailleBase+0xFF) || (r >= '▁' && r <= '█') {
			out = append(out, r)
		}
	}
	return out
}

func TestBounds(t *testing.T) {
	lo, hi, ok := Bounds([]Series{{Values: []float64{3, 1}}, {Values: []float64{7}}})
	require.True(t, ok)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 7.0, hi)

	_, _, ok = Bounds([]Series{{}})
	assert.False(t, ok)
}

func TestRenderBrailleChartDimensions(t *testing.T) {
	out := RenderBrailleChart([]Series{{Values: []float64{1, 2, 3}, Color: SeriesColor(0)}}, 10, 3, 1, 3)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Equal(t, 10, lipgloss.Width(l))
		assert.Len(t, runesOf(l), 10)
	}
}

func TestRenderBrailleChartRightAligned(t *testing.T) {
	out := RenderBrailleChart([]Series{{Values: []float64{5, 5}}}, 4, 1, 0, 10)
	cells := runesOf(out)
	require.Len(t, cells, 4)
	for _, c := range cells[:3] {
		assert.Equal(t, brailleBase, c, "older cells stay empty")
	}
	assert.NotEqual(t, brailleBase, cells[3])
}

func TestRenderBrailleChartExtremes(t *testing.T) {
	out := RenderBrailleChart([]Series{{Values: []float64{0, 10}}}, 1, 2, 0, 10)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)

	top := runesOf(lines[0])[0]
	bottom := runesOf(lines[1])[0]
	// Max lands on the top-right dot, min on the bottom-left dot.
	assert.Equal(t, brailleBase|rune(1<<3), top)
	assert.Equal(t, brailleBase|rune(1<<6), bottom)
}

func TestRenderBrailleChartEmpty(t *testing.T) {
	assert.Empty(t, RenderBrailleChart(nil, 0, 4, 0, 1))
	assert.Empty(t, RenderBrailleChart(nil, 4, 0, 0, 1))
}

func TestRenderMiniSparkline(t *testing.T) {
	out := runesOf(RenderMiniSparkline([]float64{0, 5, 10}, 10, SeriesColor(0)))
	assert.Equal(t, []rune{'▁', '▄', '█'}, out)

	assert.Empty(t, RenderMiniSparkline(nil, 10, SeriesColor(0)))

	long := make([]float64, 100)
	for i := range long {
		long[i] = float64(i)
	}
	assert.Len(t, runesOf(RenderMiniSparkline(long, 20, SeriesColor(1))), 20)
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, 0.5, normalizeValue(5, 0, 10))
	assert.Equal(t, 0.0, normalizeValue(-5, 0, 10))
	assert.Equal(t, 1.0, normalizeValue(50, 0, 10))
	assert.Equal(t, 0.5, normalizeValue(3, 3, 3), "flat range sits mid-height")
}

func TestResampleDataKeepsSpikes(t *testing.T) {
	data := []float64{1, 1, 9, 1, 1, 1, 1, 1}
	got := resampleData(data, 4)
	assert.Equal(t, []float64{1, 9, 1, 1}, got)
	assert.Equal(t, data, resampleData(data, 10))
}

func TestSeriesColorWraps(t *testing.T) {
	assert.Equal(t, SeriesColor(0), SeriesColor(len(SeriesColors)))
}
