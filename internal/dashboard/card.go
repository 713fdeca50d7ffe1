package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sensormon/internal/sensor"
)

const (
	cardWidth     = 30
	cardMinWidth  = 22
	sparkMaxWidth = 24
)

var cardDividerStyle = lipgloss.NewStyle().
	Foreground(ColorBorder).
	Background(ColorSurfaceBg)

func renderCardDivider(width int) string {
	return cardDividerStyle.Render(strings.Repeat("─", width))
}

// renderCardLine pads content to width with the card background.
func renderCardLine(content string, width int) string {
	padding := ""
	if w := lipgloss.Width(content); width > w {
		padding = strings.Repeat(" ", width-w)
	}
	return lipgloss.NewStyle().Background(ColorSurfaceBg).Render(content + padding)
}

// check returns the current threshold check for channel i, if it is visible
// and has a reading.
func (m Model) check(i int) (sensor.Check, bool) {
	id := m.channels[i].ID
	for _, c := range m.checks {
		if c.Channel.ID == id {
			return c, true
		}
	}
	return sensor.Check{}, false
}

// renderCard draws one channel: latest value, thresholds, range and a
// sparkline of the buffered history.
func (m Model) renderCard(i, width int) string {
	ch := m.channels[i]
	style := CardStyle.Width(width)
	if i == m.selected {
		style = CardSelectedStyle.Width(width)
	}
	inner := width - 4
	if inner < 8 {
		inner = 8
	}

	marker := lipgloss.NewStyle().Foreground(SeriesColor(i)).Render("●")
	if !m.Visible(i) {
		marker = MutedStyle.Render("○")
	}
	title := fmt.Sprintf("%s %s %s", MutedStyle.Render(fmt.Sprintf("[%d]", i+1)), marker, ValueStyle.Render(ch.Label))

	lines := []string{renderCardLine(title, inner), renderCardDivider(inner)}

	series := m.snap.Series(i)
	if len(series) == 0 {
		lines = append(lines, renderCardLine(LabelStyle.Render(ch.Label+": -- "+ch.Unit), inner))
	} else {
		latest := series[len(series)-1]
		color := ColorTextPrimary
		if c, ok := m.check(i); ok {
			color = LevelColor(c.Level())
		}
		value := lipgloss.NewStyle().Foreground(color).Bold(true).Render(ch.Format(latest))
		lines = append(lines, renderCardLine(value, inner))
	}

	if m.editing && i == m.selected {
		lines = append(lines, renderCardLine(m.inputs[0].View(), inner))
		lines = append(lines, renderCardLine(m.inputs[1].View(), inner))
	} else {
		lines = append(lines, renderCardLine(LabelStyle.Render(thresholdText(ch)), inner))
	}

	if lo, hi, ok := m.snap.Range(i); ok {
		rng := fmt.Sprintf("lo %s  hi %s", formatPlain(ch, lo), formatPlain(ch, hi))
		lines = append(lines, renderCardLine(MutedStyle.Render(rng), inner))
	}
	if len(series) > 0 {
		w := inner
		if w > sparkMaxWidth {
			w = sparkMaxWidth
		}
		lines = append(lines, renderCardLine(RenderMiniSparkline(series, w, SeriesColor(i)), inner))
	}

	if c, ok := m.check(i); ok && c.Alert != sensor.AlertNone {
		alertStyle := StatusAlertStyle
		if c.Alert == sensor.AlertInvalid {
			alertStyle = NoticeWarnStyle
		}
		lines = append(lines, renderCardLine(alertStyle.Render(c.Alert.String()), inner))
	}

	return style.Render(strings.Join(lines, "\n"))
}

func thresholdText(ch sensor.Channel) string {
	lo, hi := ch.Min, ch.Max
	if strings.TrimSpace(lo) == "" {
		lo = "-"
	}
	if strings.TrimSpace(hi) == "" {
		hi = "-"
	}
	return fmt.Sprintf("min %s  max %s", lo, hi)
}

// formatPlain formats v with the channel precision but without the unit.
func formatPlain(ch sensor.Channel, v float64) string {
	ch.Unit = ""
	return strings.TrimSpace(ch.Format(v))
}
