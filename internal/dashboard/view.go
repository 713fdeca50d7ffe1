package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/sensormon/internal/session"
)

const (
	defaultWidth  = 100
	chartMinRows  = 4
	axisWidth     = 9
	reservedLines = 16
)

func (m Model) renderDashboard() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	sections := []string{
		m.renderHeader(),
		"",
		m.renderChart(width),
		m.renderLegend(),
		"",
		m.renderCards(width),
		m.renderStatus(),
	}
	if m.notice != "" {
		sections = append(sections, m.renderNotice())
	}
	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render("sensormon")

	state := m.state.String()
	if m.connecting {
		state = m.spinner.View() + " connecting"
	}

	parts := []string{m.sess.Source().Name()}
	if m.cfg.Preset != "" {
		parts = append(parts, m.cfg.Preset)
	}
	parts = append(parts,
		state,
		fmt.Sprintf("%d/%d samples", m.snap.Len(), m.cfg.History.Size),
	)
	if d := m.sess.Discarded(); d > 0 {
		parts = append(parts, fmt.Sprintf("%d discarded", d))
	}
	stats := LabelStyle.Render(" | " + strings.Join(parts, " | "))
	return HeaderStyle.Render(title + stats)
}

// chartRows picks the braille height from the terminal height.
func (m Model) chartRows() int {
	if m.height <= 0 {
		return 8
	}
	rows := m.height - reservedLines
	if rows < chartMinRows {
		rows = chartMinRows
	}
	if rows > 16 {
		rows = 16
	}
	return rows
}

func (m Model) renderChart(width int) string {
	title := chartTitle + " - " + m.TitleState()

	var series []Series
	for i := range m.channels {
		if m.Visible(i) {
			series = append(series, Series{Values: m.snap.Series(i), Color: SeriesColor(i)})
		}
	}

	lo, hi, ok := m.yRange(series)
	rangeText := "no data"
	if ok {
		rangeText = fmt.Sprintf("%.4g .. %.4g", lo, hi)
	}

	rows := m.chartRows()
	plotWidth := width - 4 - axisWidth
	if plotWidth < 10 {
		plotWidth = 10
	}

	lines := []string{SectionHeader(title, rangeText, width)}
	var body []string
	if ok {
		body = strings.Split(RenderBrailleChart(series, plotWidth, rows, lo, hi), "\n")
	}
	for r := 0; r < rows; r++ {
		axis := strings.Repeat(" ", axisWidth)
		switch {
		case ok && r == 0:
			axis = fmt.Sprintf("%*.*g ", axisWidth-1, 4, hi)
		case ok && r == rows-1:
			axis = fmt.Sprintf("%*.*g ", axisWidth-1, 4, lo)
		}
		row := strings.Repeat(" ", plotWidth)
		if r < len(body) {
			row = body[r]
		}
		lines = append(lines, SectionContentLine(MutedStyle.Render(axis)+row, width))
	}
	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

// yRange is the fixed axis when every visible channel pins one, otherwise
// the data range padded by 5%.
func (m Model) yRange(series []Series) (lo, hi float64, ok bool) {
	lo, hi, ok = Bounds(series)
	if !ok {
		return 0, 0, false
	}

	fixed := true
	flo, fhi := 0.0, 0.0
	first := true
	for i, ch := range m.channels {
		if !m.Visible(i) {
			continue
		}
		if ch.AxisMin == nil || ch.AxisMax == nil {
			fixed = false
			break
		}
		if first || *ch.AxisMin < flo {
			flo = *ch.AxisMin
		}
		if first || *ch.AxisMax > fhi {
			fhi = *ch.AxisMax
		}
		first = false
	}
	if fixed && !first {
		return flo, fhi, true
	}

	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad, true
}

func (m Model) renderLegend() string {
	var items []string
	for i, ch := range m.channels {
		if !m.Visible(i) {
			continue
		}
		items = append(items, lipgloss.NewStyle().Foreground(SeriesColor(i)).Render("━ "+ch.Title()))
	}
	if len(items) == 0 {
		return MutedStyle.Render("  all channels hidden")
	}
	return "  " + strings.Join(items, "   ")
}

func (m Model) renderCards(width int) string {
	if len(m.channels) == 0 {
		return LabelStyle.Render("No channels configured")
	}

	w := cardWidth
	perRow := width / (w + 3)
	if perRow < 1 {
		perRow = 1
		w = width - 4
		if w < cardMinWidth {
			w = cardMinWidth
		}
	}

	var cards []string
	for i := range m.channels {
		cards = append(cards, m.renderCard(i, w))
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderStatus() string {
	line := m.StatusLine()
	for _, c := range m.checks {
		if c.Message() != "" {
			return StatusAlertStyle.Render(" " + line)
		}
	}
	return StatusNormalStyle.Render(" " + line)
}

func (m Model) renderNotice() string {
	style := NoticeInfoStyle
	switch m.noticeLevel {
	case session.NoticeWarn:
		style = NoticeWarnStyle
	case session.NoticeError:
		style = NoticeErrorStyle
	}
	return style.Render(" " + m.notice)
}

func (m Model) renderFooter() string {
	if m.editing {
		return FooterStyle.Render(m.help.View(editKeys{m.keys}))
	}
	return FooterStyle.Render(m.help.View(m.keys))
}
