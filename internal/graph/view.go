package graph

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yvan674/dgx-tools/internal/gpu"
)

const (
	// memColWidth is the width of the memory gauge column in each panel.
	memColWidth = 4

	// Minimum panel interior a chart can be drawn into.
	minPanelWidth  = 20
	minPanelHeight = 8
)

// renderScreen renders the header, the grid of GPU panels, and the footer.
func (m Model) renderScreen() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch {
	case !m.haveSample:
		b.WriteString(m.spin.View())
		b.WriteString(LabelStyle.Render(" waiting for the first nvidia-smi reading"))
	case len(m.devices) == 0:
		b.WriteString(LabelStyle.Render("No GPUs reported by nvidia-smi"))
	default:
		b.WriteString(m.renderPanels())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title bar with device count and poll interval.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("dgx graph")

	stats := LabelStyle.Render(
		fmt.Sprintf(" | %d GPUs | every %s", len(m.devices), m.interval))

	return title + stats
}

// renderFooter renders the key hints, plus the most recent poll failure
// when a tick has been skipped.
func (m Model) renderFooter() string {
	footer := FooterStyle.Render("q quit")
	if m.lastErr != "" {
		footer += ErrorStyle.Render(" | stale: " + m.lastErr)
	}
	return footer
}

// renderPanels partitions the terminal into one panel per device and
// arranges them in a grid.
func (m Model) renderPanels() string {
	width, height := m.width, m.height
	if width == 0 {
		width = 120
	}
	if height == 0 {
		height = 36
	}
	// Header and footer each take a line.
	height -= 3

	rows, cols := partition(len(m.devices), width, height)

	pw := width / cols
	ph := height / rows

	// Border and padding eat four columns and two rows.
	innerW := pw - 4
	innerH := ph - 2

	if innerW < minPanelWidth || innerH < minPanelHeight {
		return ErrorStyle.Render(
			fmt.Sprintf("Terminal too small for %d GPUs; enlarge the window or press q", len(m.devices)))
	}

	panels := make([]string, 0, len(m.devices))
	for _, d := range m.devices {
		panels = append(panels, m.renderPanel(d, innerW, innerH))
	}

	lines := make([]string, 0, rows)
	for i := 0; i < len(panels); i += cols {
		end := i + cols
		if end > len(panels) {
			end = len(panels)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, panels[i:end]...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// partition splits the screen into a rows x cols grid with at least one
// cell per device. Each step cuts along the longer panel dimension; a
// terminal cell is roughly twice as tall as it is wide, so width is
// compared against doubled height.
func partition(devices, width, height int) (rows, cols int) {
	rows, cols = 1, 1
	for rows*cols < devices {
		if width/cols > (height/rows)*2 {
			cols++
		} else {
			rows++
		}
	}
	return rows, cols
}

// renderPanel renders one device: a title line, the utilization line chart
// colored by the latest value, and the memory gauge column on the right.
func (m Model) renderPanel(d gpu.Device, innerW, innerH int) string {
	title := TitleStyle.MaxWidth(innerW).
		Render(fmt.Sprintf("GPU %d: %s", d.Index, d.Name))

	chartW := innerW - memColWidth - 1
	chartH := innerH - 3 // title, chart baseline row, memory label

	series := m.History(d.Index)
	chartLines := RenderLineChart(series, chartW, chartH)
	lineStyle := lipgloss.NewStyle().Foreground(MetricColor(d.Utilization))

	colored := make([]string, len(chartLines))
	for i, line := range chartLines {
		runes := []rune(line)
		if len(runes) <= axisOffset {
			colored[i] = AxisStyle.Render(line)
			continue
		}
		colored[i] = AxisStyle.Render(string(runes[:axisOffset])) +
			lineStyle.Render(string(runes[axisOffset:]))
	}
	chart := strings.Join(colored, "\n")

	memPct := d.MemoryPercent()
	memStyle := lipgloss.NewStyle().Foreground(MetricColor(memPct))
	memLines := RenderMemoryColumn(memPct, memColWidth, chartH)
	gauge := memStyle.Render(strings.Join(memLines, "\n")) + "\n" +
		LabelStyle.Render(fmt.Sprintf("%3.0f%%", memPct))

	body := lipgloss.JoinHorizontal(lipgloss.Bottom, chart, " ", gauge)

	memLabel := LabelStyle.Render(
		fmt.Sprintf("mem %d / %d MiB", int(d.MemoryUsed), int(d.MemoryTotal)))

	content := lipgloss.JoinVertical(lipgloss.Left, title, body, memLabel)
	return PanelStyle.Width(innerW + 2).Render(content)
}
