package graph

import (
	"fmt"
	"math"
	"strings"
)

// Style selects how a sample sequence is drawn.
type Style int

const (
	// StyleLine draws a connected line through consecutive samples.
	StyleLine Style = iota
	// StyleBar draws one baseline-up bar per sample.
	StyleBar
)

// axisLabelWidth is the width of the percentage labels ("100%").
const axisLabelWidth = 4

// axisOffset is the first plot column: label plus the axis rune.
const axisOffset = axisLabelWidth + 1

// Render draws series into a character grid using the given style.
// The result is deterministic: the same series and dimensions always
// produce the same rows, byte for byte.
func Render(style Style, series []float64, width, height int) []string {
	switch style {
	case StyleBar:
		return RenderBarChart(series, width, height)
	default:
		return RenderLineChart(series, width, height)
	}
}

// RenderLineChart renders series as a connected line chart on a fixed
// 0-100 scale. The frame is height+1 rows tall and at most width runes
// wide, including the percentage axis on the left. Fewer than two samples
// produce an axis-only or single-point frame rather than an error, and an
// all-equal series renders as a flat line.
func RenderLineChart(series []float64, width, height int) []string {
	grid, series := chartGrid(series, width, height)
	if grid == nil {
		return nil
	}

	rows := height
	ratio := float64(rows) / 100

	scale := func(v float64) int {
		return clampLevel(int(math.Floor(v*ratio)), rows)
	}

	if len(series) > 0 {
		// Mark where the line meets the axis.
		grid[rows-scale(series[0])][axisLabelWidth] = '┼'
	}

	for x := 0; x < len(series)-1; x++ {
		y0 := scale(series[x])
		y1 := scale(series[x+1])

		if y0 == y1 {
			grid[rows-y0][x+axisOffset] = '─'
			continue
		}

		if y0 > y1 {
			grid[rows-y1][x+axisOffset] = '╰'
			grid[rows-y0][x+axisOffset] = '╮'
		} else {
			grid[rows-y1][x+axisOffset] = '╭'
			grid[rows-y0][x+axisOffset] = '╯'
		}

		for y := min(y0, y1) + 1; y < max(y0, y1); y++ {
			grid[rows-y][x+axisOffset] = '│'
		}
	}

	return gridStrings(grid)
}

// RenderBarChart renders series as one bar per sample, filled from the
// baseline to the scaled row, on the same fixed 0-100 scale and axis as
// the line chart.
func RenderBarChart(series []float64, width, height int) []string {
	grid, series := chartGrid(series, width, height)
	if grid == nil {
		return nil
	}

	rows := height
	ratio := float64(rows) / 100

	for x, v := range series {
		filled := clampLevel(int(math.Floor(v*ratio)), rows)
		if filled == 0 && v > 0 {
			// Visible floor for small but nonzero values.
			grid[rows][x+axisOffset] = '▁'
			continue
		}
		for y := 1; y <= filled; y++ {
			grid[rows-y][x+axisOffset] = '█'
		}
	}

	return gridStrings(grid)
}

// RenderMemoryColumn renders a single vertical gauge of the given percent
// with half-block resolution: each row holds two fill levels, so a column
// of height H resolves 2H steps. A zero percent draws a baseline so the
// gauge stays visible.
func RenderMemoryColumn(percent float64, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	blocks := int(math.Floor(percent / 100 * float64(2*height)))
	fullRows := blocks / 2
	halfRow := blocks%2 == 1

	out := make([]string, height)
	for row := 0; row < height; row++ {
		fromBottom := height - 1 - row
		switch {
		case fromBottom < fullRows:
			out[row] = strings.Repeat("█", width)
		case fromBottom == fullRows && halfRow:
			out[row] = strings.Repeat("▄", width)
		case row == height-1 && blocks == 0:
			out[row] = strings.Repeat("_", width)
		default:
			out[row] = strings.Repeat(" ", width)
		}
	}
	return out
}

// chartGrid prepares the rune grid shared by the line and bar styles:
// height+1 rows with percentage labels and the axis column, and the series
// trimmed to the columns that fit. Returns nil when the dimensions leave
// no room to draw.
func chartGrid(series []float64, width, height int) ([][]rune, []float64) {
	if height < 1 || width <= axisOffset {
		return nil, nil
	}

	usable := width - axisOffset
	if len(series) > usable {
		series = series[len(series)-usable:]
	}

	rows := height
	cols := axisOffset + len(series)
	if cols < axisOffset+1 {
		cols = axisOffset + 1
	}

	grid := make([][]rune, rows+1)
	for y := range grid {
		grid[y] = make([]rune, cols)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	for y := 0; y <= rows; y++ {
		label := fmt.Sprintf("%3.0f%%", float64(rows-y)*100/float64(rows))
		copy(grid[y], []rune(label))
		grid[y][axisLabelWidth] = '┤'
	}

	return grid, series
}

func gridStrings(grid [][]rune) []string {
	out := make([]string, len(grid))
	for i, row := range grid {
		out[i] = string(row)
	}
	return out
}

func clampLevel(level, maxLevel int) int {
	if level < 0 {
		return 0
	}
	if level > maxLevel {
		return maxLevel
	}
	return level
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
