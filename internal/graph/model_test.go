package graph

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yvan674/dgx-tools/internal/errors"
	"github.com/yvan674/dgx-tools/internal/gpu"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

type stubSource struct {
	devices []gpu.Device
	err     error
}

func (s stubSource) Devices(ctx context.Context) ([]gpu.Device, error) {
	return s.devices, s.err
}

func testDevices() []gpu.Device {
	return []gpu.Device{
		{Index: 0, Name: "Tesla V100-SXM2-32GB", Utilization: 40, MemoryTotal: 32768, MemoryUsed: 8192},
		{Index: 1, Name: "Tesla V100-SXM2-32GB", Utilization: 95, MemoryTotal: 32768, MemoryUsed: 30000},
	}
}

func TestModelQuitKeys(t *testing.T) {
	keys := map[string]tea.KeyMsg{
		"q":      {Type: tea.KeyRunes, Runes: []rune{'q'}},
		"ctrl+c": {Type: tea.KeyCtrlC},
		"esc":    {Type: tea.KeyEsc},
	}

	for name, key := range keys {
		t.Run(name, func(t *testing.T) {
			m := NewModel(stubSource{}, time.Second)

			updated, cmd := m.Update(key)
			require.NotNil(t, cmd)
			assert.Empty(t, updated.View())
		})
	}
}

func TestModelWindowSize(t *testing.T) {
	m := NewModel(stubSource{}, time.Second)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	model := updated.(Model)

	assert.Equal(t, 100, model.width)
	assert.Equal(t, 40, model.height)
}

func TestModelAppliesSamples(t *testing.T) {
	m := NewModel(stubSource{}, time.Second)

	updated, _ := m.Update(samplesMsg{devices: testDevices()})
	model := updated.(Model)

	assert.True(t, model.haveSample)
	assert.Equal(t, []float64{40}, model.History(0))
	assert.Equal(t, []float64{95}, model.History(1))

	updated, _ = model.Update(samplesMsg{devices: testDevices()})
	model = updated.(Model)
	assert.Equal(t, []float64{40, 40}, model.History(0))
}

func TestModelFirstSampleFailureIsFatal(t *testing.T) {
	m := NewModel(stubSource{}, time.Second)
	collectErr := errors.New(errors.ErrCollab, "nvidia-smi failed", "")

	updated, cmd := m.Update(samplesMsg{err: collectErr})
	model := updated.(Model)

	require.NotNil(t, cmd)
	assert.Equal(t, collectErr, model.FatalErr())
}

func TestModelLaterFailureSkipsTick(t *testing.T) {
	m := NewModel(stubSource{}, time.Second)

	updated, _ := m.Update(samplesMsg{devices: testDevices()})
	model := updated.(Model)

	updated, cmd := model.Update(samplesMsg{err: errors.New(errors.ErrCollab, "timeout", "")})
	model = updated.(Model)

	assert.Nil(t, cmd)
	assert.NoError(t, model.FatalErr())
	assert.NotEmpty(t, model.lastErr)
	// Previous data survives the skipped tick.
	assert.Equal(t, []float64{40}, model.History(0))

	// A healthy tick clears the notice.
	updated, _ = model.Update(samplesMsg{devices: testDevices()})
	model = updated.(Model)
	assert.Empty(t, model.lastErr)
}

func TestModelTickSchedulesCollection(t *testing.T) {
	m := NewModel(stubSource{}, 10*time.Millisecond)

	_, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
}

func TestModelCollectCmd(t *testing.T) {
	t.Run("delivers devices", func(t *testing.T) {
		m := NewModel(stubSource{devices: testDevices()}, time.Second)

		msg := m.collectCmd()()
		samples, ok := msg.(samplesMsg)
		require.True(t, ok)
		assert.NoError(t, samples.err)
		assert.Len(t, samples.devices, 2)
	})

	t.Run("delivers errors", func(t *testing.T) {
		m := NewModel(stubSource{err: errors.New(errors.ErrCollab, "boom", "")}, time.Second)

		msg := m.collectCmd()()
		samples, ok := msg.(samplesMsg)
		require.True(t, ok)
		assert.Error(t, samples.err)
	})
}

func TestModelViewWaiting(t *testing.T) {
	m := NewModel(stubSource{}, time.Second)

	view := m.View()
	assert.Contains(t, view, "waiting for the first nvidia-smi reading")
}

func TestModelViewNoDevices(t *testing.T) {
	m := NewModel(stubSource{}, time.Second)

	updated, _ := m.Update(samplesMsg{devices: nil})
	view := updated.View()

	assert.Contains(t, view, "No GPUs reported")
}

func TestModelViewPanels(t *testing.T) {
	m := NewModel(stubSource{}, time.Second)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	updated, _ = updated.(Model).Update(samplesMsg{devices: testDevices()})
	view := updated.View()

	assert.Contains(t, view, "GPU 0: Tesla V100-SXM2-32GB")
	assert.Contains(t, view, "GPU 1: Tesla V100-SXM2-32GB")
	assert.Contains(t, view, "dgx graph")
	assert.Contains(t, view, "q quit")
}

func TestModelViewTooSmall(t *testing.T) {
	m := NewModel(stubSource{}, time.Second)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 8})
	updated, _ = updated.(Model).Update(samplesMsg{devices: testDevices()})
	view := updated.View()

	assert.Contains(t, view, "Terminal too small")
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name     string
		devices  int
		width    int
		height   int
		wantRows int
		wantCols int
	}{
		{"single device", 1, 120, 40, 1, 1},
		{"wide terminal splits into columns", 2, 200, 30, 1, 2},
		{"tall terminal splits into rows", 2, 60, 80, 2, 1},
		{"eight devices fill a grid", 8, 240, 60, 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, cols := partition(tt.devices, tt.width, tt.height)
			assert.Equal(t, tt.wantRows, rows)
			assert.Equal(t, tt.wantCols, cols)
			assert.GreaterOrEqual(t, rows*cols, tt.devices)
		})
	}
}

func TestCompactError(t *testing.T) {
	err := errors.New(errors.ErrCollab, "nvidia-smi failed", "Check the driver")
	assert.NotContains(t, compactError(err), "\n")
}
