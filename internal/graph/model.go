package graph

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yvan674/dgx-tools/internal/gpu"
)

// collectTimeout bounds one nvidia-smi invocation so a wedged driver can't
// stall quit handling forever.
const collectTimeout = 5 * time.Second

// Model is the Bubble Tea model for the live GPU grapher. One poll tick
// pulls a reading from the sample source, pushes utilization into the
// per-device ring buffers, and re-renders every panel.
type Model struct {
	source   gpu.Source
	interval time.Duration

	buffers map[int]*Buffer // utilization history per device index
	devices []gpu.Device    // most recent reading, in index order

	width  int
	height int

	haveSample bool   // at least one successful reading rendered
	lastErr    string // most recent skipped-tick failure, empty when healthy
	fatalErr   error  // first-tick failure; terminates the program

	quitting bool
	spin     spinner.Model
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// samplesMsg carries one reading from the sample source.
type samplesMsg struct {
	devices []gpu.Device
	err     error
}

// NewModel creates a grapher model polling the given source at interval.
func NewModel(source gpu.Source, interval time.Duration) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = HeaderStyle

	return Model{
		source:   source,
		interval: interval,
		buffers:  make(map[int]*Buffer),
		spin:     s,
	}
}

// FatalErr returns the error that aborted the loop before the first
// successful render, or nil after a normal quit.
func (m Model) FatalErr() error {
	return m.fatalErr
}

// Init triggers the first collection and starts the tick timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.collectCmd(), m.tickCmd(), m.spin.Tick)
}

// Update handles messages and updates the model state. Quit keys are
// observed here, between renders, so a frame is never torn mid-draw.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tea.Batch(m.tickCmd(), m.collectCmd())

	case spinner.TickMsg:
		// Only animate while waiting for the first reading.
		if !m.haveSample && m.fatalErr == nil {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}

	case samplesMsg:
		return m.applySamples(msg)
	}

	return m, nil
}

// View renders the full-screen grapher.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderScreen()
}

// tickCmd schedules the next poll tick.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// collectCmd queries the sample source off the UI goroutine.
func (m Model) collectCmd() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
		defer cancel()

		devices, err := source.Devices(ctx)
		return samplesMsg{devices: devices, err: err}
	}
}

// applySamples folds one reading into the model. A failed tick after the
// first successful render is skipped: the previous frame stays up and the
// buffers are left untouched. The same failure before anything has been
// drawn is fatal.
func (m Model) applySamples(msg samplesMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if !m.haveSample {
			m.fatalErr = msg.err
			m.quitting = true
			return m, tea.Quit
		}
		m.lastErr = compactError(msg.err)
		return m, nil
	}

	m.lastErr = ""
	m.haveSample = true
	m.devices = msg.devices

	for _, d := range msg.devices {
		buf, ok := m.buffers[d.Index]
		if !ok {
			buf = NewBuffer(DefaultHistorySize)
			m.buffers[d.Index] = buf
		}
		buf.Push(d.Utilization)
	}

	return m, nil
}

// History returns the utilization history for a device index.
func (m Model) History(index int) []float64 {
	buf, ok := m.buffers[index]
	if !ok {
		return nil
	}
	return buf.Snapshot()
}

// compactError reduces a structured multi-line error to its first line so
// it fits the footer.
func compactError(err error) string {
	s := err.Error()
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
