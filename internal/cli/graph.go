package cli

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yvan674/dgx-tools/internal/config"
	"github.com/yvan674/dgx-tools/internal/gpu"
	"github.com/yvan674/dgx-tools/internal/graph"
)

// graphCommand starts the live grapher. Without an explicit --interval
// the configured default applies; an explicit zero is rejected.
func graphCommand(intervalSeconds float64, explicit bool) error {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}

	if !explicit {
		intervalSeconds = cfg.Interval
	}
	interval, err := ParseInterval(intervalSeconds, true)
	if err != nil {
		return err
	}

	model := graph.NewModel(gpu.NewSMISource(), interval)
	program := tea.NewProgram(model, tea.WithAltScreen())

	final, err := program.Run()
	if err != nil {
		return err
	}

	// A collaborator failure before the first render quits the program
	// with the error stashed on the model.
	if m, ok := final.(graph.Model); ok {
		return m.FatalErr()
	}
	return nil
}
