package cli

import (
	"context"
	"strconv"

	"github.com/yvan674/dgx-tools/internal/config"
	"github.com/yvan674/dgx-tools/internal/docker"
	"github.com/yvan674/dgx-tools/internal/exec"
	"github.com/yvan674/dgx-tools/internal/gpu"
	"github.com/yvan674/dgx-tools/internal/logger"
	"github.com/yvan674/dgx-tools/internal/ui"
)

// containersCommand prints the container GPU/CPU allocation table, once or
// on a timer.
func containersCommand(intervalSeconds float64) error {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}

	interval, err := ParseInterval(intervalSeconds, false)
	if err != nil {
		return err
	}

	runner := exec.NewLocal()
	source := gpu.NewSMISource()

	collect := func(ctx context.Context) (string, error) {
		return collectContainers(ctx, runner, source, cfg.MountPrefixes)
	}
	return runSnapshot(collect, interval)
}

// collectContainers gathers the GPU inventory and the running containers,
// then renders the table. A failing nvidia-smi is tolerated: UUID-mapped
// GPU columns degrade to "-" on a box without GPUs.
func collectContainers(ctx context.Context, runner exec.Runner, source gpu.Source, mountPrefixes []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	devices, err := source.Devices(ctx)
	if err != nil {
		logger.Default().Debug("gpu inventory unavailable: %v", err)
		devices = nil
	}

	containers, err := docker.Snapshot(ctx, runner, devices, mountPrefixes)
	if err != nil {
		return "", err
	}

	return renderContainers(containers), nil
}

func renderContainers(containers []docker.Container) string {
	table := ui.NewTable(
		ui.Column{Title: "ID"},
		ui.Column{Title: "Name"},
		ui.Column{Title: "User"},
		ui.Column{Title: "Image"},
		ui.Column{Title: "GPUs Used"},
		ui.Column{Title: "GPU Count", Numeric: true},
		ui.Column{Title: "CPUs Used"},
		ui.Column{Title: "CPU Count", Numeric: true},
	)

	for _, c := range containers {
		cpus := c.CPUSet
		if cpus == "" {
			cpus = "-"
		}
		table.AddRow(
			c.ID,
			c.Name,
			c.Owner,
			c.Image,
			c.GPUList(),
			strconv.Itoa(len(c.GPUIndexes)),
			cpus,
			strconv.Itoa(c.CPUCount),
		)
	}

	out := table.Render()
	if len(containers) == 0 {
		out += ui.MutedStyle.Render("No running containers") + "\n"
	}
	return out
}
