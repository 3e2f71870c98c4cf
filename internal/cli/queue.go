package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yvan674/dgx-tools/internal/config"
	"github.com/yvan674/dgx-tools/internal/exec"
	"github.com/yvan674/dgx-tools/internal/slurm"
	"github.com/yvan674/dgx-tools/internal/ui"
	"github.com/yvan674/dgx-tools/pkg/sshutil"
)

// snapshotTimeout bounds one full snapshot collection.
const snapshotTimeout = 30 * time.Second

// queueCommand prints the Slurm queue snapshot, once or on a timer.
func queueCommand(all bool, intervalSeconds float64) error {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return err
	}

	interval, err := ParseInterval(intervalSeconds, false)
	if err != nil {
		return err
	}

	collect := func(ctx context.Context) (string, error) {
		return collectQueue(ctx, exec.NewLocal(), slurmCapacity(cfg.Capacity))
	}
	if all {
		if len(cfg.Machines) == 0 {
			return noMachinesError()
		}
		collect = func(ctx context.Context) (string, error) {
			return collectQueueAll(ctx, cfg), nil
		}
	}

	return runSnapshot(collect, interval)
}

// collectQueue renders one machine's queue: the job table followed by the
// remaining-resources section.
func collectQueue(ctx context.Context, runner exec.Runner, capacity slurm.Capacity) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	jobs, err := slurm.Snapshot(ctx, runner)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(renderQueueTable(jobs))
	b.WriteString("\n")
	b.WriteString(renderRemaining(slurm.ComputeRemaining(jobs, capacity)))
	return b.String(), nil
}

// collectQueueAll walks the configured machines in order. A machine that
// can't be reached gets a failure notice in its section; the walk
// continues. The aggregate never fails: partial output is the point.
func collectQueueAll(ctx context.Context, cfg *config.Config) string {
	var b strings.Builder

	for i, machine := range cfg.Machines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(ui.MachineStyle.Render("== " + machine.DisplayName() + " =="))
		b.WriteString("\n")

		section, err := collectQueueMachine(ctx, machine, slurmCapacity(cfg.CapacityFor(machine)))
		if err != nil {
			b.WriteString(ui.ErrStyle.Render(ui.SymbolFail + " " + firstLine(err)))
			b.WriteString("\n")
			continue
		}
		b.WriteString(section)
	}

	return b.String()
}

func collectQueueMachine(ctx context.Context, machine config.Machine, capacity slurm.Capacity) (string, error) {
	client, err := sshutil.Dial(machine.Alias, sshutil.DefaultDialTimeout)
	if err != nil {
		return "", err
	}
	defer client.Close()

	return collectQueue(ctx, sshutil.NewRunner(client), capacity)
}

// renderQueueTable formats the RUNNING jobs.
func renderQueueTable(jobs []slurm.Job) string {
	table := ui.NewTable(
		ui.Column{Title: "JobId"},
		ui.Column{Title: "JobName"},
		ui.Column{Title: "User"},
		ui.Column{Title: "Elapsed Time", Numeric: true},
		ui.Column{Title: "Start Time", Numeric: true},
		ui.Column{Title: "CPUs", Numeric: true},
		ui.Column{Title: "Mem", Numeric: true},
		ui.Column{Title: "GPUs", Numeric: true},
	)

	for _, j := range jobs {
		table.AddRow(
			j.ID,
			j.Name,
			j.User,
			j.Elapsed,
			j.Start,
			strconv.Itoa(j.CPUs),
			formatGiB(j.MemoryGiB),
			strconv.Itoa(j.GPUs),
		)
	}

	out := table.Render()
	if len(jobs) == 0 {
		out += ui.MutedStyle.Render("No running jobs") + "\n"
	}
	return out
}

// renderRemaining formats the "Available resources" section. Negative
// values mean Slurm reported more allocated than the configured capacity;
// they are flagged, not hidden.
func renderRemaining(r slurm.Remaining) string {
	var b strings.Builder
	b.WriteString(ui.SectionStyle.Render("Available resources:"))
	b.WriteString("\n\n")

	rows := []struct {
		label string
		value string
		low   bool
	}{
		{"CPUs:", strconv.Itoa(r.CPUs), r.CPUs < 0},
		{"Memory:", formatGiB(r.MemoryGiB), r.MemoryGiB < 0},
		{"GPUs:", strconv.Itoa(r.GPUs), r.GPUs < 0},
	}

	for _, row := range rows {
		value := row.value
		if row.low {
			value = ui.WarnStyle.Render(value + " " + ui.SymbolWarn)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", ui.SectionStyle.Render(padLabel(row.label)), value))
	}

	return b.String()
}

func slurmCapacity(c config.Capacity) slurm.Capacity {
	return slurm.Capacity{CPUs: c.CPUs, MemoryGiB: c.MemoryGiB, GPUs: c.GPUs}
}

// formatGiB renders a GiB value without trailing zeros, suffixed G.
func formatGiB(g float64) string {
	return strconv.FormatFloat(g, 'f', -1, 64) + "G"
}

func padLabel(label string) string {
	const width = 8
	if len(label) >= width {
		return label
	}
	return label + strings.Repeat(" ", width-len(label))
}

// firstLine trims a structured multi-line error to its first line.
func firstLine(err error) string {
	s := strings.TrimSpace(err.Error())
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return s
}
