// Package slurm takes snapshots of the Slurm queue and derives per-job GPU
// allocations plus the resources left on the machine.
package slurm

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/yvan674/dgx-tools/internal/errors"
	"github.com/yvan674/dgx-tools/internal/exec"
)

// startTimeLayout is scontrol's timestamp format.
const startTimeLayout = "2006-01-02T15:04:05"

// startTimeDisplay is how start times are shown in the table.
const startTimeDisplay = "02 Jan - 15:04:05"

// Job is one RUNNING Slurm job with the fields the queue table shows.
type Job struct {
	ID        string
	Name      string
	User      string
	Elapsed   string
	Start     string
	CPUs      int
	MemoryGiB float64
	GPUs      int
	WorkDir   string
}

// Capacity is the total schedulable resources of one machine.
type Capacity struct {
	CPUs      int
	MemoryGiB float64
	GPUs      int
}

// DefaultCapacity matches a DGX-2: 80 cores, 508 GiB usable RAM, 8 GPUs.
var DefaultCapacity = Capacity{CPUs: 80, MemoryGiB: 508, GPUs: 8}

// Remaining is capacity minus the sum of running allocations. Values can
// go negative when Slurm oversubscribes; callers flag that rather than
// clamping it away.
type Remaining struct {
	CPUs      int
	MemoryGiB float64
	GPUs      int
}

// Snapshot queries scontrol on the given runner and returns the RUNNING
// jobs. An empty queue is a valid snapshot, not an error.
func Snapshot(ctx context.Context, runner exec.Runner) ([]Job, error) {
	out, err := runner.Output(ctx, "scontrol", "show", "job")
	if err != nil {
		return nil, err
	}
	return ParseJobs(out)
}

// ParseJobs parses `scontrol show job` output: blank-line-separated
// records of whitespace-separated Key=Value tokens. Jobs in any state
// other than RUNNING are dropped.
func ParseJobs(output string) ([]Job, error) {
	// scontrol prints this instead of an empty record list.
	if strings.Contains(output, "No jobs in the system") {
		return nil, nil
	}

	var jobs []Job
	for _, record := range strings.Split(output, "\n\n") {
		fields := parseRecord(record)
		if len(fields) == 0 {
			continue
		}
		if fields["JobState"] != "RUNNING" {
			continue
		}

		id, ok := fields["JobId"]
		if !ok {
			return nil, errors.New(errors.ErrParse,
				"Couldn't parse the scontrol output",
				"A job record has no JobId field. Check `scontrol show job` by hand.")
		}

		jobs = append(jobs, Job{
			ID:        id,
			Name:      fields["JobName"],
			User:      stripUID(fields["UserId"]),
			Elapsed:   humanizeRunTime(fields["RunTime"]),
			Start:     formatStartTime(fields["StartTime"]),
			CPUs:      atoiOrZero(fields["NumCPUs"]),
			MemoryGiB: parseMemoryGiB(fields["MinMemoryNode"]),
			GPUs:      ParseGres(fields["Gres"]),
			WorkDir:   fields["WorkDir"],
		})
	}

	return jobs, nil
}

// ComputeRemaining subtracts every job's allocation from the machine
// capacity. Negative results are returned as-is.
func ComputeRemaining(jobs []Job, total Capacity) Remaining {
	r := Remaining{
		CPUs:      total.CPUs,
		MemoryGiB: total.MemoryGiB,
		GPUs:      total.GPUs,
	}
	for _, j := range jobs {
		r.CPUs -= j.CPUs
		r.MemoryGiB -= j.MemoryGiB
		r.GPUs -= j.GPUs
	}
	return r
}

// Oversubscribed reports whether any resource has gone negative.
func (r Remaining) Oversubscribed() bool {
	return r.CPUs < 0 || r.MemoryGiB < 0 || r.GPUs < 0
}

// parseRecord splits one record into its Key=Value fields. Tokens without
// an '=' are skipped; scontrol emits a few informational ones.
func parseRecord(record string) map[string]string {
	fields := make(map[string]string)
	for _, token := range strings.Fields(record) {
		key, value, found := strings.Cut(token, "=")
		if !found || key == "" {
			continue
		}
		fields[key] = value
	}
	return fields
}

// stripUID turns "alice(1001)" into "alice".
func stripUID(user string) string {
	name, _, _ := strings.Cut(user, "(")
	return name
}

// humanizeRunTime rewrites "D-HH:MM:SS" as "D days HH:MM:SS" and leaves
// shorter run times untouched.
func humanizeRunTime(runTime string) string {
	days, rest, found := strings.Cut(runTime, "-")
	if !found {
		return runTime
	}
	return days + " days " + rest
}

// formatStartTime reformats scontrol's timestamp for the table. Values
// like "Unknown" pass through unchanged.
func formatStartTime(start string) string {
	t, err := time.Parse(startTimeLayout, start)
	if err != nil {
		return start
	}
	return t.Format(startTimeDisplay)
}

// ParseGres extracts the GPU count from a Gres string: "gpu:4" and
// "gpu:v100:4" both yield 4, "(null)" and anything unparseable yield 0.
func ParseGres(gres string) int {
	if gres == "" || strings.Contains(gres, "(null)") {
		return 0
	}

	// Slurm may append an index list like "gpu:2(IDX:0-1)".
	gres, _, _ = strings.Cut(gres, "(")

	parts := strings.Split(gres, ":")
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseMemoryGiB converts a MinMemoryNode value to GiB. Slurm writes an
// explicit G or M suffix; a bare number is megabytes, Slurm's default
// unit.
func parseMemoryGiB(mem string) float64 {
	if mem == "" {
		return 0
	}

	switch {
	case strings.HasSuffix(mem, "G"):
		return atofOrZero(strings.TrimSuffix(mem, "G"))
	case strings.HasSuffix(mem, "M"):
		return atofOrZero(strings.TrimSuffix(mem, "M")) / 1024
	default:
		return atofOrZero(mem) / 1024
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func atofOrZero(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
