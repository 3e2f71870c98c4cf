// Package gpu queries NVIDIA GPU state through the nvidia-smi tool.
//
// It is the sample source for the live grapher and supplies the UUID to
// device-index mapping the container inspector needs to resolve
// NVIDIA_VISIBLE_DEVICES assignments.
package gpu

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/yvan674/dgx-tools/internal/errors"
)

// queryFields is the --query-gpu field list. Order matters: ParseCSV indexes
// into the split line by position.
const queryFields = "index,uuid,utilization.gpu,memory.total,memory.used,name"

// Device is one GPU as reported by nvidia-smi.
type Device struct {
	Index       int
	UUID        string
	Name        string
	Utilization float64 // percent, 0-100
	MemoryTotal float64 // MiB
	MemoryUsed  float64 // MiB
}

// MemoryPercent returns memory usage as a percentage of total.
func (d Device) MemoryPercent() float64 {
	if d.MemoryTotal <= 0 {
		return 0
	}
	pct := d.MemoryUsed / d.MemoryTotal * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Source provides one reading of all visible GPU devices.
// A machine with no GPUs yields an empty slice, not an error.
type Source interface {
	Devices(ctx context.Context) ([]Device, error)
}

// SMISource queries devices by executing nvidia-smi.
type SMISource struct {
	// Path overrides the nvidia-smi binary location. Empty means $PATH lookup.
	Path string
}

// NewSMISource returns a Source backed by the nvidia-smi binary.
func NewSMISource() *SMISource {
	return &SMISource{}
}

// Devices runs nvidia-smi and parses its CSV output.
// A missing or failing binary is reported as a collaborator failure so the
// poll loop can decide between retry and abort.
func (s *SMISource) Devices(ctx context.Context) ([]Device, error) {
	bin := s.Path
	if bin == "" {
		bin = "nvidia-smi"
	}

	cmd := exec.CommandContext(ctx, bin,
		"--query-gpu="+queryFields,
		"--format=csv,noheader,nounits")

	out, err := cmd.Output()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollab,
			"Couldn't run nvidia-smi",
			"Check that the NVIDIA driver is installed and nvidia-smi is on PATH")
	}

	return ParseCSV(string(out))
}

// ParseCSV parses nvidia-smi --format=csv,noheader,nounits output into devices.
// Expected line shape: index, uuid, utilization.gpu, memory.total, memory.used, name
func ParseCSV(output string) ([]Device, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, nil
	}

	var devices []Device
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < 6 {
			return nil, errors.New(errors.ErrParse,
				fmt.Sprintf("nvidia-smi line has %d fields, expected 6: %q", len(fields), line),
				"Check the nvidia-smi version on this machine")
		}

		idx, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrParse,
				fmt.Sprintf("Couldn't parse GPU index %q", strings.TrimSpace(fields[0])), "")
		}

		d := Device{
			Index: idx,
			UUID:  strings.TrimSpace(fields[1]),
			// Name is the final field, so rejoin in case it contains commas.
			Name:        strings.TrimSpace(strings.Join(fields[5:], ",")),
			Utilization: parseMetric(fields[2]),
			MemoryTotal: parseMetric(fields[3]),
			MemoryUsed:  parseMetric(fields[4]),
		}
		devices = append(devices, d)
	}

	return devices, nil
}

// parseMetric converts one numeric field, treating unparseable values
// (such as "[N/A]") as zero rather than failing the whole reading.
func parseMetric(field string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0
	}
	return v
}

// IndexesForUUIDs maps GPU UUIDs to nvidia-smi device indices.
// UUIDs with no matching device are skipped; the caller decides how to
// surface partial matches.
func IndexesForUUIDs(devices []Device, uuids []string) []int {
	byUUID := make(map[string]int, len(devices))
	for _, d := range devices {
		byUUID[d.UUID] = d.Index
	}

	var indexes []int
	for _, u := range uuids {
		if idx, ok := byUUID[u]; ok {
			indexes = append(indexes, idx)
		}
	}
	return indexes
}
