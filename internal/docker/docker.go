// Package docker inspects running containers and works out who started
// them and which CPUs and GPUs they hold.
package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yvan674/dgx-tools/internal/errors"
	"github.com/yvan674/dgx-tools/internal/exec"
	"github.com/yvan674/dgx-tools/internal/gpu"
)

// DefaultMountPrefixes are the cluster filesystem roots whose first path
// element below the prefix is a username.
var DefaultMountPrefixes = []string{"/cluster/home", "/cluster/data"}

// Container is one running container with its resource allocation.
type Container struct {
	ID         string
	Name       string
	Owner      string
	Image      string
	CPUSet     string
	CPUCount   int
	GPUIndexes []int
}

// GPUList renders the held GPU indices for the table, "-" when the
// container holds none.
func (c Container) GPUList() string {
	if len(c.GPUIndexes) == 0 {
		return "-"
	}
	parts := make([]string, len(c.GPUIndexes))
	for i, idx := range c.GPUIndexes {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ", ")
}

// inspectInfo is the slice of `docker inspect` fields the snapshot reads.
type inspectInfo struct {
	Name       string `json:"Name"`
	HostConfig struct {
		CpusetCpus string `json:"CpusetCpus"`
	} `json:"HostConfig"`
	Config struct {
		Image string   `json:"Image"`
		Env   []string `json:"Env"`
	} `json:"Config"`
	Mounts []struct {
		Source string `json:"Source"`
	} `json:"Mounts"`
}

// Snapshot lists running containers via `docker ps -q` and inspects each
// one. devices maps GPU UUIDs back to nvidia-smi indices; mountPrefixes
// locate the owning user (nil means DefaultMountPrefixes). No running
// containers is a valid empty snapshot.
func Snapshot(ctx context.Context, runner exec.Runner, devices []gpu.Device, mountPrefixes []string) ([]Container, error) {
	if mountPrefixes == nil {
		mountPrefixes = DefaultMountPrefixes
	}

	out, err := runner.Output(ctx, "docker", "ps", "-q")
	if err != nil {
		return nil, err
	}

	var containers []Container
	for _, id := range strings.Fields(out) {
		c, err := inspectOne(ctx, runner, id, devices, mountPrefixes)
		if err != nil {
			return nil, err
		}
		containers = append(containers, c)
	}

	return containers, nil
}

func inspectOne(ctx context.Context, runner exec.Runner, id string, devices []gpu.Device, mountPrefixes []string) (Container, error) {
	out, err := runner.Output(ctx, "docker", "inspect", id)
	if err != nil {
		return Container{}, err
	}

	var infos []inspectInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		return Container{}, errors.WrapWithCode(err, errors.ErrParse,
			fmt.Sprintf("Couldn't parse docker inspect output for %s", id),
			"Check `docker inspect` by hand; the daemon may be misbehaving.")
	}
	if len(infos) == 0 {
		return Container{}, errors.New(errors.ErrParse,
			fmt.Sprintf("docker inspect returned nothing for %s", id),
			"The container may have exited between ps and inspect.")
	}
	info := infos[0]

	sources := make([]string, len(info.Mounts))
	for i, m := range info.Mounts {
		sources[i] = m.Source
	}

	return Container{
		ID:         id,
		Name:       strings.TrimPrefix(info.Name, "/"),
		Owner:      ownerFromMounts(sources, mountPrefixes),
		Image:      stripTag(info.Config.Image),
		CPUSet:     info.HostConfig.CpusetCpus,
		CPUCount:   CountCPUSet(info.HostConfig.CpusetCpus),
		GPUIndexes: heldGPUs(info.Config.Env, devices),
	}, nil
}

// CountCPUSet counts the CPUs in a cpuset string like "0-3,8,10-11".
// Ranges are inclusive; an empty cpuset means the container is not pinned
// and counts as zero.
func CountCPUSet(cpuset string) int {
	if cpuset == "" {
		return 0
	}

	count := 0
	for _, segment := range strings.Split(cpuset, ",") {
		lo, hi, isRange := strings.Cut(segment, "-")
		if !isRange {
			count++
			continue
		}
		a, errA := strconv.Atoi(lo)
		b, errB := strconv.Atoi(hi)
		if errA != nil || errB != nil || b < a {
			count++
			continue
		}
		count += b - a + 1
	}
	return count
}

// ownerFromMounts finds the username from the first mount that lives under
// one of the cluster prefixes. "Unknown" when no mount matches.
func ownerFromMounts(sources, prefixes []string) string {
	for _, source := range sources {
		for _, prefix := range prefixes {
			rest, ok := strings.CutPrefix(source, strings.TrimSuffix(prefix, "/")+"/")
			if !ok {
				continue
			}
			user, _, _ := strings.Cut(rest, "/")
			if user != "" {
				return user
			}
		}
	}
	return "Unknown"
}

// heldGPUs resolves NVIDIA_VISIBLE_DEVICES to nvidia-smi indices. The
// value is a comma-separated UUID list, or "all" for every device; absent
// or empty means the container holds no GPUs.
func heldGPUs(env []string, devices []gpu.Device) []int {
	var value string
	for _, entry := range env {
		if v, ok := strings.CutPrefix(entry, "NVIDIA_VISIBLE_DEVICES="); ok {
			value = v
			break
		}
	}

	if value == "" || value == "none" || value == "void" {
		return nil
	}
	if value == "all" {
		indexes := make([]int, len(devices))
		for i, d := range devices {
			indexes[i] = d.Index
		}
		return indexes
	}

	var uuids []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			uuids = append(uuids, part)
		}
	}
	return gpu.IndexesForUUIDs(devices, uuids)
}

// stripTag drops the ":tag" suffix from an image reference.
func stripTag(image string) string {
	name, _, _ := strings.Cut(image, ":")
	return name
}
