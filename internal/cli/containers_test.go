package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yvan674/dgx-tools/internal/docker"
	"github.com/yvan674/dgx-tools/internal/gpu"
)

func TestRenderContainers(t *testing.T) {
	containers := []docker.Container{
		{
			ID:         "a1b2c3d4e5f6",
			Name:       "train-env",
			Owner:      "mgarcia",
			Image:      "nvcr.io/nvidia/pytorch",
			CPUSet:     "0-15",
			CPUCount:   16,
			GPUIndexes: []int{0, 1},
		},
		{
			ID:       "f6e5d4c3b2a1",
			Name:     "idle-shell",
			Owner:    "Unknown",
			Image:    "ubuntu",
			CPUCount: 0,
		},
	}

	out := renderContainers(containers)

	assert.Contains(t, out, "GPUs Used")
	assert.Contains(t, out, "train-env")
	assert.Contains(t, out, "0, 1")
	assert.Contains(t, out, "0-15")
	assert.Contains(t, out, "Unknown")
	assert.NotContains(t, out, "No running containers")
}

func TestRenderContainersEmpty(t *testing.T) {
	out := renderContainers(nil)

	assert.Contains(t, out, "No running containers")
}

// failingSource always errors, standing in for a machine without
// nvidia-smi.
type failingSource struct{}

func (failingSource) Devices(ctx context.Context) ([]gpu.Device, error) {
	return nil, assert.AnError
}

// emptyRunner reports no containers for any command.
type emptyRunner struct{}

func (emptyRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	return "", nil
}

func TestCollectContainersToleratesMissingGPUs(t *testing.T) {
	out, err := collectContainers(context.Background(), emptyRunner{}, failingSource{}, nil)

	require.NoError(t, err)
	assert.Contains(t, out, "No running containers")
}
