package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yvan674/dgx-tools/internal/errors"
)

const sampleConfig = `version: 1
interval: 2.5
capacity:
  cpus: 40
  memory_gib: 256
  gpus: 4
mount_prefixes:
  - /cluster/home
  - /cluster/data
  - /scratch
machines:
  - alias: dgx-01
    name: DGX One
  - alias: dgx-02
    capacity:
      cpus: 96
      memory_gib: 1024
      gpus: 16
`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ConfigFileName, sampleConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2.5, cfg.Interval)
	assert.Equal(t, 40, cfg.Capacity.CPUs)
	assert.InDelta(t, 256, cfg.Capacity.MemoryGiB, 0.001)
	assert.Equal(t, 4, cfg.Capacity.GPUs)
	assert.Len(t, cfg.MountPrefixes, 3)

	require.Len(t, cfg.Machines, 2)
	assert.Equal(t, "DGX One", cfg.Machines[0].DisplayName())
	assert.Equal(t, "dgx-02", cfg.Machines[1].DisplayName())
}

func TestLoadMergesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ConfigFileName, "version: 1\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	// Unspecified fields keep the DGX-2 defaults.
	assert.Equal(t, 80, cfg.Capacity.CPUs)
	assert.InDelta(t, 508, cfg.Capacity.MemoryGiB, 0.001)
	assert.Equal(t, 8, cfg.Capacity.GPUs)
	assert.Equal(t, 1.0, cfg.Interval)
	assert.Equal(t, []string{"/cluster/home", "/cluster/data"}, cfg.MountPrefixes)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ConfigFileName, "machines: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFindExplicit(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "custom.yaml", sampleConfig)

	found, err := Find(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestFindExplicitMissing(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFindCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ConfigFileName, sampleConfig)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	found, err := Find("")
	require.NoError(t, err)
	// Resolve symlinks; macOS tempdirs live under /private.
	wantReal, _ := filepath.EvalSymlinks(path)
	foundReal, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, wantReal, foundReal)
}

func TestFindParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ConfigFileName, sampleConfig)

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	found, err := Find("")
	require.NoError(t, err)
	wantReal, _ := filepath.EvalSymlinks(path)
	foundReal, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, wantReal, foundReal)
}

func TestLoadOrDefaultWithoutConfig(t *testing.T) {
	dir := t.TempDir()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Capacity, cfg.Capacity)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{
			"zero interval",
			func(c *Config) { c.Interval = 0 },
			"interval",
		},
		{
			"negative interval",
			func(c *Config) { c.Interval = -1 },
			"interval",
		},
		{
			"zero cpu capacity",
			func(c *Config) { c.Capacity.CPUs = 0 },
			"capacity",
		},
		{
			"machine without alias",
			func(c *Config) { c.Machines = []Machine{{Name: "nameless"}} },
			"alias",
		},
		{
			"duplicate alias",
			func(c *Config) {
				c.Machines = []Machine{{Alias: "dgx-01"}, {Alias: "dgx-01"}}
			},
			"Duplicate",
		},
		{
			"relative mount prefix",
			func(c *Config) { c.MountPrefixes = append(c.MountPrefixes, "cluster/home") },
			"absolute",
		},
		{
			"bad machine capacity",
			func(c *Config) {
				c.Machines = []Machine{{Alias: "dgx-01", Capacity: Capacity{CPUs: -1, MemoryGiB: 1, GPUs: 1}}}
			},
			"dgx-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCapacityFor(t *testing.T) {
	cfg := DefaultConfig()

	plain := Machine{Alias: "dgx-01"}
	assert.Equal(t, cfg.Capacity, cfg.CapacityFor(plain))

	custom := Machine{Alias: "dgx-02", Capacity: Capacity{CPUs: 96, MemoryGiB: 1024, GPUs: 16}}
	assert.Equal(t, custom.Capacity, cfg.CapacityFor(custom))
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Machines = []Machine{{Alias: "dgx-01", Name: "DGX One"}}

	path := filepath.Join(t.TempDir(), "sub", ConfigFileName)
	require.NoError(t, Save(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# dgx-tools configuration")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Capacity, loaded.Capacity)
	require.Len(t, loaded.Machines, 1)
	assert.Equal(t, "dgx-01", loaded.Machines[0].Alias)
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interval = -1

	err := Save(cfg, filepath.Join(t.TempDir(), ConfigFileName))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
