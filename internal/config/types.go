package config

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .dgx.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Machines are the SSH aliases queried by `dgx queue -a`, in the
	// order they should be printed.
	Machines []Machine `yaml:"machines" mapstructure:"machines"`

	// Capacity is the schedulable total of the local machine, used for
	// the "Available resources" section.
	Capacity Capacity `yaml:"capacity" mapstructure:"capacity"`

	// MountPrefixes are the cluster filesystem roots whose next path
	// element names the user owning a container mount.
	MountPrefixes []string `yaml:"mount_prefixes" mapstructure:"mount_prefixes"`

	// Interval is the default refresh interval in seconds for the
	// grapher and for watch mode.
	Interval float64 `yaml:"interval" mapstructure:"interval"`
}

// Machine is one remote DGX reachable over SSH.
type Machine struct {
	// Alias is the SSH destination: a ~/.ssh/config alias, hostname, or
	// user@hostname.
	Alias string `yaml:"alias" mapstructure:"alias"`

	// Name is an optional display name; defaults to the alias.
	Name string `yaml:"name" mapstructure:"name"`

	// Capacity overrides the machine's schedulable total. Zero values
	// fall back to the top-level capacity.
	Capacity Capacity `yaml:"capacity" mapstructure:"capacity"`
}

// DisplayName returns the name shown in per-machine headers.
func (m Machine) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Alias
}

// Capacity is the schedulable resource total of one machine.
type Capacity struct {
	CPUs      int     `yaml:"cpus" mapstructure:"cpus"`
	MemoryGiB float64 `yaml:"memory_gib" mapstructure:"memory_gib"`
	GPUs      int     `yaml:"gpus" mapstructure:"gpus"`
}

// IsZero reports whether no capacity was configured.
func (c Capacity) IsZero() bool {
	return c.CPUs == 0 && c.MemoryGiB == 0 && c.GPUs == 0
}

// DefaultConfig returns a Config with sensible defaults. The capacity
// matches a DGX-2.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Capacity: Capacity{
			CPUs:      80,
			MemoryGiB: 508,
			GPUs:      8,
		},
		MountPrefixes: []string{"/cluster/home", "/cluster/data"},
		Interval:      1,
	}
}

// CapacityFor resolves the capacity for a machine, falling back to the
// top-level capacity when the machine has none of its own.
func (c *Config) CapacityFor(m Machine) Capacity {
	if m.Capacity.IsZero() {
		return c.Capacity
	}
	return m.Capacity
}
