package config

import (
	"fmt"
	"strings"

	"github.com/yvan674/dgx-tools/internal/errors"
)

// Validate checks a loaded config for values the commands can't work
// with. Returns a CONFIG error describing the first problem found.
func Validate(cfg *Config) error {
	if cfg.Interval <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Refresh interval must be positive, got %g", cfg.Interval),
			"Set `interval` to a number of seconds greater than zero.")
	}

	if err := validateCapacity("capacity", cfg.Capacity); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for i, m := range cfg.Machines {
		if strings.TrimSpace(m.Alias) == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Machine %d has no SSH alias", i+1),
				"Every entry under `machines` needs an `alias`.")
		}
		if seen[m.Alias] {
			return errors.New(errors.ErrConfig,
				"Duplicate machine alias: "+m.Alias,
				"Each machine alias may appear only once.")
		}
		seen[m.Alias] = true

		if !m.Capacity.IsZero() {
			if err := validateCapacity("machine "+m.Alias, m.Capacity); err != nil {
				return err
			}
		}
	}

	for _, prefix := range cfg.MountPrefixes {
		if !strings.HasPrefix(prefix, "/") {
			return errors.New(errors.ErrConfig,
				"Mount prefix must be absolute: "+prefix,
				"Use absolute paths like /cluster/home under `mount_prefixes`.")
		}
	}

	return nil
}

func validateCapacity(where string, c Capacity) error {
	if c.CPUs <= 0 || c.MemoryGiB <= 0 || c.GPUs < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid %s: cpus=%d memory_gib=%g gpus=%d",
				where, c.CPUs, c.MemoryGiB, c.GPUs),
			"CPU and memory totals must be positive; GPU count can't be negative.")
	}
	return nil
}
