// Package cli implements the dgx command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to snapshot or TUI code in the other internal packages:
//
//	dgx graph       - Live per-GPU utilization and memory charts
//	dgx queue       - Slurm queue GPU allocations and what's left
//	dgx containers  - Docker containers and the GPUs/CPUs they hold
//	dgx init        - Create a .dgx.yaml config
//	dgx version     - Version information
//	dgx completion  - Shell completion scripts
//
// The snapshot commands (queue, containers) print once and exit by
// default; --interval re-runs them on a timer. queue --all walks every
// machine in the config over SSH, and a machine that can't be reached is
// reported in its own section without stopping the rest.
//
// Global flags (--config, --no-color) are defined on the root command.
// Command-specific flags are registered in init() next to their command.
package cli
