package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/yvan674/dgx-tools/internal/config"
	"github.com/yvan674/dgx-tools/internal/errors"
	"github.com/yvan674/dgx-tools/internal/ui"
)

// initCommand interactively creates ./.dgx.yaml.
func initCommand(force bool) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !force {
		var overwrite bool

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)

		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}

		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	defaults := config.DefaultConfig()
	cpus := strconv.Itoa(defaults.Capacity.CPUs)
	memory := strconv.FormatFloat(defaults.Capacity.MemoryGiB, 'f', -1, 64)
	gpus := strconv.Itoa(defaults.Capacity.GPUs)
	interval := strconv.FormatFloat(defaults.Interval, 'f', -1, 64)
	var aliases string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("CPU capacity").
				Description("Total CPUs Slurm can allocate on one machine").
				Value(&cpus).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Memory capacity (GiB)").
				Description("Total memory Slurm can allocate on one machine").
				Value(&memory).
				Validate(validatePositiveFloat),
			huh.NewInput().
				Title("GPU capacity").
				Description("Number of GPUs per machine").
				Value(&gpus).
				Validate(validateNonNegativeInt),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Machine aliases (optional)").
				Description("Comma-separated SSH config aliases for `dgx queue --all`").
				Placeholder("dgx-01, dgx-02 (leave empty to skip)").
				Value(&aliases),
			huh.NewInput().
				Title("Default refresh interval (seconds)").
				Value(&interval).
				Validate(validatePositiveFloat),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility")
	}

	cfg := defaults
	cfg.Capacity.CPUs, _ = strconv.Atoi(strings.TrimSpace(cpus))
	cfg.Capacity.MemoryGiB, _ = strconv.ParseFloat(strings.TrimSpace(memory), 64)
	cfg.Capacity.GPUs, _ = strconv.Atoi(strings.TrimSpace(gpus))
	cfg.Interval, _ = strconv.ParseFloat(strings.TrimSpace(interval), 64)

	for _, alias := range strings.Split(aliases, ",") {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}
		cfg.Machines = append(cfg.Machines, config.Machine{Alias: alias})
	}

	if err := config.Save(cfg, configPath); err != nil {
		return err
	}

	fmt.Printf("%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Println("Next steps:")
	fmt.Println("  dgx graph       - Live GPU utilization charts")
	fmt.Println("  dgx queue       - Slurm queue and remaining resources")
	fmt.Println("  dgx containers  - GPU allocation per container")

	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative integer")
	}
	return nil
}

func validatePositiveFloat(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}
