package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yvan674/dgx-tools/internal/errors"
)

const fileHeader = "# dgx-tools configuration\n# Generated by `dgx init`.\n"

// Save writes the config as YAML to path, creating parent directories as
// needed. Validates before writing so `dgx init` can't produce a config
// the other commands refuse to load.
func Save(cfg *Config, path string) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't serialize the config",
			"This shouldn't happen - please report this bug!")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't create the config directory "+dir,
				"Check directory permissions.")
		}
	}

	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write the config to "+path,
			"Check file permissions.")
	}

	return nil
}
