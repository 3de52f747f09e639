package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultPath = "./config.yaml"

// Load reads the configuration and validates all of it.
//
// Priority is ENV > YAML > env-default tags. The YAML path comes from
// CONFIG_PATH, falling back to ./config.yaml; a missing fallback file is not
// an error and leaves ENV and defaults only.
func Load() (*Config, error) {
	return load((*Config).Validate)
}

// LoadDatabase is Load for tools that only talk to the database
// (migrations, imports): lexicon data files are not required.
func LoadDatabase() (*Config, error) {
	return load((*Config).ValidateDatabase)
}

func load(validate func(*Config) error) (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func read() (*Config, error) {
	cfg := newDefault()

	path, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit || path == "" {
		path, explicit = defaultPath, false
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit || !errors.Is(statErr, fs.ErrNotExist):
		return nil, fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	return &cfg, nil
}
