package main

import (
	"os"
	"path/filepath"

	yaml "github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// config holds the optional defaults loaded from ~/.shparserc.yaml. The
// core library (pkg/lexer, pkg/parser, pkg/expander) takes no
// configuration of its own; this exists only for the expand subcommand's
// convenience defaults.
type config struct {
	Env map[string]string `yaml:"env"`
}

// loadConfig reads ~/.shparserc.yaml if present. A missing file is not an
// error — it just means no extra defaults are supplied.
func loadConfig() (config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return config{}, errors.Wrap(err, "resolve home directory")
	}

	path := filepath.Join(home, ".shparserc.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config{}, nil
	}
	if err != nil {
		return config{}, errors.Wrapf(err, "read config %s", path)
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config{}, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}
