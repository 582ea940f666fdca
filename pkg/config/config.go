// Package config loads the repository's recognized configuration
// options (§6.4) from a YAML file, the same way the teacher's
// cmd/warren apply command parses its manifests with yaml.v3.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RefIntPolicy is the referential-integrity enforcement mode.
type RefIntPolicy string

const (
	RefIntStrict  RefIntPolicy = "strict"
	RefIntLenient RefIntPolicy = "lenient"
	RefIntOff     RefIntPolicy = "off"
)

// Config is the full set of options recognized by the repository
// core (§6.4). Fields not present in a loaded file keep their
// Default-populated values.
type Config struct {
	RDFStore struct {
		Location string `yaml:"location"`
	} `yaml:"rdf_store"`

	BinaryStore struct {
		Path                 string `yaml:"path"`
		PairtreeBranchLength int    `yaml:"pairtree_branch_length"`
		PairtreeBranches     int    `yaml:"pairtree_branches"`
	} `yaml:"binary_store"`

	Digest struct {
		Algo string `yaml:"algo"`
	} `yaml:"digest"`

	ReferentialIntegrity RefIntPolicy `yaml:"referential_integrity"`
	LegacyPairtreeSplit  bool         `yaml:"legacy_pairtree_split"`
	Workers              int          `yaml:"workers"`
}

// Default returns a Config populated with the defaults the original
// layout and binary store packages fall back to when a setting is
// absent from the loaded file.
func Default() Config {
	var c Config
	c.RDFStore.Location = "/var/lib/lsupd/rdf"
	c.BinaryStore.Path = "/var/lib/lsupd/binaries"
	c.BinaryStore.PairtreeBranchLength = 4
	c.BinaryStore.PairtreeBranches = 4
	c.Digest.Algo = "sha256"
	c.ReferentialIntegrity = RefIntLenient
	c.LegacyPairtreeSplit = false
	c.Workers = 126
	return c
}

// Load reads and parses a YAML configuration file, starting from
// Default() and overriding whatever the file specifies.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the recognized options hold sane values.
func (c Config) Validate() error {
	switch c.ReferentialIntegrity {
	case RefIntStrict, RefIntLenient, RefIntOff:
	default:
		return fmt.Errorf("config: referential_integrity must be strict, lenient, or off, got %q", c.ReferentialIntegrity)
	}
	if c.BinaryStore.PairtreeBranchLength <= 0 {
		return fmt.Errorf("config: pairtree_branch_length must be positive")
	}
	if c.BinaryStore.PairtreeBranches < 0 {
		return fmt.Errorf("config: pairtree_branches must not be negative")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: workers must be positive")
	}
	return nil
}
