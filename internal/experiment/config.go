// Package experiment holds the scenario configuration and churn-generation
// helpers that sit just outside the simulator core (spec.md §1: experiment
// drivers are deliberately external collaborators). The core never imports
// this package; this package only imports internal/domain.
package experiment

import (
	"fmt"
	"os"

	"chordsim/internal/domain"

	"gopkg.in/yaml.v3"
)

// Config is a named scenario definition loaded from YAML, mirroring the
// teacher's config.LoadConfig/cfg.ValidateConfig flow referenced by
// cmd/node/main.go, generalized from per-node deployment config to
// per-run experiment parameters (node/key/replicate counts, seed, fault
// rate, churn rates, horizon).
type Config struct {
	Name string `yaml:"name"`

	// Bits is the identifier space width (m). Load fills in Default()'s
	// 160 when the file omits it; Validate rejects zero.
	Bits int `yaml:"bits"`

	// SuccessorListSize is r, the fault-tolerance successor-list length.
	SuccessorListSize int `yaml:"successor_list_size"`

	BaseLatency       float64 `yaml:"base_latency"`
	StabilizeInterval float64 `yaml:"stabilize_interval"`
	WarmupEnd         float64 `yaml:"warmup_end"`

	Seed        int64 `yaml:"seed"`
	NodeCount   int   `yaml:"node_count"`
	KeyCount    int   `yaml:"key_count"`
	Replicates  int   `yaml:"replicates"`
	VirtualNode int   `yaml:"virtual_nodes_per_host"`

	// FaultRate is the fraction of nodes failed in a mass-failure
	// scenario (exp_3). Must be in [0, 1).
	FaultRate float64 `yaml:"fault_rate"`

	// JoinRate, FailRate, LookupRate are Poisson arrival rates (events
	// per simulated second) for a churn scenario (exp_4).
	JoinRate   float64 `yaml:"join_rate"`
	FailRate   float64 `yaml:"fail_rate"`
	LookupRate float64 `yaml:"lookup_rate"`

	// Horizon is the simulated-second duration to run a churn scenario.
	Horizon float64 `yaml:"horizon"`
}

// Default returns a Config carrying spec.md §6's defaults, with
// NodeCount/KeyCount/Replicates left at zero for the caller to fill in.
func Default() Config {
	return Config{
		Name:              "default",
		Bits:              160,
		SuccessorListSize: 16,
		BaseLatency:       0.005,
		StabilizeInterval: 1,
		WarmupEnd:         10,
		Seed:              42,
		Replicates:        1,
	}
}

// Load reads and parses a scenario definition from a YAML file, applying
// Default() for any zero-valued field the file doesn't set.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects a scenario whose parameters can't produce a legal
// identifier Space or describe a sane experiment, mirroring the
// teacher's cfg.ValidateConfig() gate before a run starts.
func (c Config) Validate() error {
	if _, err := domain.NewSpace(c.Bits, c.SuccessorListSize); err != nil {
		return fmt.Errorf("invalid config %q: %w", c.Name, err)
	}
	if c.NodeCount < 0 {
		return fmt.Errorf("invalid config %q: node_count must be >= 0", c.Name)
	}
	if c.KeyCount < 0 {
		return fmt.Errorf("invalid config %q: key_count must be >= 0", c.Name)
	}
	if c.Replicates <= 0 {
		return fmt.Errorf("invalid config %q: replicates must be > 0", c.Name)
	}
	if c.FaultRate < 0 || c.FaultRate >= 1 {
		return fmt.Errorf("invalid config %q: fault_rate must be in [0, 1)", c.Name)
	}
	if c.BaseLatency <= 0 {
		return fmt.Errorf("invalid config %q: base_latency must be > 0", c.Name)
	}
	if c.StabilizeInterval <= 0 {
		return fmt.Errorf("invalid config %q: stabilize_interval must be > 0", c.Name)
	}
	return nil
}

// Space constructs the domain.Space this config describes.
func (c Config) Space() (domain.Space, error) {
	return domain.NewSpace(c.Bits, c.SuccessorListSize)
}
