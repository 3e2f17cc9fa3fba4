package experiment

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaultsForMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	content := "name: churn-small\nnode_count: 50\nkey_count: 100\nseed: 13\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "churn-small" {
		t.Errorf("Name = %q, want %q", cfg.Name, "churn-small")
	}
	if cfg.NodeCount != 50 {
		t.Errorf("NodeCount = %d, want 50", cfg.NodeCount)
	}
	if cfg.Seed != 13 {
		t.Errorf("Seed = %d, want 13", cfg.Seed)
	}
	// Untouched fields should carry Default()'s values.
	if cfg.Bits != 160 {
		t.Errorf("Bits = %d, want default 160", cfg.Bits)
	}
	if cfg.SuccessorListSize != 16 {
		t.Errorf("SuccessorListSize = %d, want default 16", cfg.SuccessorListSize)
	}
	if cfg.Replicates != 1 {
		t.Errorf("Replicates = %d, want default 1", cfg.Replicates)
	}
}

func TestValidateRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero bits", Config{Bits: 0, SuccessorListSize: 16, Replicates: 1, BaseLatency: 1, StabilizeInterval: 1}},
		{"negative node count", Config{Bits: 8, SuccessorListSize: 16, Replicates: 1, NodeCount: -1, BaseLatency: 1, StabilizeInterval: 1}},
		{"zero replicates", Config{Bits: 8, SuccessorListSize: 16, Replicates: 0, BaseLatency: 1, StabilizeInterval: 1}},
		{"fault rate too high", Config{Bits: 8, SuccessorListSize: 16, Replicates: 1, FaultRate: 1, BaseLatency: 1, StabilizeInterval: 1}},
		{"negative fault rate", Config{Bits: 8, SuccessorListSize: 16, Replicates: 1, FaultRate: -0.1, BaseLatency: 1, StabilizeInterval: 1}},
		{"zero base latency", Config{Bits: 8, SuccessorListSize: 16, Replicates: 1, BaseLatency: 0, StabilizeInterval: 1}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Errorf("expected Validate() to reject %+v", tt.cfg)
			}
		})
	}
}

func TestValidateAcceptsDefault(t *testing.T) {
	cfg := Default()
	cfg.NodeCount = 10
	cfg.KeyCount = 100
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected Default() (with counts filled in) to validate, got: %v", err)
	}
}
