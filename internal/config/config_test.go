package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Analysis.Alpha != 0.05 {
		t.Errorf("Alpha = %v, want 0.05", cfg.Analysis.Alpha)
	}
	if cfg.Analysis.AlphaCCD != 0.01 {
		t.Errorf("AlphaCCD = %v, want 0.01", cfg.Analysis.AlphaCCD)
	}
	if cfg.Analysis.MeanDiffThreshold != 0.08 {
		t.Errorf("MeanDiffThreshold = %v, want 0.08", cfg.Analysis.MeanDiffThreshold)
	}
	if cfg.Analysis.ProteinWindow != 20 || cfg.Analysis.RNAWindow != 100 {
		t.Errorf("windows = %d/%d, want 20/100", cfg.Analysis.ProteinWindow, cfg.Analysis.RNAWindow)
	}
	if cfg.Analysis.Permutations != 10000 {
		t.Errorf("Permutations = %d, want 10000", cfg.Analysis.Permutations)
	}
	if cfg.Database.Enabled {
		t.Error("database should be disabled without DATABASE_URL")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ALPHA", "0.1")
	t.Setenv("PERMUTATIONS", "500")
	t.Setenv("DATABASE_URL", "postgres://localhost/ccd")
	t.Setenv("OUTPUT_DIR", "/tmp/ccd-out")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Analysis.Alpha != 0.1 {
		t.Errorf("Alpha = %v, want 0.1", cfg.Analysis.Alpha)
	}
	if cfg.Analysis.Permutations != 500 {
		t.Errorf("Permutations = %d, want 500", cfg.Analysis.Permutations)
	}
	if !cfg.Database.Enabled {
		t.Error("database should be enabled with DATABASE_URL")
	}
	if cfg.Outputs.Dir != "/tmp/ccd-out" {
		t.Errorf("output dir = %q", cfg.Outputs.Dir)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"ALPHA":        "1.5",
		"ALPHA_CCD":    "0",
		"PERMUTATIONS": "-1",
		"RNA_WINDOW":   "0",
		"WORKERS":      "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s should fail validation", key, val)
			}
		})
	}
}
