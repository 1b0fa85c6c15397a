package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/deepcore-data/aeff.report/internal/binning"
)

func TestDefaultStageConfig(t *testing.T) {
	cfg := DefaultStageConfig()
	if cfg.GetParticles() != "neutrinos" {
		t.Errorf("GetParticles() = %q, want neutrinos", cfg.GetParticles())
	}
	if cfg.GetSumGroupedFlavints() != false {
		t.Errorf("GetSumGroupedFlavints() = true, want false")
	}
	if cfg.GetWeightCol() != "weighted_aeff" {
		t.Errorf("GetWeightCol() = %q", cfg.GetWeightCol())
	}
	if cfg.GetErrorMethod() != "" {
		t.Errorf("GetErrorMethod() = %q, want empty", cfg.GetErrorMethod())
	}
	if cfg.GetTransformGroups() != "" {
		t.Errorf("GetTransformGroups() = %q, want empty", cfg.GetTransformGroups())
	}
	if cfg.GetInputNames() != "" {
		t.Errorf("GetInputNames() = %q, want empty", cfg.GetInputNames())
	}
}

func TestLoadStageConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "stage.json")

	testJSON := `{
  "particles": "neutrinos",
  "transform_groups": "nue_cc+nuebar_cc",
  "sum_grouped_flavints": true,
  "input_names": "nue,nuebar",
  "input_binning": [{"name": "true_energy", "units": "GeV", "edges": [1, 10, 100]}],
  "output_binning": [{"name": "reco_energy", "units": "GeV", "edges": [1, 10, 100]}]
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadStageConfig(configPath)
	if err != nil {
		t.Fatalf("LoadStageConfig: %v", err)
	}
	if cfg.GetTransformGroups() != "nue_cc+nuebar_cc" {
		t.Errorf("transform_groups = %q", cfg.GetTransformGroups())
	}
	if !cfg.GetSumGroupedFlavints() {
		t.Error("sum_grouped_flavints should be true")
	}
	if len(cfg.InputBinning) != 1 || cfg.InputBinning[0].Name != "true_energy" {
		t.Errorf("input_binning = %+v", cfg.InputBinning)
	}

	if _, err := LoadStageConfig(filepath.Join(tmpDir, "stage.yaml")); err == nil {
		t.Error("non-json extension should fail")
	}
	if _, err := LoadStageConfig(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func validConfig() *StageConfig {
	cfg := DefaultStageConfig()
	cfg.InputBinning = []binning.Dim{{Name: "true_energy", Units: "GeV", Edges: []float64{1, 10}}}
	cfg.OutputBinning = []binning.Dim{{Name: "reco_energy", Units: "GeV", Edges: []float64{1, 10}}}
	return cfg
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	var cerr *ConfigurationError

	cfg := validConfig()
	cfg.Particles = ptrString("muons")
	if err := cfg.Validate(); !errors.As(err, &cerr) {
		t.Errorf("muons: got %v, want ConfigurationError", err)
	}

	cfg = validConfig()
	cfg.Particles = ptrString("tachyons")
	if err := cfg.Validate(); !errors.As(err, &cerr) {
		t.Errorf("unknown particles: got %v, want ConfigurationError", err)
	}

	cfg = validConfig()
	cfg.ErrorMethod = ptrString("bootstrap")
	if err := cfg.Validate(); !errors.As(err, &cerr) {
		t.Errorf("bad error_method: got %v, want ConfigurationError", err)
	}

	cfg = validConfig()
	cfg.InputBinning = nil
	if err := cfg.Validate(); !errors.As(err, &cerr) {
		t.Errorf("missing input_binning: got %v, want ConfigurationError", err)
	}
}

func TestHashTracksEffectiveConfig(t *testing.T) {
	a := validConfig()
	b := validConfig()
	ha, err := a.Hash()
	if err != nil {
		t.Fatal(err)
	}
	hb, err := b.Hash()
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Error("identical configs must hash equally")
	}

	// Explicit defaults hash the same as omitted fields.
	b.SumGroupedFlavints = nil
	hb, _ = b.Hash()
	if ha != hb {
		t.Error("omitted field with default value must not change the hash")
	}

	b.TransformGroups = ptrString("nue_cc+nuebar_cc")
	hb, _ = b.Hash()
	if ha == hb {
		t.Error("changed grouping must change the hash")
	}
}
