// Package config holds the effective-area stage configuration. The schema
// is a flat JSON object with pointer fields so partial configs are safe:
// fields omitted from the file fall back to defaults via the Get* methods.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deepcore-data/aeff.report/internal/binning"
)

// ConfigurationError reports an invalid stage configuration: an unsupported
// particles value or a malformed grouping specification. Fatal; surfaced at
// construction.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// StageConfig is the effective-area stage configuration.
type StageConfig struct {
	// Particles selects the event class the stage processes. Only
	// "neutrinos" is supported; "muons" is recognized but fails fast.
	Particles *string `json:"particles,omitempty"`

	// TransformGroups is the grouping specification string: "+"-joined
	// category tokens, groups separated by commas or semicolons.
	TransformGroups *string `json:"transform_groups,omitempty"`

	// SumGroupedFlavints selects merged mode: one transform per group whose
	// inputs are summed at apply time. Unmerged mode keeps per-flavour
	// transform granularity for diagnostics.
	SumGroupedFlavints *bool `json:"sum_grouped_flavints,omitempty"`

	// InputNames is a comma-separated list of input map names. When omitted
	// the default neutrino sextet is used.
	InputNames *string `json:"input_names,omitempty"`

	// ErrorMethod enables per-bin statistical errors when set to "sumw2".
	ErrorMethod *string `json:"error_method,omitempty"`

	// WeightCol is the per-event weight column (default "weighted_aeff").
	WeightCol *string `json:"weight_col,omitempty"`

	// InputBinning and OutputBinning are the true- and
	// reconstructed-quantity binning descriptors.
	InputBinning  []binning.Dim `json:"input_binning,omitempty"`
	OutputBinning []binning.Dim `json:"output_binning,omitempty"`
}

// Helper functions to create pointers
func ptrString(v string) *string { return &v }
func ptrBool(v bool) *bool       { return &v }

// DefaultStageConfig returns the defaults as an explicit config.
func DefaultStageConfig() *StageConfig {
	return &StageConfig{
		Particles:          ptrString("neutrinos"),
		TransformGroups:    ptrString(""),
		SumGroupedFlavints: ptrBool(false),
		ErrorMethod:        ptrString(""),
		WeightCol:          ptrString("weighted_aeff"),
	}
}

// LoadStageConfig loads a StageConfig from a JSON file. The file is
// validated to have a .json extension and to be under the max file size.
// Fields omitted from the JSON retain their defaults, so partial configs
// are safe.
func LoadStageConfig(path string) (*StageConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &StageConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration values that can be checked without
// resolving groups or binnings. Muons are recognized but unsupported and
// fail here, fast.
func (c *StageConfig) Validate() error {
	switch p := c.GetParticles(); p {
	case "neutrinos":
	case "muons":
		return &ConfigurationError{Msg: `particles "muons" is not supported`}
	default:
		return &ConfigurationError{Msg: fmt.Sprintf("particles must be \"neutrinos\" or \"muons\", got %q", p)}
	}

	switch m := c.GetErrorMethod(); m {
	case "", "sumw2":
	default:
		return &ConfigurationError{Msg: fmt.Sprintf("error_method must be empty or \"sumw2\", got %q", m)}
	}

	if len(c.InputBinning) == 0 {
		return &ConfigurationError{Msg: "input_binning is required"}
	}
	if len(c.OutputBinning) == 0 {
		return &ConfigurationError{Msg: "output_binning is required"}
	}
	return nil
}

// GetParticles returns the particles value or the default.
func (c *StageConfig) GetParticles() string {
	if c.Particles == nil {
		return "neutrinos"
	}
	return *c.Particles
}

// GetTransformGroups returns the grouping specification or the default
// (empty: every category is its own group).
func (c *StageConfig) GetTransformGroups() string {
	if c.TransformGroups == nil {
		return ""
	}
	return *c.TransformGroups
}

// GetSumGroupedFlavints returns the mode switch or the default.
func (c *StageConfig) GetSumGroupedFlavints() bool {
	if c.SumGroupedFlavints == nil {
		return false
	}
	return *c.SumGroupedFlavints
}

// GetInputNames returns the comma-separated input names, or empty when the
// per-particles default should apply.
func (c *StageConfig) GetInputNames() string {
	if c.InputNames == nil {
		return ""
	}
	return *c.InputNames
}

// GetErrorMethod returns the error method or the default (disabled).
func (c *StageConfig) GetErrorMethod() string {
	if c.ErrorMethod == nil {
		return ""
	}
	return *c.ErrorMethod
}

// GetWeightCol returns the weight column or the default.
func (c *StageConfig) GetWeightCol() string {
	if c.WeightCol == nil {
		return "weighted_aeff"
	}
	return *c.WeightCol
}

// Hash returns a stable hex digest of the effective configuration (defaults
// applied), used with the event-source hash to key cached nominal
// transform sets.
func (c *StageConfig) Hash() (string, error) {
	canonical := struct {
		Particles          string        `json:"particles"`
		TransformGroups    string        `json:"transform_groups"`
		SumGroupedFlavints bool          `json:"sum_grouped_flavints"`
		InputNames         string        `json:"input_names"`
		ErrorMethod        string        `json:"error_method"`
		WeightCol          string        `json:"weight_col"`
		InputBinning       []binning.Dim `json:"input_binning"`
		OutputBinning      []binning.Dim `json:"output_binning"`
	}{
		Particles:          c.GetParticles(),
		TransformGroups:    c.GetTransformGroups(),
		SumGroupedFlavints: c.GetSumGroupedFlavints(),
		InputNames:         c.GetInputNames(),
		ErrorMethod:        c.GetErrorMethod(),
		WeightCol:          c.GetWeightCol(),
		InputBinning:       c.InputBinning,
		OutputBinning:      c.OutputBinning,
	}
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
