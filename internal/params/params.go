// Package params holds the small set of physics parameters the
// effective-area stage depends on, with the unit conversions the
// computation needs. Parameter values are hashed canonically so an external
// memoization layer can key rescaled outputs by parameter values.
package params

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/deepcore-data/aeff.report/internal/units"
)

// Quantity is a scalar with units.
type Quantity struct {
	Value float64 `json:"value"`
	Units string  `json:"units,omitempty"`
}

// InSeconds converts a time quantity to seconds.
func (q Quantity) InSeconds() (float64, error) {
	f, ok := units.Seconds(q.Units)
	if !ok {
		return 0, fmt.Errorf("quantity has units %q, want a time unit (%s)", q.Units, units.ValidTimeUnitsString())
	}
	return q.Value * f, nil
}

// Dimensionless returns the bare value, erroring if units are attached.
func (q Quantity) Dimensionless() (float64, error) {
	if q.Units != "" && q.Units != "dimensionless" {
		return 0, fmt.Errorf("quantity has units %q, want dimensionless", q.Units)
	}
	return q.Value, nil
}

// Set is the full parameter set of the effective-area stage.
type Set struct {
	// EventWeightSource identifies the event collection (a file path or
	// other opaque identifier). Changing it invalidates the nominal
	// transforms.
	EventWeightSource string `json:"event_weight_source"`

	// Livetime is the detector exposure; converted to seconds when applied.
	Livetime Quantity `json:"livetime"`

	// Scale is the dimensionless effective-area normalization.
	Scale Quantity `json:"scale"`

	// SpecialChannelNorm is the extra multiplicative correction applied to
	// the nutau_cc and nutaubar_cc output channels only.
	SpecialChannelNorm Quantity `json:"special_channel_norm"`
}

// Default returns the identity parameter set: one-second livetime, unit
// scale and correction.
func Default() *Set {
	return &Set{
		Livetime:           Quantity{Value: 1, Units: "s"},
		Scale:              Quantity{Value: 1},
		SpecialChannelNorm: Quantity{Value: 1},
	}
}

// Hash returns a stable hex digest of the parameter values for use as an
// external memoization key. Equal values in different but equivalent units
// hash equally (times are canonicalized to seconds).
func (s *Set) Hash() (string, error) {
	livetimeS, err := s.Livetime.InSeconds()
	if err != nil {
		return "", fmt.Errorf("livetime: %w", err)
	}
	scale, err := s.Scale.Dimensionless()
	if err != nil {
		return "", fmt.Errorf("scale: %w", err)
	}
	norm, err := s.SpecialChannelNorm.Dimensionless()
	if err != nil {
		return "", fmt.Errorf("special_channel_norm: %w", err)
	}

	h := sha256.New()
	fmt.Fprintf(h, "src=%s\n", s.EventWeightSource)
	fmt.Fprintf(h, "livetime_s=%s\n", strconv.FormatFloat(livetimeS, 'b', -1, 64))
	fmt.Fprintf(h, "scale=%s\n", strconv.FormatFloat(scale, 'b', -1, 64))
	fmt.Fprintf(h, "special_channel_norm=%s\n", strconv.FormatFloat(norm, 'b', -1, 64))
	return hex.EncodeToString(h.Sum(nil)), nil
}
