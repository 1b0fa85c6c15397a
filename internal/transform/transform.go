package transform

import (
	"encoding/json"
	"fmt"

	"github.com/deepcore-data/aeff.report/internal/binning"
)

// BinnedTransform maps one or more named input maps to one named output map
// through a dense array indexed by the output binning's bins.
//
// When SumInputs is set the listed inputs are added together before the
// array is applied; otherwise the transform has exactly one input.
type BinnedTransform struct {
	InputNames    []string        `json:"input_names"`
	OutputName    string          `json:"output_name"`
	InputBinning  binning.Binning `json:"input_binning"`
	OutputBinning binning.Binning `json:"output_binning"`
	Array         *Array          `json:"array"`
	Errors        *Array          `json:"errors,omitempty"`
	SumInputs     bool            `json:"sum_inputs"`
}

// NewBinnedTransform validates the structural invariants: a non-empty input
// list, exactly one input when not summing, and an array whose shape matches
// the output binning.
func NewBinnedTransform(inputNames []string, outputName string, in, out binning.Binning, arr *Array, sumInputs bool) (*BinnedTransform, error) {
	if len(inputNames) == 0 {
		return nil, fmt.Errorf("transform %q: no input names", outputName)
	}
	if !sumInputs && len(inputNames) != 1 {
		return nil, fmt.Errorf("transform %q: %d input names without summing", outputName, len(inputNames))
	}
	if arr == nil {
		return nil, fmt.Errorf("transform %q: nil array", outputName)
	}
	if !shapeEqual(arr.Shape, out.Shape()) {
		return nil, fmt.Errorf("transform %q: array shape %v does not match output binning shape %v",
			outputName, arr.Shape, out.Shape())
	}
	return &BinnedTransform{
		InputNames:    append([]string(nil), inputNames...),
		OutputName:    outputName,
		InputBinning:  in,
		OutputBinning: out,
		Array:         arr,
		SumInputs:     sumInputs,
	}, nil
}

// Apply combines the named input maps and multiplies by the transform
// array, returning a fresh output array. Inputs are summed first when
// SumInputs is set. Each named input must be present and match the array
// shape.
func (t *BinnedTransform) Apply(inputs map[string]*Array) (*Array, error) {
	acc := NewArray(t.Array.Shape...)
	for _, name := range t.InputNames {
		in, ok := inputs[name]
		if !ok {
			return nil, fmt.Errorf("transform %q: missing input %q", t.OutputName, name)
		}
		if err := acc.AddElem(in); err != nil {
			return nil, fmt.Errorf("transform %q: input %q: %w", t.OutputName, name, err)
		}
		if !t.SumInputs {
			break
		}
	}
	if err := acc.MulElem(t.Array); err != nil {
		return nil, err
	}
	return acc, nil
}

// Set is an ordered collection of transforms forming one complete stage
// output. At most one transform exists per (input name, output name) pair.
type Set struct {
	Transforms []*BinnedTransform `json:"transforms"`
}

// NewSet validates pair uniqueness and returns the set.
func NewSet(transforms []*BinnedTransform) (*Set, error) {
	seen := map[[2]string]bool{}
	for _, t := range transforms {
		for _, in := range t.InputNames {
			key := [2]string{in, t.OutputName}
			if seen[key] {
				return nil, fmt.Errorf("duplicate transform for input %q, output %q", in, t.OutputName)
			}
			seen[key] = true
		}
	}
	return &Set{Transforms: transforms}, nil
}

// OutputNames returns the output name of each transform, in order.
func (s *Set) OutputNames() []string {
	names := make([]string, len(s.Transforms))
	for i, t := range s.Transforms {
		names[i] = t.OutputName
	}
	return names
}

// MarshalJSON emits the set as a plain transform list.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Transforms)
}

// UnmarshalJSON accepts both the plain list form and the keyed object form.
func (s *Set) UnmarshalJSON(data []byte) error {
	var list []*BinnedTransform
	if err := json.Unmarshal(data, &list); err == nil {
		s.Transforms = list
		return nil
	}
	var obj struct {
		Transforms []*BinnedTransform `json:"transforms"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.Transforms = obj.Transforms
	return nil
}
