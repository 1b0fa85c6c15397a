// Package binning represents named, unit-aware bin edges and the
// canonicalization rules the effective-area computation depends on: which
// dimensions are recognized, what unit each must be converted to, how
// per-bin volumes are computed, and the compensation factor for physical
// dimensions an input binning leaves out.
package binning

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/deepcore-data/aeff.report/internal/units"
)

// Recognized computational input dimensions.
const (
	DimEnergy  = "true_energy"
	DimCosZen  = "true_coszen"
	DimAzimuth = "true_azimuth"
)

// compUnits maps each recognized input dimension to the unit the
// computation is performed in. Sum-of-OneWeights-in-bin converts to an
// average effective area only with these exact units. A blank unit means
// the dimension is dimensionless.
var compUnits = map[string]string{
	DimEnergy:  "GeV",
	DimCosZen:  "",
	DimAzimuth: "rad",
}

// Dim is one named dimension of a binning: a unit and strictly increasing
// bin edges (at least two edges, so at least one bin).
type Dim struct {
	Name  string    `json:"name"`
	Units string    `json:"units,omitempty"`
	Edges []float64 `json:"edges"`
}

// NumBins returns the number of bins in the dimension.
func (d Dim) NumBins() int { return len(d.Edges) - 1 }

func (d Dim) validate() error {
	if d.Name == "" {
		return fmt.Errorf("dimension has empty name")
	}
	if len(d.Edges) < 2 {
		return fmt.Errorf("dimension %q: need at least 2 bin edges, got %d", d.Name, len(d.Edges))
	}
	for i := 1; i < len(d.Edges); i++ {
		if !(d.Edges[i] > d.Edges[i-1]) {
			return fmt.Errorf("dimension %q: bin edges not strictly increasing at index %d", d.Name, i)
		}
	}
	return nil
}

// Binning is an ordered sequence of dimensions.
type Binning struct {
	Dims []Dim `json:"dims"`
}

// New validates the dimensions and returns a Binning.
func New(dims ...Dim) (Binning, error) {
	seen := map[string]bool{}
	for _, d := range dims {
		if err := d.validate(); err != nil {
			return Binning{}, err
		}
		if seen[d.Name] {
			return Binning{}, fmt.Errorf("duplicate dimension %q", d.Name)
		}
		seen[d.Name] = true
	}
	return Binning{Dims: dims}, nil
}

// Names returns the dimension names in order.
func (b Binning) Names() []string {
	names := make([]string, len(b.Dims))
	for i, d := range b.Dims {
		names[i] = d.Name
	}
	return names
}

// Has reports whether the binning contains the named dimension.
func (b Binning) Has(name string) bool {
	for _, d := range b.Dims {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Shape returns the per-dimension bin counts.
func (b Binning) Shape() []int {
	shape := make([]int, len(b.Dims))
	for i, d := range b.Dims {
		shape[i] = d.NumBins()
	}
	return shape
}

// Size returns the total bin count (product of the shape).
func (b Binning) Size() int {
	n := 1
	for _, d := range b.Dims {
		n *= d.NumBins()
	}
	return n
}

// Edges returns the per-dimension edge slices, in order.
func (b Binning) Edges() [][]float64 {
	edges := make([][]float64, len(b.Dims))
	for i, d := range b.Dims {
		edges[i] = d.Edges
	}
	return edges
}

// ValidationError reports an input binning that cannot drive the
// computation: an unrecognized dimension or a missing required one. Fatal;
// indicates a caller configuration defect.
type ValidationError struct {
	Msg  string
	Dims []string // offending dimension names, sorted
}

func (e *ValidationError) Error() string {
	if len(e.Dims) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, strings.Join(e.Dims, ", "))
}

// ValidateInput checks that an input (true-quantity) binning contains the
// energy dimension and nothing outside the recognized computational set.
func ValidateInput(b Binning) error {
	if !b.Has(DimEnergy) {
		return &ValidationError{Msg: fmt.Sprintf("input binning must contain %q dimension, but does not", DimEnergy)}
	}
	var excess []string
	for _, d := range b.Dims {
		if _, ok := compUnits[d.Name]; !ok {
			excess = append(excess, d.Name)
		}
	}
	if len(excess) > 0 {
		sort.Strings(excess)
		return &ValidationError{Msg: "input binning has extra dimension(s)", Dims: excess}
	}
	return nil
}

// outputDimName maps a true-quantity dimension to its reconstructed
// counterpart ("true_energy" -> "reco_energy").
func outputDimName(name string) string {
	return "reco_" + strings.TrimPrefix(name, "true_")
}

// CheckCorrespondence verifies that input and output binnings line up
// dimension by dimension: same count, matching base names in order, and
// equal bin counts, so the histogram built over the output edges can be
// normalized by the input bin volumes.
func CheckCorrespondence(in, out Binning) error {
	if len(in.Dims) != len(out.Dims) {
		return fmt.Errorf("input binning has %d dimensions but output binning has %d", len(in.Dims), len(out.Dims))
	}
	for i, d := range in.Dims {
		want := outputDimName(d.Name)
		od := out.Dims[i]
		if od.Name != want {
			return fmt.Errorf("output dimension %d is %q, want %q to match input %q", i, od.Name, want, d.Name)
		}
		if od.NumBins() != d.NumBins() {
			return fmt.Errorf("dimension %q has %d bins but %q has %d", d.Name, d.NumBins(), od.Name, od.NumBins())
		}
	}
	return nil
}

// ToComputational converts every dimension present in the binning to its
// canonical computational unit. Dimensions the binning does not contain are
// never fabricated. Output (reco_*) dimensions are converted by their
// true_* counterpart's rule.
func ToComputational(b Binning) (Binning, error) {
	dims := make([]Dim, len(b.Dims))
	for i, d := range b.Dims {
		key := d.Name
		if strings.HasPrefix(key, "reco_") {
			key = "true_" + strings.TrimPrefix(key, "reco_")
		}
		target, ok := compUnits[key]
		if !ok {
			return Binning{}, fmt.Errorf("dimension %q has no computational unit", d.Name)
		}
		factor, err := unitFactor(key, d.Units)
		if err != nil {
			return Binning{}, err
		}
		nd := Dim{Name: d.Name, Units: target, Edges: make([]float64, len(d.Edges))}
		for j, e := range d.Edges {
			nd.Edges[j] = e * factor
		}
		dims[i] = nd
	}
	return Binning{Dims: dims}, nil
}

// unitFactor returns the multiplicative factor converting values of the
// given dimension from unit `from` to the canonical computational unit.
func unitFactor(dim, from string) (float64, error) {
	switch dim {
	case DimEnergy:
		if from == "" {
			return 0, fmt.Errorf("dimension %q requires units (%s)", dim, units.ValidEnergyUnitsString())
		}
		if f, ok := units.EnergyToGeV(from); ok {
			return f, nil
		}
		return 0, fmt.Errorf("dimension %q: unknown units %q (want %s)", dim, from, units.ValidEnergyUnitsString())
	case DimAzimuth:
		if from == "" {
			return 0, fmt.Errorf("dimension %q requires units (rad or deg)", dim)
		}
		if f, ok := units.AngleToRad(from); ok {
			return f, nil
		}
		return 0, fmt.Errorf("dimension %q: unknown units %q (want rad or deg)", dim, from)
	case DimCosZen:
		if from == "" || from == "dimensionless" {
			return 1, nil
		}
		return 0, fmt.Errorf("dimension %q is dimensionless, got units %q", dim, from)
	default:
		return 0, fmt.Errorf("no unit table for dimension %q", dim)
	}
}

// MissingDimsVolume returns the scalar factor compensating for recognized
// dimensions the input binning omits. The per-event weights are integrated
// over the full range of any unbinned dimension, so the bin-volume
// normalization must include that full range: 2*pi for azimuth, 2 for the
// [-1, 1] cos-zenith range.
func MissingDimsVolume(b Binning) float64 {
	vol := 1.0
	if !b.Has(DimAzimuth) {
		vol *= 2 * math.Pi
	}
	if !b.Has(DimCosZen) {
		vol *= 2
	}
	return vol
}

// BinVolumes returns the flattened, row-major per-bin volumes of the
// binning: the product of per-dimension bin widths, unit-stripped. The
// result has length b.Size().
func BinVolumes(b Binning) []float64 {
	widths := make([][]float64, len(b.Dims))
	for i, d := range b.Dims {
		w := make([]float64, d.NumBins())
		for j := 0; j < d.NumBins(); j++ {
			w[j] = d.Edges[j+1] - d.Edges[j]
		}
		widths[i] = w
	}

	vols := make([]float64, b.Size())
	idx := make([]int, len(b.Dims))
	for k := range vols {
		v := 1.0
		for i := range widths {
			v *= widths[i][idx[i]]
		}
		vols[k] = v
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(widths[i]) {
				break
			}
			idx[i] = 0
		}
	}
	return vols
}
