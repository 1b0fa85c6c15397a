// Package transform holds the dense-array data model for binned transforms:
// the Array type indexed by a binning's bins, the BinnedTransform tying an
// array to its input/output names and binnings, and the Set produced as a
// stage output.
package transform

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Array is a dense multi-dimensional array stored row-major.
type Array struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// NewArray allocates a zeroed array of the given shape.
func NewArray(shape ...int) *Array {
	n := 1
	for _, s := range shape {
		if s <= 0 {
			panic(fmt.Sprintf("transform: invalid shape %v", shape))
		}
		n *= s
	}
	return &Array{Shape: append([]int(nil), shape...), Data: make([]float64, n)}
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Data) }

// offset converts a multi-index to the flat row-major offset.
func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("transform: index rank %d against shape %v", len(idx), a.Shape))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= a.Shape[i] {
			panic(fmt.Sprintf("transform: index %v out of shape %v", idx, a.Shape))
		}
		off = off*a.Shape[i] + x
	}
	return off
}

// At returns the element at the multi-index.
func (a *Array) At(idx ...int) float64 { return a.Data[a.offset(idx)] }

// Set assigns the element at the multi-index.
func (a *Array) Set(v float64, idx ...int) { a.Data[a.offset(idx)] = v }

// Clone returns a deep copy. The result never aliases a's storage.
func (a *Array) Clone() *Array {
	out := &Array{Shape: append([]int(nil), a.Shape...), Data: make([]float64, len(a.Data))}
	copy(out.Data, a.Data)
	return out
}

// Scaled returns a fresh array equal to a multiplied element-wise by the
// scalar s. a is not modified.
func (a *Array) Scaled(s float64) *Array {
	out := a.Clone()
	floats.Scale(s, out.Data)
	return out
}

// DivElem divides a element-wise by b, in place.
func (a *Array) DivElem(b *Array) error {
	if !shapeEqual(a.Shape, b.Shape) {
		return fmt.Errorf("shape mismatch: %v / %v", a.Shape, b.Shape)
	}
	floats.Div(a.Data, b.Data)
	return nil
}

// MulElem multiplies a element-wise by b, in place.
func (a *Array) MulElem(b *Array) error {
	if !shapeEqual(a.Shape, b.Shape) {
		return fmt.Errorf("shape mismatch: %v * %v", a.Shape, b.Shape)
	}
	floats.Mul(a.Data, b.Data)
	return nil
}

// AddElem adds b to a element-wise, in place.
func (a *Array) AddElem(b *Array) error {
	if !shapeEqual(a.Shape, b.Shape) {
		return fmt.Errorf("shape mismatch: %v + %v", a.Shape, b.Shape)
	}
	floats.Add(a.Data, b.Data)
	return nil
}

// FromFlat wraps existing data with a shape, validating the element count.
func FromFlat(shape []int, data []float64) (*Array, error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	if n != len(data) {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, n, len(data))
	}
	return &Array{Shape: append([]int(nil), shape...), Data: data}, nil
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
