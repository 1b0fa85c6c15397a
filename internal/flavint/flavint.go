// Package flavint models neutrino flavour + interaction-type categories and
// the grouping of those categories used when computing binned transforms.
//
// A FlavInt is an atomic label such as "nue_cc" or "numubar_nc". A Group is
// a set of FlavInts that are histogrammed together. Groups are value types
// backed by a bitmask so membership and intersection tests are constant
// time, and iteration order is always the fixed enum order.
package flavint

import (
	"fmt"
	"strings"
)

// Flav identifies a neutrino flavour (or antiflavour).
type Flav uint8

const (
	NuE Flav = iota
	NuMu
	NuTau
	NuEBar
	NuMuBar
	NuTauBar

	numFlavs = 6
)

var flavNames = [numFlavs]string{"nue", "numu", "nutau", "nuebar", "numubar", "nutaubar"}

func (f Flav) String() string {
	if int(f) >= numFlavs {
		return fmt.Sprintf("Flav(%d)", uint8(f))
	}
	return flavNames[f]
}

// IsBar reports whether f is an antiflavour.
func (f Flav) IsBar() bool { return f >= NuEBar }

// IntType identifies the interaction channel of an event class.
type IntType uint8

const (
	CC IntType = iota // charged current
	NC                // neutral current

	numIntTypes = 2
)

var intNames = [numIntTypes]string{"cc", "nc"}

func (it IntType) String() string {
	if int(it) >= numIntTypes {
		return fmt.Sprintf("IntType(%d)", uint8(it))
	}
	return intNames[it]
}

// FlavInt is an atomic flavour + interaction-type category. The twelve
// values are ordered flavour-major, so NuE/CC < NuE/NC < NuMu/CC < ...
type FlavInt uint8

// NumFlavInts is the size of the full category space.
const NumFlavInts = numFlavs * numIntTypes

// NewFlavInt combines a flavour and an interaction type.
func NewFlavInt(f Flav, it IntType) FlavInt {
	return FlavInt(uint8(f)*numIntTypes + uint8(it))
}

// Flav returns the flavour component.
func (fi FlavInt) Flav() Flav { return Flav(uint8(fi) / numIntTypes) }

// IntType returns the interaction-type component.
func (fi FlavInt) IntType() IntType { return IntType(uint8(fi) % numIntTypes) }

func (fi FlavInt) String() string {
	if int(fi) >= NumFlavInts {
		return fmt.Sprintf("FlavInt(%d)", uint8(fi))
	}
	return fi.Flav().String() + "_" + fi.IntType().String()
}

// ParseFlavInt parses an exact category name such as "nue_cc" or
// "nutaubar_nc". Whitespace is not tolerated; use ParseGroup for the richer
// token grammar.
func ParseFlavInt(s string) (FlavInt, error) {
	us := strings.LastIndex(s, "_")
	if us < 0 {
		return 0, fmt.Errorf("category %q: missing interaction-type suffix", s)
	}
	f, ok := flavByName(s[:us])
	if !ok {
		return 0, fmt.Errorf("category %q: unknown flavour %q", s, s[:us])
	}
	it, ok := intByName(s[us+1:])
	if !ok {
		return 0, fmt.Errorf("category %q: unknown interaction type %q", s, s[us+1:])
	}
	return NewFlavInt(f, it), nil
}

func flavByName(name string) (Flav, bool) {
	for i, n := range flavNames {
		if n == name {
			return Flav(i), true
		}
	}
	return 0, false
}

func intByName(name string) (IntType, bool) {
	for i, n := range intNames {
		if n == name {
			return IntType(i), true
		}
	}
	return 0, false
}
