// Package units provides shared constants and conversion tables for the
// physical units accepted at the computation's boundaries. Internally all
// energies are GeV, all angles radians, all times seconds.
package units

import "math"

// Energy unit constants
const (
	MeV = "MeV"
	GeV = "GeV"
	TeV = "TeV"
	PeV = "PeV"
)

// Angle unit constants
const (
	Rad = "rad"
	Deg = "deg"
)

// Time unit constants. Yr is the Julian year.
const (
	Ns  = "ns"
	Us  = "us"
	Ms  = "ms"
	S   = "s"
	Sec = "sec"
	Min = "min"
	H   = "h"
	D   = "d"
	Yr  = "yr"
)

var energyToGeV = map[string]float64{
	MeV: 1e-3,
	GeV: 1,
	TeV: 1e3,
	PeV: 1e6,
}

var angleToRad = map[string]float64{
	Rad: 1,
	Deg: math.Pi / 180,
}

var timeToSeconds = map[string]float64{
	Ns:  1e-9,
	Us:  1e-6,
	Ms:  1e-3,
	S:   1,
	Sec: 1,
	Min: 60,
	H:   3600,
	D:   86400,
	Yr:  365.25 * 86400,
}

// EnergyToGeV returns the factor converting the given energy unit to GeV.
func EnergyToGeV(unit string) (float64, bool) {
	f, ok := energyToGeV[unit]
	return f, ok
}

// AngleToRad returns the factor converting the given angle unit to radians.
func AngleToRad(unit string) (float64, bool) {
	f, ok := angleToRad[unit]
	return f, ok
}

// Seconds returns the factor converting the given time unit to seconds.
func Seconds(unit string) (float64, bool) {
	f, ok := timeToSeconds[unit]
	return f, ok
}

// ValidEnergyUnitsString returns a comma-separated list of accepted energy
// units for error messages.
func ValidEnergyUnitsString() string { return "MeV, GeV, TeV, PeV" }

// ValidTimeUnitsString returns a comma-separated list of accepted time
// units for error messages.
func ValidTimeUnitsString() string { return "ns, us, ms, s, sec, min, h, d, yr" }
