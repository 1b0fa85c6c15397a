package units

import (
	"math"
	"testing"
)

func TestEnergyToGeV(t *testing.T) {
	cases := map[string]float64{MeV: 1e-3, GeV: 1, TeV: 1e3, PeV: 1e6}
	for unit, want := range cases {
		got, ok := EnergyToGeV(unit)
		if !ok || got != want {
			t.Errorf("EnergyToGeV(%s) = %v, %v; want %v, true", unit, got, ok, want)
		}
	}
	if _, ok := EnergyToGeV("eV"); ok {
		t.Error("eV should not be accepted")
	}
}

func TestAngleToRad(t *testing.T) {
	if f, ok := AngleToRad(Deg); !ok || math.Abs(f*180-math.Pi) > 1e-15 {
		t.Errorf("AngleToRad(deg) = %v, %v", f, ok)
	}
	if f, ok := AngleToRad(Rad); !ok || f != 1 {
		t.Errorf("AngleToRad(rad) = %v, %v", f, ok)
	}
	if _, ok := AngleToRad("grad"); ok {
		t.Error("grad should not be accepted")
	}
}

func TestSeconds(t *testing.T) {
	if f, ok := Seconds(D); !ok || f != 86400 {
		t.Errorf("Seconds(d) = %v, %v", f, ok)
	}
	if f, ok := Seconds(Sec); !ok || f != 1 {
		t.Errorf("Seconds(sec) = %v, %v", f, ok)
	}
	if f, ok := Seconds(Yr); !ok || f != 365.25*86400 {
		t.Errorf("Seconds(yr) = %v, %v", f, ok)
	}
	if _, ok := Seconds("fortnight"); ok {
		t.Error("fortnight should not be accepted")
	}
}
