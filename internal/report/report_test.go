package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/deepcore-data/aeff.report/internal/binning"
	"github.com/deepcore-data/aeff.report/internal/transform"
)

func testSet(t *testing.T) *transform.Set {
	t.Helper()
	in, err := binning.New(
		binning.Dim{Name: "true_energy", Units: "GeV", Edges: []float64{1, 10, 100}},
		binning.Dim{Name: "true_coszen", Edges: []float64{-1, 0, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	out, err := binning.New(
		binning.Dim{Name: "reco_energy", Units: "GeV", Edges: []float64{1, 10, 100}},
		binning.Dim{Name: "reco_coszen", Edges: []float64{-1, 0, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	arr := transform.NewArray(2, 2)
	copy(arr.Data, []float64{1, 3, 5, 7})
	xf, err := transform.NewBinnedTransform([]string{"nue"}, "nue_cc", in, out, arr, false)
	if err != nil {
		t.Fatal(err)
	}
	set, err := transform.NewSet([]*transform.BinnedTransform{xf})
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(testSet(t), &buf); err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "nue_cc") {
		t.Error("output missing series name")
	}
	if !strings.Contains(html, "Effective area") {
		t.Error("output missing title")
	}
}

func TestRenderHTMLEmptySet(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(&transform.Set{}, &buf); err == nil {
		t.Error("empty set should fail")
	}
}

func TestEnergyProfileAverages(t *testing.T) {
	set := testSet(t)
	centers, profile, err := EnergyProfile(set.Transforms[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(centers) != 2 || centers[0] != 5.5 || centers[1] != 55 {
		t.Errorf("centers = %v", centers)
	}
	// Mean over the coszen axis: (1+3)/2 and (5+7)/2.
	if profile[0] != 2 || profile[1] != 6 {
		t.Errorf("profile = %v", profile)
	}
}
