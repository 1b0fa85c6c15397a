package diskcache

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/deepcore-data/aeff.report/internal/binning"
	"github.com/deepcore-data/aeff.report/internal/transform"
)

func testSet(t *testing.T) *transform.Set {
	t.Helper()
	in, err := binning.New(binning.Dim{Name: "true_energy", Units: "GeV", Edges: []float64{1, 10, 100}})
	if err != nil {
		t.Fatal(err)
	}
	out, err := binning.New(binning.Dim{Name: "reco_energy", Units: "GeV", Edges: []float64{1, 10, 100}})
	if err != nil {
		t.Fatal(err)
	}
	arr := transform.NewArray(2)
	copy(arr.Data, []float64{0.25, 1.75})
	xf, err := transform.NewBinnedTransform([]string{"nue", "nuebar"}, "nue_cc+nuebar_cc", in, out, arr, true)
	if err != nil {
		t.Fatal(err)
	}
	set, err := transform.NewSet([]*transform.BinnedTransform{xf})
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestPutGetRoundTrip(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	set := testSet(t)
	if err := c.Put("evhash", "cfghash", set); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get("evhash", "cfghash")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("entry not found")
	}
	if diff := cmp.Diff(set.Transforms, got.Transforms); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGetMiss(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	_, ok, err := c.Get("no-such", "entry")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected a miss")
	}
}

func TestPutReplacesEntry(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	set := testSet(t)
	if err := c.Put("evhash", "cfghash", set); err != nil {
		t.Fatal(err)
	}

	set.Transforms[0].Array.Data[0] = 9.5
	if err := c.Put("evhash", "cfghash", set); err != nil {
		t.Fatalf("replacing Put: %v", err)
	}

	got, ok, err := c.Get("evhash", "cfghash")
	if err != nil || !ok {
		t.Fatalf("Get after replace: ok=%v err=%v", ok, err)
	}
	if got.Transforms[0].Array.Data[0] != 9.5 {
		t.Errorf("got %v, want replaced value 9.5", got.Transforms[0].Array.Data[0])
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	c.Close()

	// Re-opening applies no migrations and keeps existing entries usable.
	c, err = Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer c.Close()
	if err := c.Put("a", "b", testSet(t)); err != nil {
		t.Errorf("Put after reopen: %v", err)
	}
}
