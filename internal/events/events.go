// Package events loads and histograms weighted physics events. A Collection
// is immutable once loaded and identified by a content hash; loading the
// same source twice yields bit-identical events and the same hash, which is
// what lets the nominal-transform cache detect when a reload is needed.
package events

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/deepcore-data/aeff.report/internal/flavint"
	"github.com/deepcore-data/aeff.report/internal/monitoring"
	"github.com/deepcore-data/aeff.report/internal/transform"
)

// WeightCol is the default per-event weight column.
const WeightCol = "weighted_aeff"

// Event is one weighted physics event: its category plus named scalar
// fields (physical coordinates such as "true_energy" and weight columns
// such as "weighted_aeff").
type Event struct {
	FlavInt flavint.FlavInt
	Fields  map[string]float64
}

// Collection is an immutable set of events with a stable content hash.
type Collection struct {
	events []Event
	hash   string
}

// record is the on-disk JSON form of an event.
type record struct {
	FlavInt string             `json:"flavint"`
	Fields  map[string]float64 `json:"fields"`
}

// Load reads a JSON events file: a list of {"flavint": ..., "fields": ...}
// records. The collection's hash is the SHA-256 of the raw file bytes, so
// an unchanged file always produces the same hash.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to parse events file %s: %w", path, err)
	}

	evts := make([]Event, len(recs))
	for i, r := range recs {
		fi, err := flavint.ParseFlavInt(r.FlavInt)
		if err != nil {
			return nil, fmt.Errorf("events file %s, record %d: %w", path, i, err)
		}
		evts[i] = Event{FlavInt: fi, Fields: r.Fields}
	}

	sum := sha256.Sum256(data)
	monitoring.Debugf("loaded %d events from %s (hash %.12s)", len(evts), path, hex.EncodeToString(sum[:]))
	return &Collection{events: evts, hash: hex.EncodeToString(sum[:])}, nil
}

// FromEvents builds an in-memory collection, hashed over a canonical
// serialization of the events. Intended for tests and synthetic inputs.
func FromEvents(evts []Event) *Collection {
	h := sha256.New()
	for _, e := range evts {
		fmt.Fprintf(h, "%s\n", e.FlavInt)
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(h, "%s=%s\n", k, strconv.FormatFloat(e.Fields[k], 'b', -1, 64))
		}
	}
	cp := make([]Event, len(evts))
	copy(cp, evts)
	return &Collection{events: cp, hash: hex.EncodeToString(h.Sum(nil))}
}

// Hash returns the collection's content hash.
func (c *Collection) Hash() string { return c.hash }

// Len returns the number of events.
func (c *Collection) Len() int { return len(c.events) }

// Histogram builds a weighted N-dimensional histogram over the given edge
// grid, restricted to events whose category is a member of group. dims
// names the event field histogrammed along each axis, weightCol the weight
// column. When wantErrors is set the second return is the per-bin
// statistical error, sqrt of the sum of squared weights.
//
// Bin semantics: an event on an interior edge falls in the bin to its
// right; the last bin is closed on both sides; events outside the edge
// range are dropped.
func (c *Collection) Histogram(group flavint.Group, edges [][]float64, dims []string, weightCol string, wantErrors bool) (*transform.Array, *transform.Array, error) {
	if len(edges) != len(dims) {
		return nil, nil, fmt.Errorf("histogram: %d edge sets for %d dimensions", len(edges), len(dims))
	}
	shape := make([]int, len(edges))
	for i, e := range edges {
		if len(e) < 2 {
			return nil, nil, fmt.Errorf("histogram: dimension %q has %d edges", dims[i], len(e))
		}
		shape[i] = len(e) - 1
	}

	hist := transform.NewArray(shape...)
	var sumw2 *transform.Array
	if wantErrors {
		sumw2 = transform.NewArray(shape...)
	}

	idx := make([]int, len(dims))
	for _, e := range c.events {
		if !group.Contains(e.FlavInt) {
			continue
		}
		w, ok := e.Fields[weightCol]
		if !ok {
			return nil, nil, fmt.Errorf("histogram: event missing weight column %q", weightCol)
		}
		inRange := true
		for i, dim := range dims {
			v, ok := e.Fields[dim]
			if !ok {
				return nil, nil, fmt.Errorf("histogram: event missing coordinate %q", dim)
			}
			b := findBin(edges[i], v)
			if b < 0 {
				inRange = false
				break
			}
			idx[i] = b
		}
		if !inRange {
			continue
		}
		hist.Set(hist.At(idx...)+w, idx...)
		if sumw2 != nil {
			sumw2.Set(sumw2.At(idx...)+w*w, idx...)
		}
	}

	if sumw2 != nil {
		for i, v := range sumw2.Data {
			sumw2.Data[i] = math.Sqrt(v)
		}
	}
	return hist, sumw2, nil
}

// findBin returns the bin index of v in the strictly increasing edges, or
// -1 when v lies outside [edges[0], edges[last]]. The last bin is closed.
func findBin(edges []float64, v float64) int {
	n := len(edges)
	if v < edges[0] || v > edges[n-1] {
		return -1
	}
	if v == edges[n-1] {
		return n - 2
	}
	i := sort.SearchFloat64s(edges, v)
	if i < n && edges[i] == v {
		return i
	}
	return i - 1
}
