// Package report renders quick HTML views of transform sets using
// go-echarts. Debugging aid only: it lets the effective-area spectra be
// eyeballed without any plotting toolchain.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/deepcore-data/aeff.report/internal/binning"
	"github.com/deepcore-data/aeff.report/internal/transform"
)

// RenderHTML writes an HTML page with one line series per transform: the
// effective area along the output energy axis, averaged over any other
// output dimensions.
func RenderHTML(set *transform.Set, w io.Writer) error {
	if set == nil || len(set.Transforms) == 0 {
		return fmt.Errorf("report: empty transform set")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Effective area per output channel",
			Subtitle: "bin-averaged along the output energy axis",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "effective area"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "energy bin center"}),
	)

	var haveAxis bool
	for _, xf := range set.Transforms {
		centers, profile, err := EnergyProfile(xf)
		if err != nil {
			return err
		}
		if !haveAxis {
			labels := make([]string, len(centers))
			for i, c := range centers {
				labels[i] = fmt.Sprintf("%.3g", c)
			}
			line.SetXAxis(labels)
			haveAxis = true
		}
		series := make([]opts.LineData, len(profile))
		for i, v := range profile {
			series[i] = opts.LineData{Value: v}
		}
		line.AddSeries(xf.OutputName, series)
	}

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(w)
}

// EnergyProfile reduces a transform's array to a 1-D profile along the
// output energy dimension, averaging over the remaining dimensions, and
// returns the energy bin centers alongside.
func EnergyProfile(xf *transform.BinnedTransform) ([]float64, []float64, error) {
	axis := -1
	var dim binning.Dim
	for i, d := range xf.OutputBinning.Dims {
		if d.Name == "reco_energy" || d.Name == binning.DimEnergy {
			axis = i
			dim = d
			break
		}
	}
	if axis < 0 {
		return nil, nil, fmt.Errorf("report: transform %q has no energy dimension", xf.OutputName)
	}

	shape := xf.Array.Shape
	nE := shape[axis]
	centers := make([]float64, nE)
	for i := 0; i < nE; i++ {
		centers[i] = 0.5 * (dim.Edges[i] + dim.Edges[i+1])
	}

	sums := make([]float64, nE)
	counts := make([]int, nE)
	idx := make([]int, len(shape))
	for flat := 0; flat < xf.Array.Len(); flat++ {
		sums[idx[axis]] += xf.Array.Data[flat]
		counts[idx[axis]]++
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < shape[i] {
				break
			}
			idx[i] = 0
		}
	}
	profile := make([]float64, nE)
	for i := range profile {
		profile[i] = sums[i] / float64(counts[i])
	}
	return centers, profile, nil
}
