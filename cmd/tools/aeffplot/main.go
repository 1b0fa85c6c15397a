// Command aeffplot renders effective-area spectra from a transform-set JSON
// file (as written by cmd/aeff) into PNG plots, one per output channel.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/deepcore-data/aeff.report/internal/report"
	"github.com/deepcore-data/aeff.report/internal/transform"
)

var (
	inPath    = flag.String("in", "transforms.json", "Transform-set JSON to plot")
	outputDir = flag.String("o", "plots", "Output directory for PNG files")
	logX      = flag.Bool("logx", false, "Logarithmic energy axis")
)

func main() {
	flag.Parse()
	log.SetPrefix("aeffplot: ")
	log.SetFlags(0)

	data, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *inPath, err)
	}
	var set transform.Set
	if err := json.Unmarshal(data, &set); err != nil {
		log.Fatalf("failed to parse transform set: %v", err)
	}
	if len(set.Transforms) == 0 {
		log.Fatal("transform set is empty")
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("failed to create output dir: %v", err)
	}

	for _, xf := range set.Transforms {
		file, err := plotOne(xf)
		if err != nil {
			log.Fatalf("failed to plot %q: %v", xf.OutputName, err)
		}
		log.Printf("wrote %s", file)
	}
}

func plotOne(xf *transform.BinnedTransform) (string, error) {
	centers, profile, err := report.EnergyProfile(xf)
	if err != nil {
		return "", err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Effective area: %s", xf.OutputName)
	p.X.Label.Text = "energy (GeV)"
	p.Y.Label.Text = "effective area"
	if *logX {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{}
	}

	pts := make(plotter.XYs, len(centers))
	for i := range centers {
		pts[i] = plotter.XY{X: centers[i], Y: profile[i]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return "", err
	}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Add(plotter.NewGrid())

	file := filepath.Join(*outputDir, fmt.Sprintf("aeff_%s.png", sanitize(xf.OutputName)))
	if err := p.Save(8*vg.Inch, 5*vg.Inch, file); err != nil {
		return "", err
	}
	return file, nil
}

// sanitize maps an output name to a safe file-name fragment.
func sanitize(name string) string {
	return strings.NewReplacer("+", "_", "/", "_", " ", "").Replace(name)
}
