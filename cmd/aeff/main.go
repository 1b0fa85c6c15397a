// Command aeff computes binned effective-area transforms from a weighted
// events file and a stage configuration, rescales them by the given physics
// parameters, and writes the resulting transform set as JSON.
//
// The expensive nominal computation can be cached in a SQLite database via
// -cache; it is keyed by the events-file content hash and the configuration
// hash, so reruns with unchanged inputs skip histogramming entirely.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/deepcore-data/aeff.report/internal/aeffhist"
	"github.com/deepcore-data/aeff.report/internal/config"
	"github.com/deepcore-data/aeff.report/internal/diskcache"
	"github.com/deepcore-data/aeff.report/internal/events"
	"github.com/deepcore-data/aeff.report/internal/monitoring"
	"github.com/deepcore-data/aeff.report/internal/params"
	"github.com/deepcore-data/aeff.report/internal/report"
	"github.com/deepcore-data/aeff.report/internal/version"
)

var (
	configPath    = flag.String("config", "", "Path to stage configuration JSON (required)")
	eventsPath    = flag.String("events", "", "Path to weighted events JSON (required)")
	livetime      = flag.Float64("livetime", 1, "Detector exposure")
	livetimeUnits = flag.String("livetime-units", "s", "Units of -livetime (s, min, h, d, yr)")
	scale         = flag.Float64("scale", 1, "Dimensionless effective-area scale")
	nutauCCNorm   = flag.Float64("nutau-cc-norm", 1, "Correction applied to nutau_cc and nutaubar_cc outputs")
	cachePath     = flag.String("cache", "", "Optional SQLite cache for nominal transform sets")
	outPath       = flag.String("out", "transforms.json", "Output transform-set JSON path")
	reportPath    = flag.String("report", "", "Optional HTML diagnostics report path")
	verbosity     = flag.Int("v", 0, "Verbosity: 0 info, 1 debug, 2 trace")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	log.SetPrefix("aeff: ")
	log.SetFlags(0)
	monitoring.SetVerbosity(*verbosity)

	if *showVersion {
		log.Print(version.String())
		return
	}

	if *configPath == "" || *eventsPath == "" {
		log.Fatal("-config and -events are required")
	}

	cfg, err := config.LoadStageConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	svc, err := aeffhist.New(cfg)
	if err != nil {
		log.Fatalf("failed to build stage: %v", err)
	}
	col, err := events.Load(*eventsPath)
	if err != nil {
		log.Fatalf("failed to load events: %v", err)
	}

	p := &params.Set{
		EventWeightSource:  *eventsPath,
		Livetime:           params.Quantity{Value: *livetime, Units: *livetimeUnits},
		Scale:              params.Quantity{Value: *scale},
		SpecialChannelNorm: params.Quantity{Value: *nutauCCNorm},
	}

	var cache *diskcache.Cache
	if *cachePath != "" {
		cache, err = diskcache.Open(*cachePath)
		if err != nil {
			log.Fatalf("failed to open cache: %v", err)
		}
		defer cache.Close()

		cfgHash, err := cfg.Hash()
		if err != nil {
			log.Fatalf("failed to hash config: %v", err)
		}
		if nominal, ok, err := cache.Get(col.Hash(), cfgHash); err != nil {
			log.Fatalf("cache lookup failed: %v", err)
		} else if ok {
			monitoring.Debugf("nominal transforms loaded from cache")
			svc.SeedNominal(col.Hash(), nominal)
		}
	}

	set, err := svc.Transforms(col, p)
	if err != nil {
		log.Fatalf("failed to compute transforms: %v", err)
	}

	if cache != nil {
		cfgHash, _ := cfg.Hash()
		nominal, err := svc.NominalTransforms(col)
		if err != nil {
			log.Fatalf("failed to fetch nominal transforms: %v", err)
		}
		if err := cache.Put(col.Hash(), cfgHash, nominal); err != nil {
			log.Fatalf("failed to store nominal transforms: %v", err)
		}
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode transform set: %v", err)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *outPath, err)
	}
	log.Printf("wrote %d transforms to %s", len(set.Transforms), *outPath)

	if *reportPath != "" {
		f, err := os.Create(*reportPath)
		if err != nil {
			log.Fatalf("failed to create report: %v", err)
		}
		defer f.Close()
		if err := report.RenderHTML(set, f); err != nil {
			log.Fatalf("failed to render report: %v", err)
		}
		log.Printf("wrote report to %s", *reportPath)
	}
}
