package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/UCL/simstock-sub000/stock"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile  = flag.String("config", "", "Path to YAML configuration file (optional)")
	inputFile   = flag.String("input", "", "Input GeoJSON FeatureCollection of building footprints")
	outputFile  = flag.String("output", "cleaned.geojson", "Output GeoJSON file for the cleaned footprints")
	tolerance   = flag.Float64("tolerance", 0, "Override the simplification tolerance from the config")
	stitchFile  = flag.String("stitch", "", "Also write per-footprint stitched boundary loops to this JSON file")
	summaryOnly = flag.Bool("summary-only", false, "Run the pipeline and print the report without writing output")
)

func main() {
	flag.Parse()
	fmt.Printf("simstock-sub000 version: %s\n", Version)

	if *inputFile == "" {
		flag.Usage()
		log.Fatal("-input is required")
	}

	config := loadConfig()
	if *tolerance > 0 {
		config.Tolerance = *tolerance
	}

	runPipeline(config)
}

func loadConfig() *stock.Config {
	if *configFile == "" {
		return stock.DefaultConfig()
	}
	config, err := stock.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Loaded config from %s", *configFile)
	return config
}

func runPipeline(config *stock.Config) {
	data, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *inputFile, err)
	}
	footprints, err := stock.LoadGeoJSON(data, config.IDProperty, config.ShadingProperty)
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", *inputFile, err)
	}
	log.Printf("Loaded %d footprints from %s", footprints.Len(), *inputFile)

	report, err := footprints.Preprocess(config.Tolerance)
	if err != nil {
		var overlap *stock.OverlapError
		var invalid *stock.InvalidInputGeometryError
		switch {
		case errors.As(err, &overlap):
			log.Fatalf("Input error: %v (fix the overlap and re-run)", overlap)
		case errors.As(err, &invalid):
			log.Fatalf("Input error: %v", invalid)
		default:
			log.Fatalf("Pipeline failed: %v", err)
		}
	}

	printReport(report)

	if *summaryOnly {
		return
	}

	out, err := footprints.MarshalGeoJSON(config.IDProperty, config.ShadingProperty)
	if err != nil {
		log.Fatalf("Failed to serialize output: %v", err)
	}
	if err := os.WriteFile(*outputFile, out, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outputFile, err)
	}
	log.Printf("Wrote %d cleaned footprints to %s", report.Surviving, *outputFile)

	if *stitchFile != "" {
		writeStitched(footprints)
	}
}

func printReport(report *stock.Report) {
	log.Printf("Footprints: %d in, %d out (%d degenerate, %d removed by hole cascade)",
		report.Input, report.Surviving, report.Degenerate, report.HoleCascade)

	names := make([]string, 0, len(report.Islands))
	for name := range report.Islands {
		names = append(names, name)
	}
	sort.Strings(names)
	log.Printf("Built islands: %d", len(names))
	for _, name := range names {
		log.Printf("  %s: %d footprints", name, report.Islands[name])
	}
	if report.ModalIsland != "" {
		log.Printf("Largest island: %s (%d simulated footprints)", report.ModalIsland, report.ModalIslandCount)
	}
}

// writeStitched emits every surviving footprint's single-loop boundary keyed
// by footprint id. Footprints without holes come out as their outer ring.
func writeStitched(footprints *stock.Stock) {
	loops := make(map[string][][2]float64)
	for _, id := range footprints.IDs() {
		f, ok := footprints.Get(id)
		if !ok {
			continue
		}
		loop, err := stock.Stitch(f.Polygon)
		if err != nil {
			log.Fatalf("Failed to stitch %s: %v", id, err)
		}
		coords := make([][2]float64, len(loop))
		for i, p := range loop {
			coords[i] = [2]float64{p[0], p[1]}
		}
		loops[id] = coords
	}
	data, err := json.MarshalIndent(loops, "", "  ")
	if err != nil {
		log.Fatalf("Failed to serialize stitched loops: %v", err)
	}
	if err := os.WriteFile(*stitchFile, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *stitchFile, err)
	}
	log.Printf("Wrote stitched loops for %d footprints to %s", len(loops), *stitchFile)
}
