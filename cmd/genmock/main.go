// Command genmock generates synthetic matched-pairs fixtures for exercising
// the map, screenshot and chart renderers without real satellite data.
// Output is deterministic for a given seed.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/matches_modis.json \
//	  -n 250 -lat 38.5 -lon -120.5 -seed 7
//
//	go run ./cmd/genmock -format arrow -out data/mock/matches_modis.arrow
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/couchcryptid/fire-match-viz/internal/adapter/arrowtable"
	"github.com/couchcryptid/fire-match-viz/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

type params struct {
	n              int
	seed           uint64
	center         orb.Point
	spreadKm       float64 // radius of the fire cluster
	maxKm          float64 // match radius
	maxMinutes     float64 // match window
	confidenceRate float64 // share of rows carrying confidence and brightness
	start          time.Time
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the fixture")
	format := flag.String("format", "json", "output format: json or arrow")
	n := flag.Int("n", 200, "number of matched pairs")
	seed := flag.Uint64("seed", 1, "random seed")
	lat := flag.Float64("lat", 38.5, "cluster center latitude")
	lon := flag.Float64("lon", -120.5, "cluster center longitude")
	spread := flag.Float64("spread-km", 50, "cluster radius in km")
	maxKm := flag.Float64("max-km", 2, "maximum match distance in km")
	maxMinutes := flag.Float64("max-minutes", 60, "maximum match time difference in minutes")
	confRate := flag.Float64("confidence-rate", 0.8, "fraction of rows with confidence and brightness")
	start := flag.String("start", "2023-08-14T00:00:00Z", "first detection time (RFC 3339)")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return errors.New("missing required flag: -out")
	}
	if *n <= 0 {
		return fmt.Errorf("-n must be positive, got %d", *n)
	}
	startTime, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}

	pairs := generate(params{
		n:              *n,
		seed:           *seed,
		center:         orb.Point{*lon, *lat},
		spreadKm:       *spread,
		maxKm:          *maxKm,
		maxMinutes:     *maxMinutes,
		confidenceRate: *confRate,
		start:          startTime.UTC(),
	})

	switch *format {
	case "json":
		err = writeJSON(*out, pairs)
	case "arrow":
		err = writeArrow(*out, pairs)
	default:
		return fmt.Errorf("unknown -format %q", *format)
	}
	if err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d pairs: %s", len(pairs), *out)

	printStats(pairs)
	return nil
}

// generate places n MODIS detections around the center, one every few
// minutes, and pairs each with a VIIRS detection inside the match window.
func generate(p params) []domain.MatchedPair {
	rng := rand.New(rand.NewPCG(p.seed, p.seed^0x9e3779b97f4a7c15))
	clock := clockwork.NewFakeClockAt(p.start)

	pairs := make([]domain.MatchedPair, p.n)
	for i := range pairs {
		clock.Advance(time.Duration(1+rng.IntN(15)) * time.Minute)

		// sqrt keeps the cluster uniform over its disc.
		modis := geo.PointAtBearingAndDistance(p.center, rng.Float64()*360, math.Sqrt(rng.Float64())*p.spreadKm*1000)
		viirs := geo.PointAtBearingAndDistance(modis, rng.Float64()*360, rng.Float64()*p.maxKm*1000)

		diff := math.Round((rng.Float64()*2-1)*p.maxMinutes*10) / 10
		modisTime := clock.Now()
		// Negative difference means MODIS saw it first.
		viirsTime := modisTime.Add(-time.Duration(diff * float64(time.Minute)))

		pair := domain.MatchedPair{
			ModisLat:        modis.Lat(),
			ModisLon:        modis.Lon(),
			ViirsLat:        viirs.Lat(),
			ViirsLon:        viirs.Lon(),
			ModisTime:       modisTime,
			ViirsTime:       viirsTime,
			TimeDiffMinutes: diff,
			DistanceKm:      geo.DistanceHaversine(modis, viirs) / 1000,
		}
		if rng.Float64() < p.confidenceRate {
			conf := float64(30 + rng.IntN(71))
			bright := math.Round((300+rng.Float64()*80)*10) / 10
			pair.ModisConfidence = &conf
			pair.ModisBrightness = &bright
		}
		pairs[i] = pair
	}
	return pairs
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func writeArrow(path string, pairs []domain.MatchedPair) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rec := arrowtable.NewRecord(memory.NewGoAllocator(), pairs)
	defer rec.Release()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(arrowtable.Schema))
	if err != nil {
		return err
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}

// statsResult holds aggregated figures for printStats reporting.
type statsResult struct {
	modisFirst     int
	viirsFirst     int
	withConfidence int
	maxDistanceKm  float64
	medianDiff     float64
}

func collectStats(pairs []domain.MatchedPair) statsResult {
	var s statsResult
	diffs := make([]float64, 0, len(pairs))
	for i := range pairs {
		p := &pairs[i]
		switch {
		case p.TimeDiffMinutes < 0:
			s.modisFirst++
		case p.TimeDiffMinutes > 0:
			s.viirsFirst++
		}
		if p.ModisConfidence != nil {
			s.withConfidence++
		}
		s.maxDistanceKm = math.Max(s.maxDistanceKm, p.DistanceKm)
		diffs = append(diffs, p.TimeDiffMinutes)
	}
	if len(diffs) > 0 {
		sort.Float64s(diffs)
		s.medianDiff = diffs[len(diffs)/2]
	}
	return s
}

func printStats(pairs []domain.MatchedPair) {
	stats := collectStats(pairs)
	lat, lon, err := domain.MeanCenter(pairs)
	if err != nil {
		return
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(pairs))
	fmt.Printf("MODIS earlier: %d, VIIRS earlier: %d\n", stats.modisFirst, stats.viirsFirst)
	fmt.Printf("With confidence: %d\n", stats.withConfidence)
	fmt.Printf("Max distance: %.3f km\n", stats.maxDistanceKm)
	fmt.Printf("Median time difference: %.1f min\n", stats.medianDiff)
	fmt.Printf("Map center: %.5f, %.5f\n", lat, lon)
	fmt.Printf("First MODIS time: %s\n", pairs[0].ModisTime.Format(time.RFC3339))
}
