// Command validate checks a matched-pairs fixture before it is rendered:
// coordinates in range, the time-difference sign convention, distances
// consistent with the coordinates, and optional attributes in range.
//
// Usage:
//
//	go run ./cmd/validate -matches data/mock/matches_modis.json -max-km 2 -max-minutes 60
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	fireviz "github.com/couchcryptid/fire-match-viz"
	"github.com/couchcryptid/fire-match-viz/internal/domain"
	"github.com/paulmach/orb/geo"
)

const (
	// timeTolerance absorbs rounding of time_diff_minutes upstream.
	timeTolerance = 0.05 // minutes
	// distanceTolerance allows for a different earth model upstream.
	distanceTolerance = 0.01 // relative
	distanceFloorKm   = 0.01
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	matches := flag.String("matches", "", "matched pairs fixture (.json or .arrow)")
	maxKm := flag.Float64("max-km", 0, "match radius to enforce in km (0 = unchecked)")
	maxMinutes := flag.Float64("max-minutes", 0, "match window to enforce in minutes (0 = unchecked)")
	flag.Parse()

	if *matches == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*matches, *maxKm, *maxMinutes); code != 0 {
		os.Exit(code)
	}
}

func run(path string, maxKm, maxMinutes float64) int {
	fmt.Println("=== Matched Pairs Validation ===")
	fmt.Println()

	pairs, err := fireviz.LoadMatches(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load matches: %v\n", err)
		return 1
	}

	phases := validate(pairs, maxKm, maxMinutes)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d matched pairs\n", len(pairs))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validate(pairs []domain.MatchedPair, maxKm, maxMinutes float64) []*phase {
	phases := []*phase{
		validateNonEmpty(pairs),
		validateCoordinates(pairs),
		validateTimeDiff(pairs),
		validateDistance(pairs),
		validateOptional(pairs),
	}
	if maxKm > 0 || maxMinutes > 0 {
		phases = append(phases, validateWindow(pairs, maxKm, maxMinutes))
	}
	return phases
}

func validateNonEmpty(pairs []domain.MatchedPair) *phase {
	p := &phase{name: "Fixture has rows"}
	if len(pairs) == 0 {
		p.errorf("no matched pairs")
	}
	return p
}

func validateCoordinates(pairs []domain.MatchedPair) *phase {
	p := &phase{name: "Coordinates in range"}
	for i := range pairs {
		m := &pairs[i]
		for _, c := range []struct {
			sensor   string
			lat, lon float64
		}{
			{"modis", m.ModisLat, m.ModisLon},
			{"viirs", m.ViirsLat, m.ViirsLon},
		} {
			if c.lat < -90 || c.lat > 90 || math.IsNaN(c.lat) {
				p.errorf("row %d: %s_lat %g out of range", i, c.sensor, c.lat)
			}
			if c.lon < -180 || c.lon > 180 || math.IsNaN(c.lon) {
				p.errorf("row %d: %s_lon %g out of range", i, c.sensor, c.lon)
			}
		}
	}
	return p
}

// validateTimeDiff checks time_diff_minutes = modis_time - viirs_time, so a
// negative value means MODIS detected first.
func validateTimeDiff(pairs []domain.MatchedPair) *phase {
	p := &phase{name: "Time difference sign convention"}
	for i := range pairs {
		m := &pairs[i]
		want := m.ModisTime.Sub(m.ViirsTime).Minutes()
		if math.Abs(want-m.TimeDiffMinutes) > timeTolerance {
			p.errorf("row %d: time_diff_minutes=%.2f, times give %.2f", i, m.TimeDiffMinutes, want)
		}
	}
	return p
}

func validateDistance(pairs []domain.MatchedPair) *phase {
	p := &phase{name: "Distance matches coordinates"}
	for i := range pairs {
		m := &pairs[i]
		want := geo.DistanceHaversine(m.ModisPoint(), m.ViirsPoint()) / 1000
		if math.Abs(want-m.DistanceKm) > math.Max(distanceFloorKm, want*distanceTolerance) {
			p.errorf("row %d: distance_km=%.3f, coordinates give %.3f", i, m.DistanceKm, want)
		}
	}
	return p
}

func validateOptional(pairs []domain.MatchedPair) *phase {
	p := &phase{name: "Optional attributes in range"}
	for i := range pairs {
		m := &pairs[i]
		if c := m.ModisConfidence; c != nil && (*c < 0 || *c > 100) {
			p.errorf("row %d: modis_confidence %g outside 0-100", i, *c)
		}
		if b := m.ModisBrightness; b != nil && *b <= 0 {
			p.errorf("row %d: modis_brightness %g not positive", i, *b)
		}
	}
	return p
}

func validateWindow(pairs []domain.MatchedPair, maxKm, maxMinutes float64) *phase {
	p := &phase{name: "Pairs within match window"}
	for i := range pairs {
		m := &pairs[i]
		if maxKm > 0 && m.DistanceKm > maxKm {
			p.errorf("row %d: distance %.3f km exceeds %.3f", i, m.DistanceKm, maxKm)
		}
		if maxMinutes > 0 && math.Abs(m.TimeDiffMinutes) > maxMinutes {
			p.errorf("row %d: |time diff| %.1f min exceeds %.1f", i, m.TimeDiffMinutes, maxMinutes)
		}
	}
	return p
}
