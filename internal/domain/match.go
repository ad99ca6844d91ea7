package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// Column names of the matched-pairs table.
const (
	ColModisLat        = "modis_lat"
	ColModisLon        = "modis_lon"
	ColViirsLat        = "viirs_lat"
	ColViirsLon        = "viirs_lon"
	ColModisTime       = "modis_time"
	ColViirsTime       = "viirs_time"
	ColModisConfidence = "modis_confidence"
	ColModisBrightness = "modis_brightness"
	ColTimeDiffMinutes = "time_diff_minutes"
	ColDistanceKm      = "distance_km"
)

// RequiredColumns lists the columns every row must carry.
var RequiredColumns = []string{
	ColModisLat, ColModisLon,
	ColViirsLat, ColViirsLon,
	ColModisTime, ColViirsTime,
	ColTimeDiffMinutes, ColDistanceKm,
}

// Placeholder is rendered for absent optional attributes.
const Placeholder = "N/A"

var (
	// ErrMissingColumn reports a required column absent from a row or record.
	ErrMissingColumn = errors.New("missing required column")

	// ErrNoMatches reports an operation that needs at least one row.
	ErrNoMatches = errors.New("no matched pairs")
)

// MatchedPair is one MODIS detection associated with one VIIRS detection.
type MatchedPair struct {
	ModisLat  float64   `json:"modis_lat"`
	ModisLon  float64   `json:"modis_lon"`
	ViirsLat  float64   `json:"viirs_lat"`
	ViirsLon  float64   `json:"viirs_lon"`
	ModisTime time.Time `json:"modis_time"`
	ViirsTime time.Time `json:"viirs_time"`

	ModisConfidence *float64 `json:"modis_confidence,omitempty"`
	ModisBrightness *float64 `json:"modis_brightness,omitempty"`

	TimeDiffMinutes float64 `json:"time_diff_minutes"` // negative = MODIS earlier
	DistanceKm      float64 `json:"distance_km"`
}

// ModisPoint returns the MODIS detection as an orb point (lon, lat).
func (m MatchedPair) ModisPoint() orb.Point {
	return orb.Point{m.ModisLon, m.ModisLat}
}

// ViirsPoint returns the VIIRS detection as an orb point (lon, lat).
func (m MatchedPair) ViirsPoint() orb.Point {
	return orb.Point{m.ViirsLon, m.ViirsLat}
}

// UnmarshalJSON decodes a row object, failing with ErrMissingColumn when a
// required column is absent or null.
func (m *MatchedPair) UnmarshalJSON(data []byte) error {
	var cols map[string]json.RawMessage
	if err := json.Unmarshal(data, &cols); err != nil {
		return fmt.Errorf("decode matched pair: %w", err)
	}
	for _, name := range RequiredColumns {
		raw, ok := cols[name]
		if !ok {
			return MissingColumn(name)
		}
		if string(bytes.TrimSpace(raw)) == "null" {
			return NullColumn(name)
		}
	}

	type plain MatchedPair
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode matched pair: %w", err)
	}
	*m = MatchedPair(p)
	return nil
}

// MissingColumn wraps ErrMissingColumn with the offending column name.
func MissingColumn(name string) error {
	return fmt.Errorf("%w: %q", ErrMissingColumn, name)
}

// NullColumn wraps ErrMissingColumn for a required column present with a
// null value.
func NullColumn(name string) error {
	return fmt.Errorf("%w: %q is null", ErrMissingColumn, name)
}

// FileLabel normalizes a dataset name for use in file names:
// "MODIS Comparison" becomes "modis_comparison".
func FileLabel(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
