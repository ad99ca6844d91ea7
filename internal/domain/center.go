package domain

import (
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// Centering selects how the initial map center is derived from the rows.
type Centering string

const (
	CenterMean     Centering = "mean"
	CenterGeodesic Centering = "geodesic"
)

// Center dispatches to MeanCenter or GeodesicCenter.
func Center(pairs []MatchedPair, mode Centering) (lat, lon float64, err error) {
	if mode == CenterGeodesic {
		return GeodesicCenter(pairs)
	}
	return MeanCenter(pairs)
}

// MeanCenter returns the midpoint of the mean MODIS and mean VIIRS
// coordinates. Latitude and longitude are averaged independently.
func MeanCenter(pairs []MatchedPair) (lat, lon float64, err error) {
	if len(pairs) == 0 {
		return 0, 0, ErrNoMatches
	}

	var modisLat, modisLon, viirsLat, viirsLon float64
	for _, p := range pairs {
		modisLat += p.ModisLat
		modisLon += p.ModisLon
		viirsLat += p.ViirsLat
		viirsLon += p.ViirsLon
	}
	n := float64(len(pairs))
	lat = (modisLat/n + viirsLat/n) / 2
	lon = (modisLon/n + viirsLon/n) / 2
	return lat, lon, nil
}

// GeodesicCenter returns the spherical centroid of all 2n detections:
// the normalized sum of their unit vectors. When the vectors cancel out
// (e.g. antipodal detections) it falls back to MeanCenter.
func GeodesicCenter(pairs []MatchedPair) (lat, lon float64, err error) {
	if len(pairs) == 0 {
		return 0, 0, ErrNoMatches
	}

	var sum r3.Vector
	for _, p := range pairs {
		sum = sum.Add(s2.PointFromLatLng(s2.LatLngFromDegrees(p.ModisLat, p.ModisLon)).Vector)
		sum = sum.Add(s2.PointFromLatLng(s2.LatLngFromDegrees(p.ViirsLat, p.ViirsLon)).Vector)
	}
	if sum.Norm() < 1e-12 {
		return MeanCenter(pairs)
	}

	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return ll.Lat.Degrees(), ll.Lng.Degrees(), nil
}
