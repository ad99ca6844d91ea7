package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanCenter(t *testing.T) {
	pairs := []MatchedPair{
		{ModisLat: 50, ModisLon: 8, ViirsLat: 50.1, ViirsLon: 8.2},
		{ModisLat: 52, ModisLon: 12, ViirsLat: 52.3, ViirsLon: 11.8},
		{ModisLat: 48, ModisLon: 10, ViirsLat: 47.9, ViirsLon: 10.3},
	}

	lat, lon, err := MeanCenter(pairs)
	require.NoError(t, err)

	modisLat := (50.0 + 52 + 48) / 3
	viirsLat := (50.1 + 52.3 + 47.9) / 3
	modisLon := (8.0 + 12 + 10) / 3
	viirsLon := (8.2 + 11.8 + 10.3) / 3
	assert.InDelta(t, (modisLat+viirsLat)/2, lat, 1e-9)
	assert.InDelta(t, (modisLon+viirsLon)/2, lon, 1e-9)
}

func TestMeanCenter_SingleRow(t *testing.T) {
	lat, lon, err := MeanCenter([]MatchedPair{{ModisLat: 10, ModisLon: 20, ViirsLat: 12, ViirsLon: 24}})
	require.NoError(t, err)
	assert.InDelta(t, 11.0, lat, 1e-12)
	assert.InDelta(t, 22.0, lon, 1e-12)
}

func TestMeanCenter_Empty(t *testing.T) {
	_, _, err := MeanCenter(nil)
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestGeodesicCenter(t *testing.T) {
	t.Run("symmetric points", func(t *testing.T) {
		pairs := []MatchedPair{{ModisLat: 0, ModisLon: -10, ViirsLat: 0, ViirsLon: 10}}
		lat, lon, err := GeodesicCenter(pairs)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, lat, 1e-9)
		assert.InDelta(t, 0.0, lon, 1e-9)
	})

	t.Run("across the antimeridian", func(t *testing.T) {
		pairs := []MatchedPair{{ModisLat: 0, ModisLon: 179, ViirsLat: 0, ViirsLon: -179}}
		lat, lon, err := GeodesicCenter(pairs)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, lat, 1e-9)
		assert.InDelta(t, 180.0, abs(lon), 1e-9)

		_, meanLon, err := MeanCenter(pairs)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, meanLon, 1e-9, "mean center lands on the prime meridian")
	})

	t.Run("antipodal falls back to mean", func(t *testing.T) {
		pairs := []MatchedPair{{ModisLat: 0, ModisLon: 0, ViirsLat: 0, ViirsLon: 180}}
		lat, lon, err := GeodesicCenter(pairs)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, lat, 1e-9)
		assert.InDelta(t, 90.0, lon, 1e-9)
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := GeodesicCenter(nil)
		assert.ErrorIs(t, err, ErrNoMatches)
	})
}

func TestCenter_Dispatch(t *testing.T) {
	pairs := []MatchedPair{{ModisLat: 0, ModisLon: 179, ViirsLat: 0, ViirsLon: -179}}

	_, meanLon, err := Center(pairs, CenterMean)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, meanLon, 1e-9)

	_, geoLon, err := Center(pairs, CenterGeodesic)
	require.NoError(t, err)
	assert.InDelta(t, 180.0, abs(geoLon), 1e-9)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
