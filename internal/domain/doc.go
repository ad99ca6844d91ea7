// Package domain models matched MODIS/VIIRS fire-detection pairs.
//
// # Data Source
//
// Matches are produced upstream by a spatiotemporal matcher that pairs each
// MODIS active-fire detection with one VIIRS detection. This module never
// creates, mutates or drops rows; it only renders them.
//
// # Columns
//
// Rows arrive column-oriented (Arrow records, JSON objects) and are keyed by
// the column names below. Required columns:
//
//	modis_lat, modis_lon, viirs_lat, viirs_lon   WGS-84 degrees
//	modis_time, viirs_time                       detection timestamps
//	time_diff_minutes                            signed offset in minutes
//	distance_km                                  great-circle distance
//
// Optional columns, rendered as the "N/A" placeholder when absent or null:
//
//	modis_confidence, modis_brightness
//
// A missing required column fails with [ErrMissingColumn].
//
// # Sign Convention
//
// time_diff_minutes is negative when the source dataset (MODIS) detected the
// fire first and positive when VIIRS was earlier. Chart labels embed the
// dataset name so the convention stays readable in typeset output.
//
// # Map Center
//
// [MeanCenter] averages the MODIS and VIIRS mean coordinates, treating
// latitude and longitude as independent linear quantities. It is not a
// great-circle centroid and misbehaves across the antimeridian;
// [GeodesicCenter] is the spherical alternative.
package domain
