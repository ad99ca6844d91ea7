// Package arrowtable converts between Arrow records and matched pairs, so
// columnar output of the matching step can be plotted without a row copy
// in between.
package arrowtable

import (
	"fmt"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/couchcryptid/fire-match-viz/internal/domain"
)

// Schema is the record layout written by NewRecord. Decode accepts any
// schema that carries the required columns with compatible types.
var Schema = arrow.NewSchema([]arrow.Field{
	{Name: domain.ColModisLat, Type: arrow.PrimitiveTypes.Float64},
	{Name: domain.ColModisLon, Type: arrow.PrimitiveTypes.Float64},
	{Name: domain.ColViirsLat, Type: arrow.PrimitiveTypes.Float64},
	{Name: domain.ColViirsLon, Type: arrow.PrimitiveTypes.Float64},
	{Name: domain.ColModisTime, Type: arrow.FixedWidthTypes.Timestamp_us},
	{Name: domain.ColViirsTime, Type: arrow.FixedWidthTypes.Timestamp_us},
	{Name: domain.ColModisConfidence, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: domain.ColModisBrightness, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: domain.ColTimeDiffMinutes, Type: arrow.PrimitiveTypes.Float64},
	{Name: domain.ColDistanceKm, Type: arrow.PrimitiveTypes.Float64},
}, nil)

// Decode reads every row of rec. A missing or null required column fails
// with domain.ErrMissingColumn; missing or null optional columns decode as nil.
func Decode(rec arrow.Record) ([]domain.MatchedPair, error) {
	cols := make(map[string]arrow.Array, len(domain.RequiredColumns)+2)
	for _, name := range domain.RequiredColumns {
		idx := rec.Schema().FieldIndices(name)
		if len(idx) == 0 {
			return nil, domain.MissingColumn(name)
		}
		cols[name] = rec.Column(idx[0])
	}
	for _, name := range []string{domain.ColModisConfidence, domain.ColModisBrightness} {
		if idx := rec.Schema().FieldIndices(name); len(idx) > 0 {
			cols[name] = rec.Column(idx[0])
		}
	}

	n := int(rec.NumRows())
	pairs := make([]domain.MatchedPair, n)
	for i := range n {
		p := &pairs[i]
		var err error
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{domain.ColModisLat, &p.ModisLat},
			{domain.ColModisLon, &p.ModisLon},
			{domain.ColViirsLat, &p.ViirsLat},
			{domain.ColViirsLon, &p.ViirsLon},
			{domain.ColTimeDiffMinutes, &p.TimeDiffMinutes},
			{domain.ColDistanceKm, &p.DistanceKm},
		} {
			if *f.dst, err = requiredFloat(cols[f.name], f.name, i); err != nil {
				return nil, err
			}
		}
		if p.ModisTime, err = timeAt(cols[domain.ColModisTime], domain.ColModisTime, i); err != nil {
			return nil, err
		}
		if p.ViirsTime, err = timeAt(cols[domain.ColViirsTime], domain.ColViirsTime, i); err != nil {
			return nil, err
		}
		if p.ModisConfidence, err = optionalFloat(cols[domain.ColModisConfidence], domain.ColModisConfidence, i); err != nil {
			return nil, err
		}
		if p.ModisBrightness, err = optionalFloat(cols[domain.ColModisBrightness], domain.ColModisBrightness, i); err != nil {
			return nil, err
		}
	}
	return pairs, nil
}

func requiredFloat(arr arrow.Array, name string, i int) (float64, error) {
	v, err := optionalFloat(arr, name, i)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("row %d: %w", i, domain.NullColumn(name))
	}
	return *v, nil
}

func optionalFloat(arr arrow.Array, name string, i int) (*float64, error) {
	if arr == nil || arr.IsNull(i) {
		return nil, nil
	}
	var v float64
	switch a := arr.(type) {
	case *array.Float64:
		v = a.Value(i)
	case *array.Float32:
		v = float64(a.Value(i))
	case *array.Int64:
		v = float64(a.Value(i))
	case *array.Int32:
		v = float64(a.Value(i))
	default:
		return nil, fmt.Errorf("column %q: unsupported type %s", name, arr.DataType())
	}
	return &v, nil
}

func timeAt(arr arrow.Array, name string, i int) (time.Time, error) {
	if arr.IsNull(i) {
		return time.Time{}, fmt.Errorf("row %d: %w", i, domain.NullColumn(name))
	}
	switch a := arr.(type) {
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit), nil
	case *array.String:
		t, err := time.Parse(time.RFC3339Nano, a.Value(i))
		if err != nil {
			return time.Time{}, fmt.Errorf("column %q row %d: %w", name, i, err)
		}
		return t.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("column %q: unsupported type %s", name, arr.DataType())
	}
}

// NewRecord builds a record in Schema layout from pairs. Times are stored
// with microsecond precision. The caller releases the record.
func NewRecord(mem memory.Allocator, pairs []domain.MatchedPair) arrow.Record {
	b := array.NewRecordBuilder(mem, Schema)
	defer b.Release()

	floats := func(i int) *array.Float64Builder { return b.Field(i).(*array.Float64Builder) }
	stamps := func(i int) *array.TimestampBuilder { return b.Field(i).(*array.TimestampBuilder) }
	optional := func(fb *array.Float64Builder, v *float64) {
		if v == nil {
			fb.AppendNull()
			return
		}
		fb.Append(*v)
	}

	for _, p := range pairs {
		floats(0).Append(p.ModisLat)
		floats(1).Append(p.ModisLon)
		floats(2).Append(p.ViirsLat)
		floats(3).Append(p.ViirsLon)
		stamps(4).Append(arrow.Timestamp(p.ModisTime.UnixMicro()))
		stamps(5).Append(arrow.Timestamp(p.ViirsTime.UnixMicro()))
		optional(floats(6), p.ModisConfidence)
		optional(floats(7), p.ModisBrightness)
		floats(8).Append(p.TimeDiffMinutes)
		floats(9).Append(p.DistanceKm)
	}
	return b.NewRecord()
}
