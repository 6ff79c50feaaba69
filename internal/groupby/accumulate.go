package groupby

import (
	"math"

	"dfkernel/internal/bitmap"
	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/dtype"
	"dfkernel/internal/rowcmp"
)

// aggregateColumn reduces v's rows, partitioned by groups, into one output
// row per group under spec. accType is the accumulator-dispatch output
// type computed by dispatch.AccumulatorType.
func aggregateColumn(v *column.View, groups [][]int, spec dispatch.AggSpec, accType dtype.Type, opts Options) (*column.Column, error) {
	if v.Type().IsString() {
		return aggregateStringColumn(v, groups, spec.Kind, opts)
	}
	n := len(groups)
	out, err := column.MakeFixedWidthColumn(accType, n, bitmap.Uninitialized)
	if err != nil {
		return nil, err
	}
	anyNull := false

	for gi, rows := range groups {
		switch spec.Kind {
		case dispatch.COUNT:
			count := 0
			if opts.NullHandling == Include || !v.Nullable() {
				count = len(rows)
			} else {
				for _, r := range rows {
					if v.IsValid(r) {
						count++
					}
				}
			}
			column.SetAt[int64](out, gi, int64(count))
			setValid(out, gi, true)

		case dispatch.MIN, dispatch.MAX:
			best, any, err := extremeRow(v, rows, spec.Kind == dispatch.MIN)
			if err != nil {
				return nil, err
			}
			if !any {
				anyNull = true
				setValid(out, gi, false)
				continue
			}
			if err := writeTyped(out, gi, v, best, accType); err != nil {
				return nil, err
			}
			setValid(out, gi, true)

		default:
			vals := extractFloat64(v, rows)
			result, ok := reduceFloats(vals, spec, opts)
			if !ok {
				anyNull = true
				setValid(out, gi, false)
				continue
			}
			if err := writeFloat(out, gi, accType, result); err != nil {
				return nil, err
			}
			setValid(out, gi, true)
		}
	}

	if anyNull {
		out.SetNullMask(out.NullMask(), bitmap.UnknownNullCount)
	}
	return out, nil
}

// aggregateStringColumn handles the only aggregation kinds String columns
// support (COUNT and MIN/MAX, per dispatch.AccumulatorType), since String
// has no fixed-width accumulator buffer to reuse.
func aggregateStringColumn(v *column.View, groups [][]int, kind dispatch.AggKind, opts Options) (*column.Column, error) {
	n := len(groups)
	if kind == dispatch.COUNT {
		out, err := column.MakeFixedWidthColumn(dtype.Fixed(dtype.Int64), n, bitmap.AllValid)
		if err != nil {
			return nil, err
		}
		for gi, rows := range groups {
			count := 0
			if opts.NullHandling == Include || !v.Nullable() {
				count = len(rows)
			} else {
				for _, r := range rows {
					if v.IsValid(r) {
						count++
					}
				}
			}
			column.SetAt[int64](out, gi, int64(count))
		}
		return out, nil
	}

	offsets := make([]int32, n+1)
	var chars []byte
	mask := bitmap.CreateNullMask(n, bitmap.Uninitialized)
	for gi, rows := range groups {
		best, any, err := extremeRow(v, rows, kind == dispatch.MIN)
		if err != nil {
			return nil, err
		}
		var s string
		if any {
			s = v.StringAt(best)
		}
		chars = append(chars, s...)
		offsets[gi+1] = offsets[gi] + int32(len(s))
		bitmap.SetValid(mask, gi, any)
	}
	return column.MakeStringsColumn(chars, offsets, mask)
}

func setValid(c *column.Column, i int, v bool) {
	mask := c.NullMask()
	bitmap.SetValid(mask, i, v)
}

// extremeRow returns the row index within the group holding the
// min (or max) value of v, skipping nulls; any reports whether at least
// one valid row was found. Comparison reuses the row comparator (C5) on a
// one-column table view wrapping v itself, so it works
// uniformly across every orderable element type, not just numerics.
func extremeRow(v *column.View, rows []int, wantMin bool) (int, bool, error) {
	best := -1
	for _, r := range rows {
		if v.Nullable() && !v.IsValid(r) {
			continue
		}
		if best == -1 {
			best = r
			continue
		}
		c, err := compareElements(v, r, best)
		if err != nil {
			return 0, false, err
		}
		if (wantMin && c < 0) || (!wantMin && c > 0) {
			best = r
		}
	}
	return best, best != -1, nil
}

// compareElements compares row a against row b of the same view by
// wrapping both in a tiny single-column TableView and delegating to
// rowcmp.Compare, avoiding a second, parallel element-comparison path.
func compareElements(v *column.View, a, b int) (int, error) {
	tv := &column.TableView{Names: []string{""}, Columns: []*column.View{v}}
	return rowcmp.Compare(tv, tv, a, b, []rowcmp.Key{{Col: 0}})
}

func extractFloat64(v *column.View, rows []int) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v.Nullable() && !v.IsValid(r) {
			continue
		}
		out = append(out, floatAt(v, r))
	}
	return out
}

func floatAt(v *column.View, i int) float64 {
	switch d := v.Data().(type) {
	case []int8:
		return float64(d[v.Offset()+i])
	case []uint8:
		return float64(d[v.Offset()+i])
	case []int16:
		return float64(d[v.Offset()+i])
	case []uint16:
		return float64(d[v.Offset()+i])
	case []int32:
		return float64(d[v.Offset()+i])
	case []uint32:
		return float64(d[v.Offset()+i])
	case []int64:
		return float64(d[v.Offset()+i])
	case []uint64:
		return float64(d[v.Offset()+i])
	case []float32:
		return float64(d[v.Offset()+i])
	case []float64:
		return d[v.Offset()+i]
	default:
		return 0
	}
}

// reduceFloats computes spec over already-null-filtered vals. ok is false
// when the group's result is null (empty/all-null group, or too few
// values for the requested ddof).
func reduceFloats(vals []float64, spec dispatch.AggSpec, opts Options) (float64, bool) {
	switch spec.Kind {
	case dispatch.SUM:
		if len(vals) == 0 {
			return 0, true // SUM of an empty/all-null group is 0, per the additive identity
		}
		s := 0.0
		for _, x := range vals {
			s += x
		}
		return s, true
	case dispatch.MEAN:
		if len(vals) == 0 {
			return 0, false
		}
		s := 0.0
		for _, x := range vals {
			s += x
		}
		return s / float64(len(vals)), true
	case dispatch.VARIANCE, dispatch.STD:
		ddof := spec.EffectiveDDOF()
		if len(vals) <= ddof {
			return 0, false
		}
		mean := 0.0
		for _, x := range vals {
			mean += x
		}
		mean /= float64(len(vals))
		ss := 0.0
		for _, x := range vals {
			d := x - mean
			ss += d * d
		}
		variance := ss / float64(len(vals)-ddof)
		if spec.Kind == dispatch.STD {
			return math.Sqrt(variance), true
		}
		return variance, true
	case dispatch.MEDIAN:
		return quantileAt(vals, 0.5, dispatch.Linear)
	case dispatch.QUANTILE:
		q := spec.EffectiveQuantiles()[0]
		return quantileAt(vals, q, spec.Interpolation)
	case dispatch.MIN:
		if len(vals) == 0 {
			return 0, false
		}
		m := vals[0]
		for _, x := range vals[1:] {
			if x < m {
				m = x
			}
		}
		return m, true
	case dispatch.MAX:
		if len(vals) == 0 {
			return 0, false
		}
		m := vals[0]
		for _, x := range vals[1:] {
			if x > m {
				m = x
			}
		}
		return m, true
	default:
		return 0, false
	}
}

// quantileAt sorts a copy of vals and interpolates the q-th quantile under
// interp, mirroring internal/reduce's whole-column quantile math.
func quantileAt(vals []float64, q float64, interp dispatch.Interpolation) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), vals...)
	insertionSortFloat64(sorted)
	return dispatch.Interpolate(sorted, q, interp), true
}

func insertionSortFloat64(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func writeFloat(out *column.Column, i int, accType dtype.Type, v float64) error {
	switch out.Data().(type) {
	case []float64:
		column.SetAt[float64](out, i, v)
	case []float32:
		column.SetAt[float32](out, i, float32(v))
	case []int64:
		column.SetAt[int64](out, i, int64(v))
	case []int32:
		column.SetAt[int32](out, i, int32(v))
	default:
		column.SetAt[float64](out, i, v)
	}
	return nil
}

// writeTyped copies row `src` of v into row `i` of out, for MIN/MAX
// results whose output type equals the source type exactly.
func writeTyped(out *column.Column, i int, v *column.View, src int, accType dtype.Type) error {
	switch d := v.Data().(type) {
	case []int8:
		column.SetAt[int8](out, i, d[v.Offset()+src])
	case []uint8:
		column.SetAt[uint8](out, i, d[v.Offset()+src])
	case []int16:
		column.SetAt[int16](out, i, d[v.Offset()+src])
	case []uint16:
		column.SetAt[uint16](out, i, d[v.Offset()+src])
	case []int32:
		column.SetAt[int32](out, i, d[v.Offset()+src])
	case []uint32:
		column.SetAt[uint32](out, i, d[v.Offset()+src])
	case []int64:
		column.SetAt[int64](out, i, d[v.Offset()+src])
	case []uint64:
		column.SetAt[uint64](out, i, d[v.Offset()+src])
	case []float32:
		column.SetAt[float32](out, i, d[v.Offset()+src])
	case []float64:
		column.SetAt[float64](out, i, d[v.Offset()+src])
	}
	return nil
}
