// Package reduce implements whole-column and segmented reductions plus
// prefix scans (C11), reusing the same accumulator-type dispatch table
// (internal/dispatch) group-by aggregation draws from.
package reduce

import (
	"math"

	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/dtype"
	"dfkernel/internal/errs"
)

// Reduce computes a single scalar over every valid row of v under spec.
// An empty or all-null column yields an invalid (null) scalar rather than
// an error, except for COUNT, which yields a valid 0. A QUANTILE spec must carry exactly one quantile (the zero
// value defaults to the median); use ReduceAll for a multi-quantile
// request.
func Reduce(v *column.View, spec dispatch.AggSpec) (column.Scalar, error) {
	if spec.Kind == dispatch.QUANTILE && len(spec.EffectiveQuantiles()) != 1 {
		return column.Scalar{}, errs.New(errs.InvalidArgument, "Reduce requires a single-quantile QUANTILE spec; use ReduceAll")
	}
	outType, err := dispatch.AccumulatorType(v.Type(), spec.Kind)
	if err != nil {
		return column.Scalar{}, err
	}
	rows := validRows(v, 0, v.Size())
	return reduceRows(v, rows, spec, outType)
}

// ReduceAll computes one scalar per quantile spec requests (or a single
// scalar for any other kind), alongside the output label Expand assigns
// each one.
func ReduceAll(v *column.View, spec dispatch.AggSpec) ([]column.Scalar, []string, error) {
	expanded := dispatch.Expand(spec)
	scalars := make([]column.Scalar, len(expanded))
	labels := make([]string, len(expanded))
	for i, ex := range expanded {
		sc, err := Reduce(v, ex.Spec)
		if err != nil {
			return nil, nil, err
		}
		scalars[i] = sc
		labels[i] = ex.Label
	}
	return scalars, labels, nil
}

func validRows(v *column.View, begin, end int) []int {
	rows := make([]int, 0, end-begin)
	for i := begin; i < end; i++ {
		if !v.Nullable() || v.IsValid(i) {
			rows = append(rows, i)
		}
	}
	return rows
}

func reduceRows(v *column.View, rows []int, spec dispatch.AggSpec, outType dtype.Type) (column.Scalar, error) {
	if v.Type().IsString() {
		return reduceStringRows(v, rows, spec, outType)
	}
	if spec.Kind == dispatch.COUNT {
		return column.NewScalar(outType, int64(len(rows)), true), nil
	}
	if spec.Kind == dispatch.MIN || spec.Kind == dispatch.MAX {
		best, any, err := bestRow(v, rows, spec.Kind == dispatch.MIN)
		if err != nil {
			return column.Scalar{}, err
		}
		if !any {
			return column.NullScalar(outType), nil
		}
		return typedScalar(v, best, outType), nil
	}

	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i] = floatAt(v, r)
	}
	result, ok := reduceFloatSlice(vals, spec)
	if !ok {
		return column.NullScalar(outType), nil
	}
	return floatScalar(outType, result), nil
}

func reduceStringRows(v *column.View, rows []int, spec dispatch.AggSpec, outType dtype.Type) (column.Scalar, error) {
	switch spec.Kind {
	case dispatch.COUNT:
		return column.NewScalar(outType, int64(len(rows)), true), nil
	case dispatch.MIN, dispatch.MAX:
		if len(rows) == 0 {
			return column.NullScalar(outType), nil
		}
		best := rows[0]
		bestStr := v.StringAt(best)
		for _, r := range rows[1:] {
			s := v.StringAt(r)
			if (spec.Kind == dispatch.MIN && s < bestStr) || (spec.Kind == dispatch.MAX && s > bestStr) {
				best, bestStr = r, s
			}
		}
		return column.NewScalar(outType, bestStr, true), nil
	default:
		return column.Scalar{}, errs.New(errs.TypeNotSupported, "%s unsupported for String", spec.Kind)
	}
}

func bestRow(v *column.View, rows []int, wantMin bool) (int, bool, error) {
	if len(rows) == 0 {
		return 0, false, nil
	}
	best := rows[0]
	bestVal := floatAt(v, best)
	for _, r := range rows[1:] {
		val := floatAt(v, r)
		if (wantMin && val < bestVal) || (!wantMin && val > bestVal) {
			best, bestVal = r, val
		}
	}
	return best, true, nil
}

func typedScalar(v *column.View, row int, outType dtype.Type) column.Scalar {
	switch d := v.Data().(type) {
	case []int8:
		return column.NewScalar(outType, d[v.Offset()+row], true)
	case []uint8:
		return column.NewScalar(outType, d[v.Offset()+row], true)
	case []int16:
		return column.NewScalar(outType, d[v.Offset()+row], true)
	case []uint16:
		return column.NewScalar(outType, d[v.Offset()+row], true)
	case []int32:
		return column.NewScalar(outType, d[v.Offset()+row], true)
	case []uint32:
		return column.NewScalar(outType, d[v.Offset()+row], true)
	case []int64:
		return column.NewScalar(outType, d[v.Offset()+row], true)
	case []uint64:
		return column.NewScalar(outType, d[v.Offset()+row], true)
	case []float32:
		return column.NewScalar(outType, d[v.Offset()+row], true)
	case []float64:
		return column.NewScalar(outType, d[v.Offset()+row], true)
	default:
		return column.NullScalar(outType)
	}
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

func reduceFloatSlice(vals []float64, spec dispatch.AggSpec) (float64, bool) {
	switch spec.Kind {
	case dispatch.SUM:
		if len(vals) == 0 {
			return 0, false
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
	default:
		return 0, false
	}
}

// quantileAt sorts a copy of vals and interpolates the q-th quantile under
// interp, per dispatch.Interpolate's Linear/Lower/Higher/Midpoint/Nearest.
func quantileAt(vals []float64, q float64, interp dispatch.Interpolation) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), vals...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return dispatch.Interpolate(sorted, q, interp), true
}

// floatScalar packages a float64 accumulator result as a Scalar whose
// Value concretely matches outType's Go type, so downstream code that
// type-asserts Value (scalarsToColumn, column buffer writers) never sees
// a float64 boxed under an integer output type.
func floatScalar(outType dtype.Type, v float64) column.Scalar {
	switch outType.ID {
	case dtype.Int8:
		return column.NewScalar(outType, int8(v), true)
	case dtype.UInt8:
		return column.NewScalar(outType, uint8(v), true)
	case dtype.Int16:
		return column.NewScalar(outType, int16(v), true)
	case dtype.UInt16:
		return column.NewScalar(outType, uint16(v), true)
	case dtype.Int32, dtype.Date32:
		return column.NewScalar(outType, int32(v), true)
	case dtype.UInt32:
		return column.NewScalar(outType, uint32(v), true)
	case dtype.Int64, dtype.Date64:
		return column.NewScalar(outType, int64(v), true)
	case dtype.UInt64:
		return column.NewScalar(outType, uint64(v), true)
	case dtype.Float32:
		return column.NewScalar(outType, float32(v), true)
	default:
		return column.NewScalar(outType, v, true)
	}
}

// SegmentedReduce computes one scalar per segment of offsets (length
// n_segments+1, segment i is [offsets[i], offsets[i+1])), returning them
// as a single output column.
func SegmentedReduce(v *column.View, offsets []int32, spec dispatch.AggSpec) (*column.Column, error) {
	if len(offsets) < 1 {
		return nil, errs.New(errs.InvalidArgument, "segmented_reduce requires at least one offset")
	}
	if spec.Kind == dispatch.QUANTILE && len(spec.EffectiveQuantiles()) != 1 {
		return nil, errs.New(errs.InvalidArgument, "segmented_reduce requires a single-quantile QUANTILE spec")
	}
	outType, err := dispatch.AccumulatorType(v.Type(), spec.Kind)
	if err != nil {
		return nil, err
	}
	nSeg := len(offsets) - 1
	scalars := make([]column.Scalar, nSeg)
	for s := 0; s < nSeg; s++ {
		begin, end := int(offsets[s]), int(offsets[s+1])
		if begin < 0 || begin > end || end > v.Size() {
			return nil, errs.New(errs.OutOfRange, "segment [%d,%d) out of bounds for size %d", begin, end, v.Size())
		}
		rows := validRows(v, begin, end)
		sc, err := reduceRows(v, rows, spec, outType)
		if err != nil {
			return nil, err
		}
		scalars[s] = sc
	}
	return scalarsToColumn(outType, scalars)
}

// MinMax computes both MIN and MAX of v, one Reduce call for each.
func MinMax(v *column.View) (min, max column.Scalar, err error) {
	min, err = Reduce(v, dispatch.Min())
	if err != nil {
		return column.Scalar{}, column.Scalar{}, err
	}
	max, err = Reduce(v, dispatch.Max())
	if err != nil {
		return column.Scalar{}, column.Scalar{}, err
	}
	return min, max, nil
}
