package dispatch

import (
	"fmt"
	"math"
	"strconv"

	"dfkernel/internal/dtype"
	"dfkernel/internal/errs"
)

// AggKind enumerates the aggregation kinds group-by and reduce support.
type AggKind int

const (
	SUM AggKind = iota
	MIN
	MAX
	COUNT
	MEAN
	VARIANCE
	STD
	MEDIAN
	QUANTILE
)

func (k AggKind) String() string {
	return [...]string{"SUM", "MIN", "MAX", "COUNT", "MEAN", "VARIANCE", "STD", "MEDIAN", "QUANTILE"}[k]
}

// Interpolation selects how QUANTILE picks a value between two adjacent
// sorted samples when the requested rank falls between them.
type Interpolation int

const (
	Linear Interpolation = iota
	Lower
	Higher
	Midpoint
	Nearest
)

func (i Interpolation) String() string {
	return [...]string{"Linear", "Lower", "Higher", "Midpoint", "Nearest"}[i]
}

// DefaultDDOF is the delta-degrees-of-freedom VARIANCE/STD use when a
// request does not specify one.
const DefaultDDOF = 1

// AggSpec is one aggregation request: a kind plus the parameters that kind
// needs (DDOF for VARIANCE/STD; Quantiles/Interpolation for QUANTILE). Two
// specs with identical fields are equal requests; since Quantiles is a
// slice, compare specs with Equal rather than ==.
type AggSpec struct {
	Kind          AggKind
	DDOF          int
	Quantiles     []float64
	Interpolation Interpolation
}

// Sum/Min/Max/Count/Mean/Median build the common no-parameter specs.
func Sum() AggSpec   { return AggSpec{Kind: SUM} }
func Min() AggSpec   { return AggSpec{Kind: MIN} }
func Max() AggSpec   { return AggSpec{Kind: MAX} }
func Count() AggSpec { return AggSpec{Kind: COUNT} }
func Mean() AggSpec  { return AggSpec{Kind: MEAN} }

// Median is QUANTILE(0.5, Linear) under a dedicated kind, per spec.
func Median() AggSpec { return AggSpec{Kind: MEDIAN} }

// Variance and Std default ddof to DefaultDDOF when ddof <= 0.
func Variance(ddof int) AggSpec { return AggSpec{Kind: VARIANCE, DDOF: normalizeDDOF(ddof)} }
func Std(ddof int) AggSpec      { return AggSpec{Kind: STD, DDOF: normalizeDDOF(ddof)} }

func normalizeDDOF(ddof int) int {
	if ddof <= 0 {
		return DefaultDDOF
	}
	return ddof
}

// Quantile builds a QUANTILE spec for one or more quantiles under interp.
func Quantile(interp Interpolation, quantiles ...float64) AggSpec {
	return AggSpec{Kind: QUANTILE, Quantiles: quantiles, Interpolation: interp}
}

// Equal reports whether a and b are the same aggregation request.
func (a AggSpec) Equal(b AggSpec) bool {
	if a.Kind != b.Kind || a.DDOF != b.DDOF || a.Interpolation != b.Interpolation {
		return false
	}
	if len(a.Quantiles) != len(b.Quantiles) {
		return false
	}
	for i := range a.Quantiles {
		if a.Quantiles[i] != b.Quantiles[i] {
			return false
		}
	}
	return true
}

// EffectiveDDOF returns the spec's ddof, defaulting to DefaultDDOF when
// unset (the zero value) — VARIANCE/STD's parameter is optional.
func (a AggSpec) EffectiveDDOF() int {
	if a.DDOF <= 0 {
		return DefaultDDOF
	}
	return a.DDOF
}

// EffectiveQuantiles returns the spec's requested quantiles, defaulting to
// the median (0.5) when none were supplied.
func (a AggSpec) EffectiveQuantiles() []float64 {
	if len(a.Quantiles) == 0 {
		return []float64{0.5}
	}
	return a.Quantiles
}

// ExpandedSpec is one single-valued reduction derived from an AggSpec, with
// the output column label it should produce.
type ExpandedSpec struct {
	Spec  AggSpec
	Label string
}

// Expand turns spec into one or more single-valued specs: a QUANTILE spec
// carrying N quantiles (§6's "quantiles: [float]") expands into N specs,
// one per quantile, each labeled "QUANTILE_<q>_<interpolation>". Every
// other kind expands to itself, labeled with its own String().
func Expand(spec AggSpec) []ExpandedSpec {
	if spec.Kind != QUANTILE {
		return []ExpandedSpec{{Spec: spec, Label: spec.Kind.String()}}
	}
	qs := spec.EffectiveQuantiles()
	out := make([]ExpandedSpec, len(qs))
	for i, q := range qs {
		out[i] = ExpandedSpec{
			Spec: AggSpec{Kind: QUANTILE, Quantiles: []float64{q}, Interpolation: spec.Interpolation},
			Label: fmt.Sprintf("QUANTILE_%s_%s",
				strconv.FormatFloat(q, 'g', -1, 64), spec.Interpolation),
		}
	}
	return out
}

// Interpolate returns the q-th quantile (q in [0,1]) of sorted, an
// ascending slice of at least one sample, under interp.
func Interpolate(sorted []float64, q float64, interp Interpolation) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	switch interp {
	case Lower:
		return sorted[lo]
	case Higher:
		return sorted[hi]
	case Midpoint:
		return (sorted[lo] + sorted[hi]) / 2
	case Nearest:
		if pos-float64(lo) <= float64(hi)-pos {
			return sorted[lo]
		}
		return sorted[hi]
	default: // Linear
		frac := pos - float64(lo)
		return sorted[lo] + (sorted[hi]-sorted[lo])*frac
	}
}

// AccumulatorType returns the result column type for applying `kind` to a
// source column of type `src`: widening integer SUM/COUNT to Int64, and
// promoting MEAN/VARIANCE/STD/MEDIAN/QUANTILE to Float64.
func AccumulatorType(src dtype.Type, kind AggKind) (dtype.Type, error) {
	switch {
	case src.IsInteger():
		switch kind {
		case SUM:
			return dtype.Fixed(dtype.Int64), nil
		case MIN, MAX:
			return src, nil
		case COUNT:
			return dtype.Fixed(dtype.Int64), nil
		case MEAN, VARIANCE, STD, MEDIAN, QUANTILE:
			return dtype.Fixed(dtype.Float64), nil
		}
	case src.IsFloat():
		switch kind {
		case SUM, MIN, MAX:
			return src, nil
		case COUNT:
			return dtype.Fixed(dtype.Int64), nil
		case MEAN, VARIANCE, STD, MEDIAN, QUANTILE:
			return dtype.Fixed(dtype.Float64), nil
		}
	case src.IsTimestamp() || src.IsDuration():
		switch kind {
		case MIN, MAX:
			return src, nil
		case COUNT:
			return dtype.Fixed(dtype.Int64), nil
		default:
			return dtype.Type{}, errs.New(errs.TypeNotSupported, "%s unsupported for %s (only COUNT/MIN/MAX)", kind, src)
		}
	case src.IsString():
		switch kind {
		case MIN, MAX:
			return src, nil
		case COUNT:
			return dtype.Fixed(dtype.Int64), nil
		default:
			return dtype.Type{}, errs.New(errs.TypeNotSupported, "%s unsupported for String", kind)
		}
	}
	return dtype.Type{}, errs.New(errs.TypeNotSupported, "%s unsupported for %s", kind, src)
}
