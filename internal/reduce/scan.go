package reduce

import (
	"dfkernel/internal/bitmap"
	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/dtype"
	"dfkernel/internal/errs"
)

type ScanType int

const (
	Inclusive ScanType = iota
	Exclusive
)

type ScanNullHandling int

const (
	ScanInclude ScanNullHandling = iota
	ScanExclude
)

// Scan computes a running SUM/MIN/MAX/PRODUCT-style prefix combine over v
// (only SUM, MIN, MAX are meaningful scan kinds; others report
// TypeNotSupported). For ScanExclude, a null input position produces a
// null output and does not update the running state.
func Scan(v *column.View, kind dispatch.AggKind, scanType ScanType, nulls ScanNullHandling) (*column.Column, error) {
	if kind != dispatch.SUM && kind != dispatch.MIN && kind != dispatch.MAX {
		return nil, errs.New(errs.TypeNotSupported, "scan only supports SUM, MIN, MAX, got %s", kind)
	}
	outType, err := dispatch.AccumulatorType(v.Type(), kind)
	if err != nil {
		return nil, err
	}
	n := v.Size()
	inclusive := make([]column.Scalar, n)

	var running float64
	haveRunning := false
	for i := 0; i < n; i++ {
		valid := !v.Nullable() || v.IsValid(i)
		if valid {
			cur := floatAt(v, i)
			switch {
			case !haveRunning:
				running, haveRunning = cur, true
			case kind == dispatch.SUM:
				running += cur
			case kind == dispatch.MIN && cur < running:
				running = cur
			case kind == dispatch.MAX && cur > running:
				running = cur
			}
		} else if nulls == ScanExclude {
			// null positions neither update the running state nor, below,
			// receive a value of their own
		}

		switch {
		case !valid && nulls == ScanExclude:
			inclusive[i] = column.NullScalar(outType)
		case !valid && !haveRunning:
			inclusive[i] = column.NullScalar(outType)
		default:
			inclusive[i] = floatScalar(outType, running)
		}
	}

	if scanType == Inclusive {
		return scalarsToColumn(outType, inclusive)
	}

	exclusive := make([]column.Scalar, n)
	exclusive[0] = column.NullScalar(outType)
	copy(exclusive[1:], inclusive[:n-1])
	return scalarsToColumn(outType, exclusive)
}

func scalarsToColumn(outType dtype.Type, scalars []column.Scalar) (*column.Column, error) {
	n := len(scalars)
	if outType.IsString() {
		offsets := make([]int32, n+1)
		var chars []byte
		mask := bitmap.CreateNullMask(n, bitmap.Uninitialized)
		for i, sc := range scalars {
			var s string
			if sc.Valid {
				s, _ = sc.Value.(string)
			}
			chars = append(chars, s...)
			offsets[i+1] = offsets[i] + int32(len(s))
			bitmap.SetValid(mask, i, sc.Valid)
		}
		return column.MakeStringsColumn(chars, offsets, mask)
	}

	out, err := column.MakeFixedWidthColumn(outType, n, bitmap.Uninitialized)
	if err != nil {
		return nil, err
	}
	for i, sc := range scalars {
		bitmap.SetValid(out.NullMask(), i, sc.Valid)
		if !sc.Valid {
			continue
		}
		switch out.Data().(type) {
		case []int8:
			v, _ := sc.Value.(int8)
			column.SetAt[int8](out, i, v)
		case []uint8:
			v, _ := sc.Value.(uint8)
			column.SetAt[uint8](out, i, v)
		case []int16:
			v, _ := sc.Value.(int16)
			column.SetAt[int16](out, i, v)
		case []uint16:
			v, _ := sc.Value.(uint16)
			column.SetAt[uint16](out, i, v)
		case []int32:
			v, _ := sc.Value.(int32)
			column.SetAt[int32](out, i, v)
		case []uint32:
			v, _ := sc.Value.(uint32)
			column.SetAt[uint32](out, i, v)
		case []int64:
			v, _ := sc.Value.(int64)
			column.SetAt[int64](out, i, v)
		case []uint64:
			v, _ := sc.Value.(uint64)
			column.SetAt[uint64](out, i, v)
		case []float32:
			v, _ := sc.Value.(float32)
			column.SetAt[float32](out, i, v)
		case []float64:
			v, _ := sc.Value.(float64)
			column.SetAt[float64](out, i, v)
		}
	}
	return out, nil
}
