package kernels

import (
	"dfkernel/internal/bitmap"
	"dfkernel/internal/column"
	"dfkernel/internal/errs"
)

// Fill returns a copy of v with rows [begin, end) replaced by a scalar,
// leaving v untouched. column.FillInPlace is the mutating sibling used by
// callers that already own the destination buffer outright.
func Fill(v *column.View, begin, end int, sc column.Scalar) (*column.Column, error) {
	if begin < 0 || begin > end || end > v.Size() {
		return nil, errs.New(errs.OutOfRange, "fill range [%d,%d) out of bounds for size %d", begin, end, v.Size())
	}
	if !v.Type().Equal(sc.Typ) {
		return nil, errs.New(errs.TypeMismatch, "fill scalar type %s does not match column type %s", sc.Typ, v.Type())
	}

	indices := make([]int32, v.Size())
	for i := range indices {
		indices[i] = int32(i)
	}
	out, err := GatherColumn(v, indices, Ignore)
	if err != nil {
		return nil, err
	}

	if v.Type().IsString() {
		return fillStringCopy(out, begin, end, sc)
	}
	return out, fillFixedInPlace(out, begin, end, sc)
}

func fillFixedInPlace(out *column.Column, begin, end int, sc column.Scalar) error {
	switch d := out.Data().(type) {
	case []int8:
		return fillSlice(out, d, begin, end, sc)
	case []uint8:
		return fillSlice(out, d, begin, end, sc)
	case []int16:
		return fillSlice(out, d, begin, end, sc)
	case []uint16:
		return fillSlice(out, d, begin, end, sc)
	case []int32:
		return fillSlice(out, d, begin, end, sc)
	case []uint32:
		return fillSlice(out, d, begin, end, sc)
	case []int64:
		return fillSlice(out, d, begin, end, sc)
	case []uint64:
		return fillSlice(out, d, begin, end, sc)
	case []float32:
		return fillSlice(out, d, begin, end, sc)
	case []float64:
		return fillSlice(out, d, begin, end, sc)
	default:
		return errs.New(errs.TypeNotSupported, "fill: unsupported data buffer type %T", d)
	}
}

func fillSlice[T any](out *column.Column, data []T, begin, end int, sc column.Scalar) error {
	val, _ := sc.Value.(T)
	return column.FillInPlace(out, begin, end, val, sc.Valid)
}

func fillStringCopy(out *column.Column, begin, end int, sc column.Scalar) (*column.Column, error) {
	v := out.View()
	n := v.Size()
	s, _ := sc.Value.(string)

	offsets := make([]int32, n+1)
	var chars []byte
	var mask []uint32
	needsMask := v.Nullable() || !sc.Valid
	if needsMask {
		mask = bitmap.CreateNullMask(n, bitmap.Uninitialized)
	}
	for i := 0; i < n; i++ {
		var rowStr string
		var valid bool
		if i >= begin && i < end {
			rowStr, valid = s, sc.Valid
		} else {
			valid = !v.Nullable() || v.IsValid(i)
			if valid {
				rowStr = v.StringAt(i)
			}
		}
		chars = append(chars, rowStr...)
		offsets[i+1] = offsets[i] + int32(len(rowStr))
		if mask != nil {
			bitmap.SetValid(mask, i, valid)
		}
	}
	return column.MakeStringsColumn(chars, offsets, mask)
}
