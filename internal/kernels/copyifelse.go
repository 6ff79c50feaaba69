package kernels

import (
	"dfkernel/internal/bitmap"
	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/dtype"
	"dfkernel/internal/errs"
)

// CopyIfElse produces, for each row i, lhs[i] if mask[i] is valid-and-true,
// else rhs[i]. lhs, rhs, and mask must all have the same row count; lhs and
// rhs must share a type.
func CopyIfElse(lhs, rhs, mask *column.View) (*column.Column, error) {
	n := lhs.Size()
	if rhs.Size() != n || mask.Size() != n {
		return nil, errs.New(errs.InvalidArgument, "copy_if_else operands must have equal row counts")
	}
	if !lhs.Type().Equal(rhs.Type()) {
		return nil, errs.New(errs.TypeMismatch, "copy_if_else type mismatch: %s vs %s", lhs.Type(), rhs.Type())
	}
	if !mask.Type().Equal(dtype.Fixed(dtype.Bool8)) {
		return nil, errs.New(errs.TypeMismatch, "copy_if_else mask must be Bool8, got %s", mask.Type())
	}

	maskData := mask.Data().([]int8)
	keepLHS := make([]bool, n)
	for i := 0; i < n; i++ {
		keepLHS[i] = mask.IsValid(i) && maskData[mask.Offset()+i] != 0
	}

	if lhs.Type().IsString() {
		return copyIfElseString(lhs, rhs, keepLHS)
	}
	if lhs.Type().IsList() {
		return nil, errs.New(errs.TypeNotSupported, "copy_if_else on List columns is not implemented")
	}

	result, err := dispatch.Apply(lhs.Type(), lhs.Data(), lhs.Offsets(), dispatch.Visitor[gatherResult]{
		OnInt8:    func(d []int8) gatherResult { return copyIfElseFixed(lhs, rhs, keepLHS, d) },
		OnBool8:   func(d []int8) gatherResult { return copyIfElseFixed(lhs, rhs, keepLHS, d) },
		OnUInt8:   func(d []uint8) gatherResult { return copyIfElseFixed(lhs, rhs, keepLHS, d) },
		OnInt16:   func(d []int16) gatherResult { return copyIfElseFixed(lhs, rhs, keepLHS, d) },
		OnUInt16:  func(d []uint16) gatherResult { return copyIfElseFixed(lhs, rhs, keepLHS, d) },
		OnInt32:   func(d []int32) gatherResult { return copyIfElseFixed(lhs, rhs, keepLHS, d) },
		OnUInt32:  func(d []uint32) gatherResult { return copyIfElseFixed(lhs, rhs, keepLHS, d) },
		OnInt64:   func(d []int64) gatherResult { return copyIfElseFixed(lhs, rhs, keepLHS, d) },
		OnUInt64:  func(d []uint64) gatherResult { return copyIfElseFixed(lhs, rhs, keepLHS, d) },
		OnFloat32: func(d []float32) gatherResult { return copyIfElseFixed(lhs, rhs, keepLHS, d) },
		OnFloat64: func(d []float64) gatherResult { return copyIfElseFixed(lhs, rhs, keepLHS, d) },
	})
	if err != nil {
		return nil, err
	}
	return column.NewFixedWidthColumn(lhs.Type(), n, result.data, result.validity, result.nullCount), nil
}

func copyIfElseFixed[T any](lhs, rhs *column.View, keepLHS []bool, _ []T) gatherResult {
	n := len(keepLHS)
	lhsData := lhs.Data().([]T)
	rhsData := rhs.Data().([]T)
	out := make([]T, n)
	needsMask := lhs.Nullable() || rhs.Nullable()
	var mask []uint32
	if needsMask {
		mask = bitmap.CreateNullMask(n, bitmap.Uninitialized)
	}
	nullCount := 0
	for i := 0; i < n; i++ {
		var valid bool
		if keepLHS[i] {
			out[i] = lhsData[lhs.Offset()+i]
			valid = !lhs.Nullable() || lhs.IsValid(i)
		} else {
			out[i] = rhsData[rhs.Offset()+i]
			valid = !rhs.Nullable() || rhs.IsValid(i)
		}
		if mask != nil {
			bitmap.SetValid(mask, i, valid)
		}
		if !valid {
			nullCount++
		}
	}
	if mask == nil {
		nullCount = bitmap.UnknownNullCount
	}
	return gatherResult{data: out, validity: mask, nullCount: nullCount}
}

func copyIfElseString(lhs, rhs *column.View, keepLHS []bool) (*column.Column, error) {
	n := len(keepLHS)
	offsets := make([]int32, n+1)
	var chars []byte
	needsMask := lhs.Nullable() || rhs.Nullable()
	var mask []uint32
	if needsMask {
		mask = bitmap.CreateNullMask(n, bitmap.Uninitialized)
	}
	for i := 0; i < n; i++ {
		src := rhs
		if keepLHS[i] {
			src = lhs
		}
		valid := !src.Nullable() || src.IsValid(i)
		var s string
		if valid {
			s = src.StringAt(i)
		}
		chars = append(chars, s...)
		offsets[i+1] = offsets[i] + int32(len(s))
		if mask != nil {
			bitmap.SetValid(mask, i, valid)
		}
	}
	return column.MakeStringsColumn(chars, offsets, mask)
}
