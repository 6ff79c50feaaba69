// Package kernels implements the structural table-kernel family (C6):
// filter, gather, scatter, merge, copy-if-else, slice/split, concatenate,
// and fill. Every kernel is a pure function from input views to a new
// owning column/table; a handful of explicitly-named in-place mutators
// (column.FillInPlace, column.SetNullMask) are the only exceptions, per
// the column model's ownership rules: views borrow, kernels return owning columns.
package kernels

import (
	"dfkernel/internal/bitmap"
	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/errs"
)

// OOBPolicy controls gather's behavior for an out-of-bounds source index.
type OOBPolicy int

const (
	// Check nulls the destination row (all columns) when the index is out
	// of [0, n).
	Check OOBPolicy = iota
	// Ignore assumes every index is in bounds; behavior is undefined
	// (panics) otherwise, in exchange for skipping the bounds check.
	Ignore
)

// GatherColumn produces output row k sourced from input row indices[k].
// Validity is recomputed: output bit k equals input bit indices[k] (or 0 if
// out of bounds under Check).
func GatherColumn(v *column.View, indices []int32, policy OOBPolicy) (*column.Column, error) {
	if v.Type().IsString() {
		return gatherString(v, indices, policy)
	}
	if v.Type().IsList() {
		return nil, errs.New(errs.TypeNotSupported, "gather on List columns is not implemented")
	}
	result, err := dispatch.Apply(v.Type(), v.Data(), v.Offsets(), dispatch.Visitor[gatherResult]{
		OnInt8:    func(d []int8) gatherResult { return gatherFixed(d, v, indices, policy) },
		OnBool8:   func(d []int8) gatherResult { return gatherFixed(d, v, indices, policy) },
		OnUInt8:   func(d []uint8) gatherResult { return gatherFixed(d, v, indices, policy) },
		OnInt16:   func(d []int16) gatherResult { return gatherFixed(d, v, indices, policy) },
		OnUInt16:  func(d []uint16) gatherResult { return gatherFixed(d, v, indices, policy) },
		OnInt32:   func(d []int32) gatherResult { return gatherFixed(d, v, indices, policy) },
		OnUInt32:  func(d []uint32) gatherResult { return gatherFixed(d, v, indices, policy) },
		OnInt64:   func(d []int64) gatherResult { return gatherFixed(d, v, indices, policy) },
		OnUInt64:  func(d []uint64) gatherResult { return gatherFixed(d, v, indices, policy) },
		OnFloat32: func(d []float32) gatherResult { return gatherFixed(d, v, indices, policy) },
		OnFloat64: func(d []float64) gatherResult { return gatherFixed(d, v, indices, policy) },
	})
	if err != nil {
		return nil, err
	}
	return column.NewFixedWidthColumn(v.Type(), len(indices), result.data, result.validity, result.nullCount), nil
}

type gatherResult struct {
	data      any
	validity  []uint32
	nullCount int
}

func gatherFixed[T any](src []T, v *column.View, indices []int32, policy OOBPolicy) gatherResult {
	n := len(indices)
	out := make([]T, n)
	needsMask := v.Nullable() || policy == Check
	var mask []uint32
	if needsMask {
		mask = bitmap.CreateNullMask(n, bitmap.Uninitialized)
	}
	nullCount := 0
	for k, idx := range indices {
		oob := idx < 0 || int(idx) >= v.Size()
		if policy == Check && oob {
			var zero T
			out[k] = zero
			if mask != nil {
				bitmap.SetValid(mask, k, false)
			}
			nullCount++
			continue
		}
		out[k] = src[v.Offset()+int(idx)]
		valid := !v.Nullable() || v.IsValid(int(idx))
		if mask != nil {
			bitmap.SetValid(mask, k, valid)
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

func gatherString(v *column.View, indices []int32, policy OOBPolicy) (*column.Column, error) {
	n := len(indices)
	offsets := make([]int32, n+1)
	var chars []byte
	needsMask := v.Nullable() || policy == Check
	var mask []uint32
	if needsMask {
		mask = bitmap.CreateNullMask(n, bitmap.Uninitialized)
	}
	srcChars := v.Data().([]byte)
	srcOffsets := v.Offsets()

	for k, idx := range indices {
		oob := idx < 0 || int(idx) >= v.Size()
		if policy == Check && oob {
			offsets[k+1] = offsets[k]
			if mask != nil {
				bitmap.SetValid(mask, k, false)
			}
			continue
		}
		row := v.Offset() + int(idx)
		begin, end := srcOffsets[row], srcOffsets[row+1]
		chars = append(chars, srcChars[begin:end]...)
		offsets[k+1] = offsets[k] + (end - begin)
		valid := !v.Nullable() || v.IsValid(int(idx))
		if mask != nil {
			bitmap.SetValid(mask, k, valid)
		}
	}
	return column.MakeStringsColumn(chars, offsets, mask)
}

// Gather applies GatherColumn to every column of a table, producing a new
// owning Table.
func Gather(tv *column.TableView, indices []int32, policy OOBPolicy) (*column.Table, error) {
	cols := make([]*column.Column, len(tv.Columns))
	for i, v := range tv.Columns {
		c, err := GatherColumn(v, indices, policy)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return column.NewTable(tv.Names, cols)
}
