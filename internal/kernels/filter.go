package kernels

import (
	"dfkernel/internal/column"
	"dfkernel/internal/dtype"
	"dfkernel/internal/errs"
)

// Filter ("copy_if") keeps rows for which predicate returns true, in
// stable input order. It is expressed as index selection + Gather, which
// keeps materialization (including per-column validity) uniform across
// every stable-selection kernel.
func Filter(tv *column.TableView, predicate func(row int) bool) (*column.Table, error) {
	n := tv.NumRows()
	indices := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		if predicate(i) {
			indices = append(indices, int32(i))
		}
	}
	if len(indices) == 0 {
		return emptyLikeTable(tv)
	}
	return Gather(tv, indices, Ignore)
}

// ApplyBooleanMask keeps row i iff mask is valid and true at i.
func ApplyBooleanMask(tv *column.TableView, mask *column.View) (*column.Table, error) {
	if mask.Size() != tv.NumRows() {
		return nil, errs.New(errs.InvalidArgument, "mask size %d does not match table row count %d", mask.Size(), tv.NumRows())
	}
	if !mask.Type().Equal(dtype.Fixed(dtype.Bool8)) {
		return nil, errs.New(errs.TypeMismatch, "mask column must be Bool8, got %s", mask.Type())
	}
	data := mask.Data().([]int8)
	return Filter(tv, func(i int) bool {
		return mask.IsValid(i) && data[mask.Offset()+i] != 0
	})
}

// DropNulls keeps rows where at least keepThreshold of the projected key
// columns are valid. An empty keys view returns the whole input unchanged.
func DropNulls(tv *column.TableView, keys *column.TableView, keepThreshold int) (*column.Table, error) {
	if keys.NumColumns() == 0 {
		return Gather(tv, identity(tv.NumRows()), Ignore)
	}
	return Filter(tv, func(i int) bool {
		valid := 0
		for _, v := range keys.Columns {
			if !v.Nullable() || v.IsValid(i) {
				valid++
			}
		}
		return valid >= keepThreshold
	})
}

func identity(n int) []int32 {
	idx := make([]int32, n)
	for i := range idx {
		idx[i] = int32(i)
	}
	return idx
}

func emptyLikeTable(tv *column.TableView) (*column.Table, error) {
	cols := make([]*column.Column, len(tv.Columns))
	for i, v := range tv.Columns {
		cols[i] = column.EmptyLike(v)
	}
	return column.NewTable(tv.Names, cols)
}
