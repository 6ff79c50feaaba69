package kernels

import (
	"dfkernel/internal/bitmap"
	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/errs"
)

// ScatterColumn writes source row k into destination row mapping[k], for
// every k. The target column is a copy of dst (dst itself is never
// mutated: scatter is a pure function from (source, target, mapping) to a
// new owning Column, matching every other kernel's ownership contract).
func ScatterColumn(src, dst *column.View, mapping []int32) (*column.Column, error) {
	if len(mapping) != src.Size() {
		return nil, errs.New(errs.InvalidArgument, "scatter mapping length %d must equal source size %d", len(mapping), src.Size())
	}
	if !src.Type().Equal(dst.Type()) {
		return nil, errs.New(errs.TypeMismatch, "scatter source type %s does not match destination type %s", src.Type(), dst.Type())
	}
	for _, m := range mapping {
		if m < 0 || int(m) >= dst.Size() {
			return nil, errs.New(errs.OutOfRange, "scatter target index %d out of range [0,%d)", m, dst.Size())
		}
	}
	if src.Type().IsString() {
		return scatterString(src, dst, mapping)
	}
	if src.Type().IsList() {
		return nil, errs.New(errs.TypeNotSupported, "scatter on List columns is not implemented")
	}

	result, err := dispatch.Apply(dst.Type(), dst.Data(), dst.Offsets(), dispatch.Visitor[gatherResult]{
		OnInt8:    func(d []int8) gatherResult { return scatterFixed(copyOf(d), src, mapping) },
		OnBool8:   func(d []int8) gatherResult { return scatterFixed(copyOf(d), src, mapping) },
		OnUInt8:   func(d []uint8) gatherResult { return scatterFixed(copyOf(d), src, mapping) },
		OnInt16:   func(d []int16) gatherResult { return scatterFixed(copyOf(d), src, mapping) },
		OnUInt16:  func(d []uint16) gatherResult { return scatterFixed(copyOf(d), src, mapping) },
		OnInt32:   func(d []int32) gatherResult { return scatterFixed(copyOf(d), src, mapping) },
		OnUInt32:  func(d []uint32) gatherResult { return scatterFixed(copyOf(d), src, mapping) },
		OnInt64:   func(d []int64) gatherResult { return scatterFixed(copyOf(d), src, mapping) },
		OnUInt64:  func(d []uint64) gatherResult { return scatterFixed(copyOf(d), src, mapping) },
		OnFloat32: func(d []float32) gatherResult { return scatterFixed(copyOf(d), src, mapping) },
		OnFloat64: func(d []float64) gatherResult { return scatterFixed(copyOf(d), src, mapping) },
	})
	if err != nil {
		return nil, err
	}
	validity := result.validity
	if dst.Nullable() {
		if validity == nil {
			validity = bitmap.CreateNullMask(dst.Size(), bitmap.AllValid)
		}
		written := make([]bool, dst.Size())
		for _, m := range mapping {
			written[m] = true
		}
		for i := 0; i < dst.Size(); i++ {
			if !written[i] && !dst.IsValid(i) {
				bitmap.SetValid(validity, i, false)
			}
		}
	}
	return column.NewFixedWidthColumn(dst.Type(), dst.Size(), result.data, validity, result.nullCount), nil
}

func copyOf[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func scatterFixed[T any](out []T, src *column.View, mapping []int32) gatherResult {
	srcData := src.Data().([]T)
	n := len(out)
	var mask []uint32
	if src.Nullable() {
		mask = bitmap.CreateNullMask(n, bitmap.AllValid)
	}
	for k, dstIdx := range mapping {
		out[dstIdx] = srcData[src.Offset()+k]
		if src.Nullable() {
			bitmap.SetValid(mask, int(dstIdx), src.IsValid(k))
		}
	}
	return gatherResult{data: out, validity: mask, nullCount: bitmap.UnknownNullCount}
}

func scatterString(src, dst *column.View, mapping []int32) (*column.Column, error) {
	n := dst.Size()
	rows := make([]string, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		if dst.IsValid(i) {
			rows[i] = dst.StringAt(i)
			valid[i] = true
		}
	}
	for k, dstIdx := range mapping {
		if src.IsValid(k) {
			rows[dstIdx] = src.StringAt(k)
			valid[dstIdx] = true
		} else {
			rows[dstIdx] = ""
			valid[dstIdx] = false
		}
	}

	offsets := make([]int32, n+1)
	var chars []byte
	var mask []uint32
	if src.Nullable() || dst.Nullable() {
		mask = bitmap.CreateNullMask(n, bitmap.Uninitialized)
	}
	for i, s := range rows {
		chars = append(chars, s...)
		offsets[i+1] = offsets[i] + int32(len(s))
		if mask != nil {
			bitmap.SetValid(mask, i, valid[i])
		}
	}
	return column.MakeStringsColumn(chars, offsets, mask)
}

// Scatter applies ScatterColumn column-wise, matching src and dst columns
// positionally.
func Scatter(src, dst *column.TableView, mapping []int32) (*column.Table, error) {
	if src.NumColumns() != dst.NumColumns() {
		return nil, errs.New(errs.InvalidArgument, "scatter source/destination column counts differ: %d vs %d", src.NumColumns(), dst.NumColumns())
	}
	cols := make([]*column.Column, dst.NumColumns())
	for i := range dst.Columns {
		c, err := ScatterColumn(src.Columns[i], dst.Columns[i], mapping)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return column.NewTable(dst.Names, cols)
}
