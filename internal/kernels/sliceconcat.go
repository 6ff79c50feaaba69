package kernels

import (
	"dfkernel/internal/bitmap"
	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/errs"
)

// Slice returns a zero-copy TableView over rows [begin, end) of tv.
func Slice(tv *column.TableView, begin, end int) (*column.TableView, error) {
	cols := make([]*column.View, len(tv.Columns))
	for i, v := range tv.Columns {
		s, err := v.Slice(begin, end)
		if err != nil {
			return nil, err
		}
		cols[i] = s
	}
	return &column.TableView{Names: tv.Names, Columns: cols}, nil
}

// Split partitions tv into len(splitPoints)+1 zero-copy views at the given
// row boundaries (each must be non-decreasing and within bounds; equal
// neighbours yield an empty part).
func Split(tv *column.TableView, splitPoints []int) ([]*column.TableView, error) {
	bounds := make([]int, 0, len(splitPoints)+2)
	bounds = append(bounds, 0)
	bounds = append(bounds, splitPoints...)
	bounds = append(bounds, tv.NumRows())
	out := make([]*column.TableView, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		if bounds[i] > bounds[i+1] {
			return nil, errs.New(errs.InvalidArgument, "split points must be non-decreasing, got %d before %d", bounds[i], bounds[i+1])
		}
		part, err := Slice(tv, bounds[i], bounds[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, part)
	}
	return out, nil
}

// ConcatenateColumns appends the rows of every view in views, in order,
// into one new owning Column. All views must share the same type.
func ConcatenateColumns(views []*column.View) (*column.Column, error) {
	if len(views) == 0 {
		return nil, errs.New(errs.InvalidArgument, "concatenate requires at least one column")
	}
	t := views[0].Type()
	for _, v := range views[1:] {
		if !v.Type().Equal(t) {
			return nil, errs.New(errs.TypeMismatch, "concatenate type mismatch: %s vs %s", t, v.Type())
		}
	}
	if t.IsString() {
		return concatenateStrings(views)
	}
	if t.IsList() {
		return nil, errs.New(errs.TypeNotSupported, "concatenate on List columns is not implemented")
	}

	total := 0
	for _, v := range views {
		total += v.Size()
	}
	result, err := dispatch.Apply(t, views[0].Data(), views[0].Offsets(), dispatch.Visitor[gatherResult]{
		OnInt8:    func(d []int8) gatherResult { return concatenateFixed[int8](views, total) },
		OnBool8:   func(d []int8) gatherResult { return concatenateFixed[int8](views, total) },
		OnUInt8:   func(d []uint8) gatherResult { return concatenateFixed[uint8](views, total) },
		OnInt16:   func(d []int16) gatherResult { return concatenateFixed[int16](views, total) },
		OnUInt16:  func(d []uint16) gatherResult { return concatenateFixed[uint16](views, total) },
		OnInt32:   func(d []int32) gatherResult { return concatenateFixed[int32](views, total) },
		OnUInt32:  func(d []uint32) gatherResult { return concatenateFixed[uint32](views, total) },
		OnInt64:   func(d []int64) gatherResult { return concatenateFixed[int64](views, total) },
		OnUInt64:  func(d []uint64) gatherResult { return concatenateFixed[uint64](views, total) },
		OnFloat32: func(d []float32) gatherResult { return concatenateFixed[float32](views, total) },
		OnFloat64: func(d []float64) gatherResult { return concatenateFixed[float64](views, total) },
	})
	if err != nil {
		return nil, err
	}
	return column.NewFixedWidthColumn(t, total, result.data, result.validity, result.nullCount), nil
}

func concatenateFixed[T any](views []*column.View, total int) gatherResult {
	out := make([]T, 0, total)
	bmViews := make([]bitmap.View, len(views))
	for i, v := range views {
		out = append(out, v.Data().([]T)[v.Offset():v.Offset()+v.Size()]...)
		bmViews[i] = bitmap.View{Mask: v.NullMask(), Offset: v.Offset(), Size: v.Size(), Nullable: v.Nullable()}
	}
	mask := bitmap.ConcatenateMasks(bmViews)
	return gatherResult{data: out, validity: mask, nullCount: bitmap.UnknownNullCount}
}

func concatenateStrings(views []*column.View) (*column.Column, error) {
	total := 0
	for _, v := range views {
		total += v.Size()
	}
	offsets := make([]int32, total+1)
	var chars []byte
	bmViews := make([]bitmap.View, len(views))
	pos := 0
	for vi, v := range views {
		srcChars := v.Data().([]byte)
		srcOffsets := v.Offsets()
		for i := 0; i < v.Size(); i++ {
			begin, end := srcOffsets[v.Offset()+i], srcOffsets[v.Offset()+i+1]
			chars = append(chars, srcChars[begin:end]...)
			offsets[pos+1] = offsets[pos] + (end - begin)
			pos++
		}
		bmViews[vi] = bitmap.View{Mask: v.NullMask(), Offset: v.Offset(), Size: v.Size(), Nullable: v.Nullable()}
	}
	mask := bitmap.ConcatenateMasks(bmViews)
	return column.MakeStringsColumn(chars, offsets, mask)
}

// Concatenate appends matching columns across tables of identical schema.
func Concatenate(tables []*column.TableView) (*column.Table, error) {
	if len(tables) == 0 {
		return nil, errs.New(errs.InvalidArgument, "concatenate requires at least one table")
	}
	numCols := tables[0].NumColumns()
	for _, t := range tables[1:] {
		if t.NumColumns() != numCols {
			return nil, errs.New(errs.InvalidArgument, "concatenate column-count mismatch: %d vs %d", t.NumColumns(), numCols)
		}
	}
	cols := make([]*column.Column, numCols)
	for ci := 0; ci < numCols; ci++ {
		views := make([]*column.View, len(tables))
		for ti, t := range tables {
			views[ti] = t.Columns[ci]
		}
		c, err := ConcatenateColumns(views)
		if err != nil {
			return nil, err
		}
		cols[ci] = c
	}
	return column.NewTable(tables[0].Names, cols)
}
