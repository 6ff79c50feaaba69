package kernels

import (
	"dfkernel/internal/bitmap"
	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/errs"
	"dfkernel/internal/rowcmp"
)

// mergePick names the source (table, row) an output row is drawn from.
type mergePick struct {
	table int
	row   int
}

// Merge performs a stable k-way merge of already-sorted tables (by keys,
// per their own sort order) into a single sorted table. Ties are broken
// left-table-before-right-table, then by input order within a table, so
// Merge is stable even across equal keys spanning multiple inputs.
func Merge(tables []*column.TableView, keys []rowcmp.Key) (*column.Table, error) {
	if len(tables) == 0 {
		return nil, errs.New(errs.InvalidArgument, "merge requires at least one table")
	}
	numCols := tables[0].NumColumns()
	for _, t := range tables[1:] {
		if t.NumColumns() != numCols {
			return nil, errs.New(errs.InvalidArgument, "merge column-count mismatch: %d vs %d", t.NumColumns(), numCols)
		}
	}
	if err := rowcmp.Validate(keys, numCols); err != nil {
		return nil, err
	}

	cursors := make([]int, len(tables))
	active := make([]int, 0, len(tables))
	for i, t := range tables {
		if t.NumRows() > 0 {
			active = append(active, i)
		}
	}

	total := 0
	for _, t := range tables {
		total += t.NumRows()
	}
	picks := make([]mergePick, 0, total)

	for len(active) > 0 {
		best := 0
		for k := 1; k < len(active); k++ {
			ti, tk := active[best], active[k]
			c, err := rowcmp.Compare(tables[ti], tables[tk], cursors[ti], cursors[tk], keys)
			if err != nil {
				return nil, err
			}
			// strict-less wins; ties keep the earlier (lower-index) table,
			// which "best" already holds, so only a strict win replaces it
			if c > 0 {
				best = k
			}
		}
		chosen := active[best]
		picks = append(picks, mergePick{table: chosen, row: cursors[chosen]})
		cursors[chosen]++
		if cursors[chosen] >= tables[chosen].NumRows() {
			active = append(active[:best], active[best+1:]...)
		}
	}

	cols := make([]*column.Column, numCols)
	for ci := 0; ci < numCols; ci++ {
		views := make([]*column.View, len(tables))
		for ti, t := range tables {
			views[ti] = t.Columns[ci]
		}
		merged, err := mergeColumn(views, picks)
		if err != nil {
			return nil, err
		}
		cols[ci] = merged
	}
	return column.NewTable(tables[0].Names, cols)
}

func mergeColumn(views []*column.View, picks []mergePick) (*column.Column, error) {
	t := views[0].Type()
	if t.IsString() {
		return mergeColumnString(views, picks)
	}
	if t.IsList() {
		return nil, errs.New(errs.TypeNotSupported, "merge on List columns is not implemented")
	}

	result, err := dispatch.Apply(t, views[0].Data(), views[0].Offsets(), dispatch.Visitor[gatherResult]{
		OnInt8:    func(d []int8) gatherResult { return mergeFixed[int8](views, picks) },
		OnBool8:   func(d []int8) gatherResult { return mergeFixed[int8](views, picks) },
		OnUInt8:   func(d []uint8) gatherResult { return mergeFixed[uint8](views, picks) },
		OnInt16:   func(d []int16) gatherResult { return mergeFixed[int16](views, picks) },
		OnUInt16:  func(d []uint16) gatherResult { return mergeFixed[uint16](views, picks) },
		OnInt32:   func(d []int32) gatherResult { return mergeFixed[int32](views, picks) },
		OnUInt32:  func(d []uint32) gatherResult { return mergeFixed[uint32](views, picks) },
		OnInt64:   func(d []int64) gatherResult { return mergeFixed[int64](views, picks) },
		OnUInt64:  func(d []uint64) gatherResult { return mergeFixed[uint64](views, picks) },
		OnFloat32: func(d []float32) gatherResult { return mergeFixed[float32](views, picks) },
		OnFloat64: func(d []float64) gatherResult { return mergeFixed[float64](views, picks) },
	})
	if err != nil {
		return nil, err
	}
	return column.NewFixedWidthColumn(t, len(picks), result.data, result.validity, result.nullCount), nil
}

func mergeFixed[T any](views []*column.View, picks []mergePick) gatherResult {
	n := len(picks)
	out := make([]T, n)
	anyNullable := false
	for _, v := range views {
		if v.Nullable() {
			anyNullable = true
		}
	}
	var mask []uint32
	if anyNullable {
		mask = bitmap.CreateNullMask(n, bitmap.Uninitialized)
	}
	nullCount := 0
	for k, p := range picks {
		v := views[p.table]
		data := v.Data().([]T)
		out[k] = data[v.Offset()+p.row]
		valid := !v.Nullable() || v.IsValid(p.row)
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

func mergeColumnString(views []*column.View, picks []mergePick) (*column.Column, error) {
	n := len(picks)
	offsets := make([]int32, n+1)
	var chars []byte
	anyNullable := false
	for _, v := range views {
		if v.Nullable() {
			anyNullable = true
		}
	}
	var mask []uint32
	if anyNullable {
		mask = bitmap.CreateNullMask(n, bitmap.Uninitialized)
	}
	for k, p := range picks {
		v := views[p.table]
		valid := !v.Nullable() || v.IsValid(p.row)
		var s string
		if valid {
			s = v.StringAt(p.row)
		}
		chars = append(chars, s...)
		offsets[k+1] = offsets[k] + int32(len(s))
		if mask != nil {
			bitmap.SetValid(mask, k, valid)
		}
	}
	return column.MakeStringsColumn(chars, offsets, mask)
}
