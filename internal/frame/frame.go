// Package frame is a thin, chainable ergonomic layer over column.Table:
// Select/Filter/Head/Tail/Sort/GroupBy/Join, each delegating straight to
// the underlying kernels instead of re-implementing row movement, the
// way the pandas-style facade this package replaces exposed the same
// method set over a naive map[string][]interface{} backing store.
package frame

import (
	"sort"

	"dfkernel/internal/column"
	"dfkernel/internal/errs"
	"dfkernel/internal/groupby"
	"dfkernel/internal/join"
	"dfkernel/internal/kernels"
	"dfkernel/internal/rowcmp"
)

// Frame wraps an owning Table with chainable, name-addressed operations.
type Frame struct {
	Table *column.Table
}

func New(tbl *column.Table) *Frame { return &Frame{Table: tbl} }

func (f *Frame) NumRows() int { return f.Table.NumRows() }

// Select projects to a subset of columns, by name, in the given order.
func (f *Frame) Select(names []string) (*Frame, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		_, ci, ok := f.Table.ColumnByName(n)
		if !ok {
			return nil, errs.New(errs.InvalidArgument, "no column named %q", n)
		}
		idx[i] = ci
	}
	view, err := f.Table.View().Project(idx)
	if err != nil {
		return nil, err
	}
	return materialize(view)
}

// Filter keeps rows where mask (a Bool8 column of the same row count) is
// true and valid.
func (f *Frame) Filter(mask *column.View) (*Frame, error) {
	tbl, err := kernels.ApplyBooleanMask(f.Table.View(), mask)
	if err != nil {
		return nil, err
	}
	return &Frame{Table: tbl}, nil
}

// Head returns the first n rows (n clamped to NumRows).
func (f *Frame) Head(n int) (*Frame, error) { return f.slice(0, n) }

// Tail returns the last n rows (n clamped to NumRows).
func (f *Frame) Tail(n int) (*Frame, error) {
	total := f.NumRows()
	if n > total {
		n = total
	}
	return f.slice(total-n, total)
}

func (f *Frame) slice(begin, end int) (*Frame, error) {
	total := f.NumRows()
	if end > total {
		end = total
	}
	if begin < 0 {
		begin = 0
	}
	view, err := kernels.Slice(f.Table.View(), begin, end)
	if err != nil {
		return nil, err
	}
	return materialize(view)
}

// Sort orders rows by column name, stable, ascending or descending.
func (f *Frame) Sort(colName string, ascending bool) (*Frame, error) {
	_, ci, ok := f.Table.ColumnByName(colName)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "no column named %q", colName)
	}
	dir := rowcmp.Ascending
	if !ascending {
		dir = rowcmp.Descending
	}
	view := f.Table.View()
	n := view.NumRows()
	idx := make([]int32, n)
	for i := range idx {
		idx[i] = int32(i)
	}
	keys := []rowcmp.Key{{Col: ci, Direction: dir}}
	sort.SliceStable(idx, func(i, j int) bool {
		less, _ := rowcmp.Less(view, int(idx[i]), int(idx[j]), keys)
		return less
	})
	tbl, err := kernels.Gather(view, idx, kernels.Ignore)
	if err != nil {
		return nil, err
	}
	return &Frame{Table: tbl}, nil
}

// GroupBy groups rows by the named key columns, ready for Aggregate.
type Grouped struct {
	keys   *column.TableView
	values *column.TableView
}

func (f *Frame) GroupBy(keyNames []string) (*Grouped, error) {
	idx := make([]int, len(keyNames))
	for i, n := range keyNames {
		_, ci, ok := f.Table.ColumnByName(n)
		if !ok {
			return nil, errs.New(errs.InvalidArgument, "no column named %q", n)
		}
		idx[i] = ci
	}
	full := f.Table.View()
	keys, err := full.Project(idx)
	if err != nil {
		return nil, err
	}
	return &Grouped{keys: keys, values: full}, nil
}

// Aggregate runs the requested aggregations per value column and returns
// a Frame whose columns are the group keys followed by one result column
// per expanded (request, spec) pair, named "<value column>_<label>" (a
// QUANTILE spec carrying several quantiles contributes one column per
// quantile, per dispatch.Expand's labeling).
func (g *Grouped) Aggregate(requests []groupby.Request, opts groupby.Options) (*Frame, error) {
	uniqueKeys, results, meta, err := groupby.Aggregate(g.keys, g.values, requests, opts)
	if err != nil {
		return nil, err
	}
	names := append([]string{}, uniqueKeys.Names...)
	cols := append([]*column.Column{}, uniqueKeys.Columns...)
	for i, res := range meta {
		colName := g.values.Names[res.ColumnIndex]
		names = append(names, colName+"_"+res.Label)
		cols = append(cols, results[i])
	}
	tbl, err := column.NewTable(names, cols)
	if err != nil {
		return nil, err
	}
	return &Frame{Table: tbl}, nil
}

// Join inner/left-joins f and other on same-named key columns.
func (f *Frame) Join(other *Frame, onNames []string, kind join.Kind) (*Frame, error) {
	leftIdx := make([]int, len(onNames))
	rightIdx := make([]int, len(onNames))
	for i, n := range onNames {
		_, li, ok := f.Table.ColumnByName(n)
		if !ok {
			return nil, errs.New(errs.InvalidArgument, "no column named %q on left", n)
		}
		_, ri, ok := other.Table.ColumnByName(n)
		if !ok {
			return nil, errs.New(errs.InvalidArgument, "no column named %q on right", n)
		}
		leftIdx[i], rightIdx[i] = li, ri
	}
	leftFull, rightFull := f.Table.View(), other.Table.View()
	leftKeys, err := leftFull.Project(leftIdx)
	if err != nil {
		return nil, err
	}
	rightKeys, err := rightFull.Project(rightIdx)
	if err != nil {
		return nil, err
	}

	leftRows, rightRows, err := join.HashJoin(leftKeys, rightKeys, kind)
	if err != nil {
		return nil, err
	}
	leftOut, err := kernels.Gather(leftFull, leftRows, kernels.Ignore)
	if err != nil {
		return nil, err
	}
	rightOut, err := kernels.Gather(rightFull, rightRows, kernels.Check)
	if err != nil {
		return nil, err
	}

	names := append([]string{}, leftOut.Names...)
	cols := append([]*column.Column{}, leftOut.Columns...)
	for i, n := range rightOut.Names {
		names = append(names, n+"_right")
		cols = append(cols, rightOut.Columns[i])
	}
	tbl, err := column.NewTable(names, cols)
	if err != nil {
		return nil, err
	}
	return &Frame{Table: tbl}, nil
}

// DropNA drops rows with any null among the named columns (all columns if
// names is empty).
func (f *Frame) DropNA(names []string) (*Frame, error) {
	full := f.Table.View()
	keyCols := make([]int, 0, len(names))
	for _, n := range names {
		_, ci, ok := f.Table.ColumnByName(n)
		if !ok {
			return nil, errs.New(errs.InvalidArgument, "no column named %q", n)
		}
		keyCols = append(keyCols, ci)
	}
	if len(keyCols) == 0 {
		for i := range full.Columns {
			keyCols = append(keyCols, i)
		}
	}
	keysView, err := full.Project(keyCols)
	if err != nil {
		return nil, err
	}
	tbl, err := kernels.DropNulls(full, keysView, len(keyCols))
	if err != nil {
		return nil, err
	}
	return &Frame{Table: tbl}, nil
}

func materialize(view *column.TableView) (*Frame, error) {
	idx := make([]int32, view.NumRows())
	for i := range idx {
		idx[i] = int32(i)
	}
	tbl, err := kernels.Gather(view, idx, kernels.Ignore)
	if err != nil {
		return nil, err
	}
	return &Frame{Table: tbl}, nil
}
